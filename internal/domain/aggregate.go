package domain

import (
	"sort"
	"strconv"
	"time"
)

// CategoryCount is one bar or slice of a chart.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Weekdays is the fixed Monday-first order of the day-of-week chart.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// CountBySeverity counts records per tier, most severe first. Tiers with no
// records are left out.
func CountBySeverity(records []AccidentRecord) []CategoryCount {
	counts := make(map[Severity]int, len(Severities))
	for _, r := range records {
		counts[r.Severity]++
	}
	out := make([]CategoryCount, 0, len(Severities))
	for _, s := range Severities {
		if counts[s] > 0 {
			out = append(out, CategoryCount{Category: string(s), Count: counts[s]})
		}
	}
	return out
}

// CountByWeather counts records per weather condition, largest first.
func CountByWeather(records []AccidentRecord) []CategoryCount {
	return countDescending(records, func(r AccidentRecord) string { return r.Weather })
}

// CountByRoadType counts records per road type, largest first.
func CountByRoadType(records []AccidentRecord) []CategoryCount {
	return countDescending(records, func(r AccidentRecord) string { return r.RoadType })
}

// CountByAccidentType counts records per accident type, largest first.
func CountByAccidentType(records []AccidentRecord) []CategoryCount {
	return countDescending(records, func(r AccidentRecord) string { return r.AccidentType })
}

// TopParishes returns the k parishes with the most records. k <= 0 returns all.
func TopParishes(records []AccidentRecord, k int) []CategoryCount {
	counts := countDescending(records, func(r AccidentRecord) string { return r.Parish })
	if k > 0 && len(counts) > k {
		counts = counts[:k]
	}
	return counts
}

// countDescending sorts by count, keeping first-appearance order for ties.
func countDescending(records []AccidentRecord, key func(AccidentRecord) string) []CategoryCount {
	index := map[string]int{}
	out := []CategoryCount{}
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, CategoryCount{Category: k})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// CountByHour always returns 24 entries, hour 0 first.
func CountByHour(records []AccidentRecord) []CategoryCount {
	var counts [24]int
	for _, r := range records {
		if r.Hour >= 0 && r.Hour < 24 {
			counts[r.Hour]++
		}
	}
	out := make([]CategoryCount, 24)
	for h := range counts {
		out[h] = CategoryCount{Category: strconv.Itoa(h), Count: counts[h]}
	}
	return out
}

// CountByMonth always returns 12 entries in calendar order.
func CountByMonth(records []AccidentRecord) []CategoryCount {
	var counts [12]int
	for _, r := range records {
		if r.Month >= 1 && r.Month <= 12 {
			counts[r.Month-1]++
		}
	}
	out := make([]CategoryCount, 12)
	for i := range counts {
		out[i] = CategoryCount{Category: time.Month(i + 1).String(), Count: counts[i]}
	}
	return out
}

// CountByDayOfWeek always returns 7 entries, Monday first. Values that are
// not English weekday names are not counted.
func CountByDayOfWeek(records []AccidentRecord) []CategoryCount {
	counts := make(map[string]int, len(Weekdays))
	for _, r := range records {
		counts[r.DayOfWeek]++
	}
	out := make([]CategoryCount, len(Weekdays))
	for i, d := range Weekdays {
		out[i] = CategoryCount{Category: d, Count: counts[d]}
	}
	return out
}

// SumCasualties adds up total casualties.
func SumCasualties(records []AccidentRecord) int {
	n := 0
	for _, r := range records {
		n += r.TotalCasualties
	}
	return n
}

// SumSeriousInjuries adds up serious injuries.
func SumSeriousInjuries(records []AccidentRecord) int {
	n := 0
	for _, r := range records {
		n += r.InjuriesSerious
	}
	return n
}

// CountSeverity counts records in one tier.
func CountSeverity(records []AccidentRecord, s Severity) int {
	n := 0
	for _, r := range records {
		if r.Severity == s {
			n++
		}
	}
	return n
}

// DistinctParishes counts parishes with at least one record.
func DistinctParishes(records []AccidentRecord) int {
	seen := map[string]struct{}{}
	for _, r := range records {
		seen[r.Parish] = struct{}{}
	}
	return len(seen)
}

// Metrics are the headline numbers of a view.
type Metrics struct {
	TotalAccidents int `json:"total_accidents"`
	// ShareOfTotal is the view size as a percentage of the full dataset,
	// nil when the dataset is empty.
	ShareOfTotal     *float64 `json:"share_of_total,omitempty"`
	TotalCasualties  int      `json:"total_casualties"`
	FatalAccidents   int      `json:"fatal_accidents"`
	SeriousInjuries  int      `json:"serious_injuries"`
	ParishesAffected int      `json:"parishes_affected"`
}

// Summarize computes the metrics panel. An empty view yields zeros.
func Summarize(v View) Metrics {
	m := Metrics{
		TotalAccidents:   len(v.Records),
		TotalCasualties:  SumCasualties(v.Records),
		FatalAccidents:   CountSeverity(v.Records, SeverityFatal),
		SeriousInjuries:  SumSeriousInjuries(v.Records),
		ParishesAffected: DistinctParishes(v.Records),
	}
	if v.Total > 0 {
		share := float64(len(v.Records)) / float64(v.Total) * 100
		m.ShareOfTotal = &share
	}
	return m
}

// Aggregations bundles every chart series of a view.
type Aggregations struct {
	BySeverity     []CategoryCount `json:"by_severity"`
	ByWeather      []CategoryCount `json:"by_weather"`
	ByRoadType     []CategoryCount `json:"by_road_type"`
	ByAccidentType []CategoryCount `json:"by_accident_type"`
	ByHour         []CategoryCount `json:"by_hour"`
	ByMonth        []CategoryCount `json:"by_month"`
	ByDayOfWeek    []CategoryCount `json:"by_day_of_week"`
	TopParishes    []CategoryCount `json:"top_parishes"`
}

// Aggregate computes every chart series, keeping the top k parishes.
func Aggregate(records []AccidentRecord, topParishes int) Aggregations {
	return Aggregations{
		BySeverity:     CountBySeverity(records),
		ByWeather:      CountByWeather(records),
		ByRoadType:     CountByRoadType(records),
		ByAccidentType: CountByAccidentType(records),
		ByHour:         CountByHour(records),
		ByMonth:        CountByMonth(records),
		ByDayOfWeek:    CountByDayOfWeek(records),
		TopParishes:    TopParishes(records, topParishes),
	}
}
