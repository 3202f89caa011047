package domain

import (
	"sort"
	"time"
)

// Filter is one analyst selection. Date bounds are inclusive calendar dates;
// a zero bound is open. A nil value set leaves its dimension unconstrained,
// a non-nil empty set accepts nothing.
type Filter struct {
	From        time.Time
	To          time.Time
	Severities  []Severity
	Weather     []string
	RoadTypes   []string
	Parishes    []string
	TimePeriods []TimePeriod
}

// View is the subset of a dataset matching a filter, in source order.
type View struct {
	Records []AccidentRecord
	// Total is the size of the full dataset the view was cut from.
	Total int
}

// Len returns the number of matching records.
func (v View) Len() int { return len(v.Records) }

// Check returns ErrEmptyView when nothing matched.
func (v View) Check() error {
	if len(v.Records) == 0 {
		return ErrEmptyView
	}
	return nil
}

// FullView wraps every record of the dataset.
func FullView(ds *Dataset) View {
	if ds == nil {
		return View{Records: []AccidentRecord{}}
	}
	return View{Records: ds.Records, Total: len(ds.Records)}
}

// BuildView applies f to the dataset. The result holds its own slice; the
// dataset is never modified.
func BuildView(ds *Dataset, f Filter) View {
	if ds == nil {
		return View{Records: []AccidentRecord{}}
	}
	match := f.Predicate()
	out := make([]AccidentRecord, 0, len(ds.Records))
	for i := range ds.Records {
		if match(ds.Records[i]) {
			out = append(out, ds.Records[i])
		}
	}
	return View{Records: out, Total: len(ds.Records)}
}

// Predicate compiles the filter into a record test.
func (f Filter) Predicate() func(AccidentRecord) bool {
	from, hasFrom := calendarDay(f.From), !f.From.IsZero()
	to, hasTo := calendarDay(f.To), !f.To.IsZero()
	severities := newSet(f.Severities)
	weather := newSet(f.Weather)
	roadTypes := newSet(f.RoadTypes)
	parishes := newSet(f.Parishes)
	periods := newSet(f.TimePeriods)

	return func(r AccidentRecord) bool {
		day := calendarDay(r.Date)
		if hasFrom && day.Before(from) {
			return false
		}
		if hasTo && day.After(to) {
			return false
		}
		return severities.accepts(r.Severity) &&
			weather.accepts(r.Weather) &&
			roadTypes.accepts(r.RoadType) &&
			parishes.accepts(r.Parish) &&
			periods.accepts(r.TimePeriod)
	}
}

// valueSet is nil when the dimension is unconstrained.
type valueSet[T comparable] map[T]struct{}

func newSet[T comparable](values []T) valueSet[T] {
	if values == nil {
		return nil
	}
	s := make(valueSet[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s valueSet[T]) accepts(v T) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

// calendarDay drops the time of day. The date is read in t's own location.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Options holds the selectable values of every filter dimension.
type Options struct {
	MinDate     time.Time    `json:"min_date"`
	MaxDate     time.Time    `json:"max_date"`
	Severities  []Severity   `json:"severities"`
	Weather     []string     `json:"weather"`
	RoadTypes   []string     `json:"road_types"`
	Parishes    []string     `json:"parishes"`
	TimePeriods []TimePeriod `json:"time_periods"`
}

// OptionsFor lists distinct values in first-appearance order, except
// parishes which are sorted and time periods which keep day order.
func OptionsFor(ds *Dataset) Options {
	opts := Options{
		Severities:  []Severity{},
		Weather:     []string{},
		RoadTypes:   []string{},
		Parishes:    []string{},
		TimePeriods: append([]TimePeriod(nil), TimePeriods...),
	}
	if ds.Len() == 0 {
		return opts
	}

	seenSeverity := map[Severity]bool{}
	seenWeather := map[string]bool{}
	seenRoad := map[string]bool{}
	seenParish := map[string]bool{}
	opts.MinDate = ds.Records[0].Date
	opts.MaxDate = ds.Records[0].Date

	for _, r := range ds.Records {
		if r.Date.Before(opts.MinDate) {
			opts.MinDate = r.Date
		}
		if r.Date.After(opts.MaxDate) {
			opts.MaxDate = r.Date
		}
		if !seenSeverity[r.Severity] {
			seenSeverity[r.Severity] = true
			opts.Severities = append(opts.Severities, r.Severity)
		}
		if !seenWeather[r.Weather] {
			seenWeather[r.Weather] = true
			opts.Weather = append(opts.Weather, r.Weather)
		}
		if !seenRoad[r.RoadType] {
			seenRoad[r.RoadType] = true
			opts.RoadTypes = append(opts.RoadTypes, r.RoadType)
		}
		if !seenParish[r.Parish] {
			seenParish[r.Parish] = true
			opts.Parishes = append(opts.Parishes, r.Parish)
		}
	}
	sort.Strings(opts.Parishes)
	return opts
}
