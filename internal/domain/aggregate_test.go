package domain

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountBySeverity(t *testing.T) {
	got := CountBySeverity(testDataset().Records)

	assert.Equal(t, []CategoryCount{
		{"Fatal", 1},
		{"Serious", 1},
		{"Light", 1},
		{"Property Damage Only", 1},
	}, got)
}

func TestCountBySeverity_OmitsEmptyTiers(t *testing.T) {
	got := CountBySeverity([]AccidentRecord{Enrich(AccidentRecord{InjuriesLight: 1})})
	assert.Equal(t, []CategoryCount{{"Light", 1}}, got)
}

func TestCountByWeather_DescendingWithStableTies(t *testing.T) {
	got := CountByWeather(testDataset().Records)
	assert.Equal(t, []CategoryCount{{"Clear", 2}, {"Rain", 1}, {"Fog", 1}}, got)
}

func TestCountByRoadTypeAndAccidentType(t *testing.T) {
	records := testDataset().Records
	assert.Equal(t, []CategoryCount{{"Avenue", 2}, {"Street", 1}, {"Roundabout", 1}}, CountByRoadType(records))
	assert.Equal(t, []CategoryCount{{"Collision", 2}, {"Pedestrian", 1}, {"Run-off", 1}}, CountByAccidentType(records))
}

func TestTopParishes(t *testing.T) {
	records := testDataset().Records

	assert.Equal(t, []CategoryCount{{"Arroios", 2}}, TopParishes(records, 1))
	assert.Len(t, TopParishes(records, 10), 3)
	assert.Len(t, TopParishes(records, 0), 3)
}

func TestCountByHour_AlwaysTwentyFourEntries(t *testing.T) {
	for _, records := range [][]AccidentRecord{nil, testDataset().Records} {
		got := CountByHour(records)
		require.Len(t, got, 24)
		for h, c := range got {
			assert.Equal(t, h, mustAtoi(t, c.Category))
		}
	}

	got := CountByHour(testDataset().Records)
	assert.Equal(t, 1, got[8].Count)
	assert.Equal(t, 1, got[23].Count)
	assert.Equal(t, 0, got[0].Count)
}

func TestCountByMonth_CalendarOrder(t *testing.T) {
	got := CountByMonth(testDataset().Records)

	require.Len(t, got, 12)
	assert.Equal(t, CategoryCount{"January", 2}, got[0])
	assert.Equal(t, CategoryCount{"February", 2}, got[1])
	assert.Equal(t, CategoryCount{"December", 0}, got[11])
}

func TestCountByDayOfWeek_FixedWeekOrder(t *testing.T) {
	got := CountByDayOfWeek(testDataset().Records)

	assert.Equal(t, []CategoryCount{
		{"Monday", 0},
		{"Tuesday", 1},
		{"Wednesday", 1},
		{"Thursday", 0},
		{"Friday", 2},
		{"Saturday", 0},
		{"Sunday", 0},
	}, got)

	assert.Len(t, CountByDayOfWeek(nil), 7)
}

func TestScalars(t *testing.T) {
	records := testDataset().Records

	assert.Equal(t, 5, SumCasualties(records))
	assert.Equal(t, 3, SumSeriousInjuries(records))
	assert.Equal(t, 1, CountSeverity(records, SeverityFatal))
	assert.Equal(t, 3, DistinctParishes(records))
	assert.Equal(t, 0, DistinctParishes(nil))
}

func TestSummarize(t *testing.T) {
	ds := testDataset()

	m := Summarize(BuildView(ds, Filter{Parishes: []string{"Arroios"}}))

	assert.Equal(t, 2, m.TotalAccidents)
	require.NotNil(t, m.ShareOfTotal)
	assert.InDelta(t, 50.0, *m.ShareOfTotal, 0.0001)
	assert.Equal(t, 2, m.TotalCasualties)
	assert.Equal(t, 0, m.FatalAccidents)
	assert.Equal(t, 1, m.SeriousInjuries)
	assert.Equal(t, 1, m.ParishesAffected)
}

func TestSummarize_EmptyView(t *testing.T) {
	m := Summarize(BuildView(testDataset(), Filter{Weather: []string{}}))
	assert.Equal(t, Metrics{ShareOfTotal: m.ShareOfTotal}, m)
	require.NotNil(t, m.ShareOfTotal)
	assert.Zero(t, *m.ShareOfTotal)

	assert.Nil(t, Summarize(View{}).ShareOfTotal)
}

func TestEndToEnd_FatalOnly(t *testing.T) {
	raw := []AccidentRecord{
		{ID: "f", Date: time.Date(2023, time.May, 2, 0, 0, 0, 0, time.UTC), Hour: 9, Fatalities30d: 1},
		{ID: "s", Date: time.Date(2023, time.May, 20, 0, 0, 0, 0, time.UTC), Hour: 14, InjuriesSerious: 1},
		{ID: "p", Date: time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), Hour: 20},
	}
	ds := &Dataset{}
	for _, r := range raw {
		ds.Records = append(ds.Records, Enrich(r))
	}

	v := BuildView(ds, Filter{Severities: []Severity{SeverityFatal}})
	m := Summarize(v)

	assert.Equal(t, 1, v.Len())
	assert.Equal(t, 1, m.TotalAccidents)
	assert.Equal(t, 1, m.FatalAccidents)
}

func TestAggregate(t *testing.T) {
	agg := Aggregate(testDataset().Records, 2)

	assert.Len(t, agg.ByHour, 24)
	assert.Len(t, agg.ByMonth, 12)
	assert.Len(t, agg.ByDayOfWeek, 7)
	assert.Len(t, agg.TopParishes, 2)
	assert.Len(t, agg.BySeverity, 4)
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
