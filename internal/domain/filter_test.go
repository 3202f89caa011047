package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2023, month, d, 0, 0, 0, 0, time.UTC)
}

func testDataset() *Dataset {
	raw := []AccidentRecord{
		{ID: "1", Date: day(time.January, 10), Hour: 8, Parish: "Belém", RoadType: "Avenue", AccidentType: "Collision", Weather: "Clear", Fatalities30d: 1, InjuriesSerious: 2, DayOfWeek: "Tuesday"},
		{ID: "2", Date: day(time.January, 20), Hour: 13, Parish: "Arroios", RoadType: "Street", AccidentType: "Pedestrian", Weather: "Rain", InjuriesSerious: 1, DayOfWeek: "Friday"},
		{ID: "3", Date: day(time.February, 3), Hour: 23, Parish: "Alvalade", RoadType: "Avenue", AccidentType: "Collision", Weather: "Clear", DayOfWeek: "Friday"},
		{ID: "4", Date: day(time.February, 15), Hour: 19, Parish: "Arroios", RoadType: "Roundabout", AccidentType: "Run-off", Weather: "Fog", InjuriesLight: 1, DayOfWeek: "Wednesday"},
	}
	records := make([]AccidentRecord, len(raw))
	for i, r := range raw {
		records[i] = Enrich(r)
	}
	return &Dataset{Path: "test.csv", Records: records}
}

func ids(v View) []string {
	out := make([]string, len(v.Records))
	for i, r := range v.Records {
		out[i] = r.ID
	}
	return out
}

func TestBuildView_UnconstrainedReturnsEverything(t *testing.T) {
	ds := testDataset()

	v := BuildView(ds, Filter{})

	require.Equal(t, ds.Len(), v.Len())
	assert.Equal(t, ds.Len(), v.Total)
	if diff := cmp.Diff(ds.Records, v.Records); diff != "" {
		t.Errorf("view differs from dataset (-want +got):\n%s", diff)
	}
}

func TestBuildView_AllValuesSelected(t *testing.T) {
	ds := testDataset()
	opts := OptionsFor(ds)

	v := BuildView(ds, Filter{
		From:        opts.MinDate,
		To:          opts.MaxDate,
		Severities:  opts.Severities,
		Weather:     opts.Weather,
		RoadTypes:   opts.RoadTypes,
		Parishes:    opts.Parishes,
		TimePeriods: opts.TimePeriods,
	})

	assert.Equal(t, ids(FullView(ds)), ids(v))
}

func TestBuildView_Dimensions(t *testing.T) {
	ds := testDataset()

	tests := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{"fatal only", Filter{Severities: []Severity{SeverityFatal}}, []string{"1"}},
		{"or within dimension", Filter{Weather: []string{"Rain", "Fog"}}, []string{"2", "4"}},
		{"and across dimensions", Filter{RoadTypes: []string{"Avenue"}, Weather: []string{"Clear"}, TimePeriods: []TimePeriod{TimePeriodNight}}, []string{"3"}},
		{"parish", Filter{Parishes: []string{"Arroios"}}, []string{"2", "4"}},
		{"inclusive lower bound", Filter{From: day(time.January, 20)}, []string{"2", "3", "4"}},
		{"inclusive upper bound", Filter{To: day(time.February, 3)}, []string{"1", "2", "3"}},
		{"single day", Filter{From: day(time.February, 3), To: day(time.February, 3)}, []string{"3"}},
		{"bound with time of day still inclusive", Filter{To: day(time.February, 3).Add(5 * time.Hour)}, []string{"1", "2", "3"}},
		{"empty set accepts nothing", Filter{Severities: []Severity{}}, []string{}},
		{"unknown value", Filter{Weather: []string{"Snow"}}, []string{}},
		{"inverted range", Filter{From: day(time.March, 1), To: day(time.January, 1)}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := BuildView(ds, tt.filter)
			assert.Equal(t, tt.expected, ids(v))
			assert.Equal(t, ds.Len(), v.Total)
		})
	}
}

func TestBuildView_Idempotent(t *testing.T) {
	ds := testDataset()
	f := Filter{Weather: []string{"Clear"}, From: day(time.January, 1)}

	first := BuildView(ds, f)
	second := BuildView(ds, f)

	assert.Equal(t, first, second)
}

func TestBuildView_NarrowerRangeNeverGrows(t *testing.T) {
	ds := testDataset()
	wide := BuildView(ds, Filter{From: day(time.January, 1), To: day(time.December, 31)})

	for d := 1; d <= 28; d++ {
		narrow := BuildView(ds, Filter{From: day(time.January, d), To: day(time.February, d)})
		assert.LessOrEqual(t, narrow.Len(), wide.Len())
	}
}

func TestBuildView_DoesNotMutateDataset(t *testing.T) {
	ds := testDataset()
	before := append([]AccidentRecord(nil), ds.Records...)

	v := BuildView(ds, Filter{Parishes: []string{"Arroios"}})
	v.Records[0].Parish = "changed"

	assert.Equal(t, before, ds.Records)
}

func TestBuildView_NilDataset(t *testing.T) {
	v := BuildView(nil, Filter{})
	assert.Equal(t, 0, v.Len())
	assert.ErrorIs(t, v.Check(), ErrEmptyView)
}

func TestViewCheck(t *testing.T) {
	ds := testDataset()
	assert.NoError(t, FullView(ds).Check())
	assert.ErrorIs(t, BuildView(ds, Filter{Weather: []string{}}).Check(), ErrEmptyView)
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(testDataset())

	assert.Equal(t, day(time.January, 10), opts.MinDate)
	assert.Equal(t, day(time.February, 15), opts.MaxDate)
	assert.Equal(t, []Severity{SeverityFatal, SeveritySerious, SeverityPropertyDamageOnly, SeverityLight}, opts.Severities)
	assert.Equal(t, []string{"Clear", "Rain", "Fog"}, opts.Weather)
	assert.Equal(t, []string{"Avenue", "Street", "Roundabout"}, opts.RoadTypes)
	assert.Equal(t, []string{"Alvalade", "Arroios", "Belém"}, opts.Parishes)
	assert.Equal(t, TimePeriods, opts.TimePeriods)
}

func TestOptionsFor_Empty(t *testing.T) {
	opts := OptionsFor(&Dataset{})
	assert.Empty(t, opts.Parishes)
	assert.True(t, opts.MinDate.IsZero())
	assert.Len(t, opts.TimePeriods, 4)
}
