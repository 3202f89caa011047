package domain

import (
	"strconv"
	"time"
)

// Severity is the casualty tier of an accident.
type Severity string

const (
	SeverityFatal              Severity = "Fatal"
	SeveritySerious            Severity = "Serious"
	SeverityLight              Severity = "Light"
	SeverityPropertyDamageOnly Severity = "Property Damage Only"
)

// Severities lists every tier from most to least severe.
var Severities = []Severity{SeverityFatal, SeveritySerious, SeverityLight, SeverityPropertyDamageOnly}

// TimePeriod is the time-of-day bucket of an accident.
type TimePeriod string

const (
	TimePeriodMorning   TimePeriod = "Morning"
	TimePeriodAfternoon TimePeriod = "Afternoon"
	TimePeriodEvening   TimePeriod = "Evening"
	TimePeriodNight     TimePeriod = "Night"
)

// TimePeriods lists the buckets in day order.
var TimePeriods = []TimePeriod{TimePeriodMorning, TimePeriodAfternoon, TimePeriodEvening, TimePeriodNight}

// AccidentRecord is one enriched row of the dataset. Raw columns come first,
// derived columns follow in the order they are computed.
type AccidentRecord struct {
	ID              string    `json:"id"`
	Date            time.Time `json:"date"`
	Hour            int       `json:"hour"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Parish          string    `json:"parish"`
	RoadType        string    `json:"road_type"`
	AccidentType    string    `json:"accident_type"`
	Weather         string    `json:"weather"`
	NumVehicles     int       `json:"num_vehicles"`
	InjuriesLight   int       `json:"injuries_light"`
	InjuriesSerious int       `json:"injuries_serious"`
	Fatalities30d   int       `json:"fatalities_30d"`
	DayOfWeek       string    `json:"day_of_week"`

	Month           int        `json:"month"`
	MonthName       string     `json:"month_name"`
	Severity        Severity   `json:"severity"`
	TotalCasualties int        `json:"total_casualties"`
	TimePeriod      TimePeriod `json:"time_period"`
}

// RawColumns are the columns an input file must provide.
var RawColumns = []string{
	"id", "date", "hour", "latitude", "longitude", "parish", "road_type",
	"accident_type", "weather", "num_vehicles", "injuries_light",
	"injuries_serious", "fatalities_30d", "day_of_week",
}

// DerivedColumns are appended by Enrich.
var DerivedColumns = []string{"month", "month_name", "severity", "total_casualties", "time_period"}

// Columns returns every column in declaration order.
func Columns() []string {
	cols := make([]string, 0, len(RawColumns)+len(DerivedColumns))
	cols = append(cols, RawColumns...)
	return append(cols, DerivedColumns...)
}

// DefaultTableColumns is the column selection shown before the analyst picks one.
var DefaultTableColumns = []string{
	"id", "date", "hour", "parish", "accident_type", "severity", "weather",
	"road_type", "total_casualties", "num_vehicles",
}

// Field renders a column value the way exports and tables show it.
func (r AccidentRecord) Field(column string) (string, bool) {
	switch column {
	case "id":
		return r.ID, true
	case "date":
		return FormatDate(r.Date), true
	case "hour":
		return strconv.Itoa(r.Hour), true
	case "latitude":
		return formatFloat(r.Latitude), true
	case "longitude":
		return formatFloat(r.Longitude), true
	case "parish":
		return r.Parish, true
	case "road_type":
		return r.RoadType, true
	case "accident_type":
		return r.AccidentType, true
	case "weather":
		return r.Weather, true
	case "num_vehicles":
		return strconv.Itoa(r.NumVehicles), true
	case "injuries_light":
		return strconv.Itoa(r.InjuriesLight), true
	case "injuries_serious":
		return strconv.Itoa(r.InjuriesSerious), true
	case "fatalities_30d":
		return strconv.Itoa(r.Fatalities30d), true
	case "day_of_week":
		return r.DayOfWeek, true
	case "month":
		return strconv.Itoa(r.Month), true
	case "month_name":
		return r.MonthName, true
	case "severity":
		return string(r.Severity), true
	case "total_casualties":
		return strconv.Itoa(r.TotalCasualties), true
	case "time_period":
		return string(r.TimePeriod), true
	default:
		return "", false
	}
}

// FormatDate renders a date-only value as 2006-01-02 and keeps the time of
// day when one is present.
func FormatDate(t time.Time) string {
	if isMidnight(t) {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

// DateLayout is the single layout for a date column: time.DateTime if any
// record carries a time of day, time.DateOnly otherwise.
func DateLayout(records []AccidentRecord) string {
	for i := range records {
		if !isMidnight(records[i].Date) {
			return time.DateTime
		}
	}
	return time.DateOnly
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Dataset is the immutable enriched record set and the identity of the file
// it was read from.
type Dataset struct {
	Path     string
	ModTime  time.Time
	LoadedAt time.Time
	Records  []AccidentRecord
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
