package http

import (
	"fmt"
	"net/url"
	"time"

	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
)

// Filter query parameters. Every value parameter may repeat.
const (
	paramFrom       = "from"
	paramTo         = "to"
	paramSeverity   = "severity"
	paramWeather    = "weather"
	paramRoadType   = "road_type"
	paramParish     = "parish"
	paramTimePeriod = "time_period"
	paramColumns    = "cols"
	paramTiles      = "tiles"
)

// BadRequestError reports a query parameter that could not be parsed.
type BadRequestError struct {
	Param string
	Value string
	Err   error
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *BadRequestError) Unwrap() error { return e.Err }

// ParseFilter reads a filter selection from query parameters. An absent
// parameter leaves its dimension unconstrained; a parameter present only with
// empty values accepts nothing.
func ParseFilter(q url.Values) (domain.Filter, error) {
	from, err := parseDate(q, paramFrom)
	if err != nil {
		return domain.Filter{}, err
	}
	to, err := parseDate(q, paramTo)
	if err != nil {
		return domain.Filter{}, err
	}

	f := domain.Filter{
		From:      from,
		To:        to,
		Weather:   listParam(q, paramWeather),
		RoadTypes: listParam(q, paramRoadType),
		Parishes:  listParam(q, paramParish),
	}
	if vals := listParam(q, paramSeverity); vals != nil {
		f.Severities = make([]domain.Severity, len(vals))
		for i, v := range vals {
			f.Severities[i] = domain.Severity(v)
		}
	}
	if vals := listParam(q, paramTimePeriod); vals != nil {
		f.TimePeriods = make([]domain.TimePeriod, len(vals))
		for i, v := range vals {
			f.TimePeriods[i] = domain.TimePeriod(v)
		}
	}
	return f, nil
}

// listParam returns nil when the parameter is absent and a non-nil slice of
// the non-empty values otherwise.
func listParam(q url.Values, key string) []string {
	vals, ok := q[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseDate(q url.Values, key string) (time.Time, error) {
	s := q.Get(key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, &BadRequestError{Param: key, Value: s, Err: err}
	}
	return t, nil
}
