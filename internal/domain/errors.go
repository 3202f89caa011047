package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyView reports that a filter selection matched no records. Panels
// treat it as a notice, not a failure.
var ErrEmptyView = errors.New("no data available for the selected filters")

// LoadError reports that a dataset could not be read. No partial dataset is
// ever returned alongside it.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load dataset %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load dataset %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
