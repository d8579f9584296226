package sim

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDt       = errors.New("sim: dt must be positive and finite")
	ErrInvalidDuration = errors.New("sim: duration must be positive")
	ErrInvalidSubsteps = errors.New("sim: substeps must be at least 1")
	ErrNoRuns          = errors.New("sim: ensemble needs at least one run")
)

// SimError wraps a failure with the tick it happened on.
type SimError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("sim: tick %d (t=%.3fs): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
