package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("sim: invalid configuration")

	// ErrUnknownCommand indicates a population command name that does not exist.
	ErrUnknownCommand = errors.New("sim: unknown command")

	// ErrNonFinite indicates a NaN or Inf position or velocity.
	ErrNonFinite = errors.New("sim: non-finite particle state")

	// ErrNotSetup indicates Run was called before Setup.
	ErrNotSetup = errors.New("sim: experiment not set up")
)

// StepError wraps an error with the frame it occurred on.
type StepError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
