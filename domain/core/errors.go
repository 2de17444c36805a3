package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInsufficientData indicates a windowed computation fell below its
	// minimum required sample count.
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// ErrOutOfRange indicates a physiologically implausible input value.
	// Inputs are rejected at construction, never silently clamped.
	ErrOutOfRange = errors.New("value outside valid range")

	// ErrFitConvergence indicates a nonlinear solver exhausted its
	// iteration/tolerance budget without converging.
	ErrFitConvergence = errors.New("curve fit did not converge")
)

// InsufficientDataError reports how many samples a computation required
// versus how many qualified. It always names both counts so callers can
// decide whether to relax parameters, skip the day, or surface the failure.
type InsufficientDataError struct {
	Required int
	Found    int
	Window   string // which window fell short, e.g. "90-day lookback"
}

func (e *InsufficientDataError) Error() string {
	if e.Window != "" {
		return fmt.Sprintf("%s: %s requires %d samples, found %d", ErrInsufficientData, e.Window, e.Required, e.Found)
	}
	return fmt.Sprintf("%s: requires %d samples, found %d", ErrInsufficientData, e.Required, e.Found)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// NewInsufficientDataError creates an insufficient-data error with context
func NewInsufficientDataError(required, found int, window string) error {
	return &InsufficientDataError{Required: required, Found: found, Window: window}
}

// OutOfRangeError reports an input value that violates its physiological bounds
type OutOfRangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: %s=%g outside [%g, %g]", ErrOutOfRange, e.Field, e.Value, e.Min, e.Max)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// NewOutOfRangeError creates an out-of-range error with context
func NewOutOfRangeError(field string, value, min, max float64) error {
	return &OutOfRangeError{Field: field, Value: value, Min: min, Max: max}
}

// FitConvergenceError reports a nonlinear fit that ran out of budget.
// Distinct from InsufficientDataError: callers should retry with a simpler
// model rather than treat it as fatal.
type FitConvergenceError struct {
	Model      string
	Iterations int
	Cause      error
}

func (e *FitConvergenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s model after %d iterations: %v", ErrFitConvergence, e.Model, e.Iterations, e.Cause)
	}
	return fmt.Sprintf("%s: %s model after %d iterations", ErrFitConvergence, e.Model, e.Iterations)
}

func (e *FitConvergenceError) Is(target error) bool {
	return target == ErrFitConvergence
}

func (e *FitConvergenceError) Unwrap() error {
	return e.Cause
}

// NewFitConvergenceError creates a convergence error with context
func NewFitConvergenceError(model string, iterations int, cause error) error {
	return &FitConvergenceError{Model: model, Iterations: iterations, Cause: cause}
}

// Error checking helpers
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}

func IsFitConvergence(err error) bool {
	return errors.Is(err, ErrFitConvergence)
}
