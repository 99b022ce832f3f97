package easycntk

import (
	"errors"
	"fmt"
)

// These are the kinds of errors reported by the
// orchestration layer.
// Use errors.Is to test an error against a kind.
var (
	// ErrConfiguration indicates a structural mismatch
	// detected before any batch is processed.
	ErrConfiguration = errors.New("configuration error")

	// ErrShape indicates that two vectors which should have
	// the same length do not.
	ErrShape = errors.New("shape error")

	// ErrEmptyInput indicates that a metric was computed on
	// an empty sequence of items.
	ErrEmptyInput = errors.New("empty input")

	// ErrTransient indicates a failure of the backend while
	// processing a batch, which may succeed if retried.
	ErrTransient = errors.New("transient training failure")
)

// A ConfigError is an ErrConfiguration with a message.
type ConfigError struct {
	Msg string
}

// ConfigErrorf creates a *ConfigError with a formatted
// message.
func ConfigErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

func (c *ConfigError) Error() string {
	return "configuration error: " + c.Msg
}

// Is reports whether target is ErrConfiguration.
func (c *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// A LengthMismatchError is reported when a feature
// collection and its label collection have different
// counts.
type LengthMismatchError struct {
	Features int
	Labels   int
}

func (l *LengthMismatchError) Error() string {
	return fmt.Sprintf("length mismatch: %d features but %d labels", l.Features, l.Labels)
}

// Is reports whether target is ErrConfiguration.
func (l *LengthMismatchError) Is(target error) bool {
	return target == ErrConfiguration
}

// A ShapeError is reported when a vector does not have
// the expected length.
type ShapeError struct {
	// What describes the offending vector.
	What string

	Expected int
	Actual   int
}

func (s *ShapeError) Error() string {
	return fmt.Sprintf("shape error: %s: expected length %d but got %d", s.What,
		s.Expected, s.Actual)
}

// Is reports whether target is ErrShape.
func (s *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// A TransientError wraps a backend failure that occurred
// while training on the batches of an epoch.
type TransientError struct {
	Epoch   int
	Attempt int
	Err     error
}

func (t *TransientError) Error() string {
	return fmt.Sprintf("transient training failure (epoch %d, attempt %d): %v", t.Epoch,
		t.Attempt, t.Err)
}

// Unwrap returns the underlying failure.
func (t *TransientError) Unwrap() error {
	return t.Err
}

// Is reports whether target is ErrTransient.
func (t *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// CatchPanic runs f and converts a panic into an error.
//
// The vector backend reports faults (for example, length
// mismatches inside a layer) by panicking, so callers use
// this at the boundary of a forward or backward pass.
func CatchPanic(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("backend panic: %w", e)
			} else {
				err = fmt.Errorf("backend panic: %v", r)
			}
		}
	}()
	f()
	return nil
}
