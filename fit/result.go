package fit

import (
	"fmt"
	"time"
)

// State is the state of a training run.
type State int

// These are the states a run moves through.
// A run which fails ends with an error instead of a
// Result.
const (
	NotStarted State = iota
	Running
	Completed
	StoppedEarly
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case StoppedEarly:
		return "stopped early"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// A Result summarizes the training of one session.
//
// Every curve has one entry per completed epoch, so
// len(LossCurve) == EpochCount.
type Result struct {
	// LossError and EvalError are the averages from the
	// last epoch.
	LossError float64
	EvalError float64

	Duration   time.Duration
	EpochCount int
	State      State

	LossCurve []float64
	EvalCurve []float64

	// RateCurve records the learning rate used during each
	// epoch.
	RateCurve []float64

	// ValidationCurve is only set when a validation
	// supplier was used.
	ValidationCurve []float64

	// RunID identifies the Fit call in log output.
	RunID string

	// Degraded is set if an epoch failed even after
	// retries, in which case the curves may contain stale
	// values.
	Degraded bool
}
