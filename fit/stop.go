package fit

import "math"

// A StopFunc decides whether to stop training after an
// epoch (starting at 1), given the per-session average
// losses and evaluation costs recorded for that epoch.
type StopFunc func(epoch int, losses, evals []float64) bool

// LossBelow stops once every session's loss is below
// threshold.
func LossBelow(threshold float64) StopFunc {
	return func(epoch int, losses, evals []float64) bool {
		return allBelow(losses, threshold)
	}
}

// EvalBelow stops once every session's evaluation cost is
// below threshold.
func EvalBelow(threshold float64) StopFunc {
	return func(epoch int, losses, evals []float64) bool {
		return allBelow(evals, threshold)
	}
}

// Plateau stops once the total loss has not improved by
// more than minDelta for patience consecutive epochs.
func Plateau(patience int, minDelta float64) StopFunc {
	best := math.Inf(1)
	var stale int
	return func(epoch int, losses, evals []float64) bool {
		var total float64
		for _, l := range losses {
			total += l
		}
		if total < best-minDelta {
			best = total
			stale = 0
			return false
		}
		stale++
		return stale >= patience
	}
}

// Any stops as soon as one of the functions says so.
// Every function is invoked each epoch, so stateful
// functions see every epoch.
func Any(funcs ...StopFunc) StopFunc {
	return func(epoch int, losses, evals []float64) bool {
		var stop bool
		for _, f := range funcs {
			if f(epoch, losses, evals) {
				stop = true
			}
		}
		return stop
	}
}

// Channel stops once ch is closed or receives a value.
// It never blocks.
func Channel(ch <-chan struct{}) StopFunc {
	return func(epoch int, losses, evals []float64) bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}
}

func allBelow(values []float64, threshold float64) bool {
	for _, v := range values {
		if !(v < threshold) {
			return false
		}
	}
	return len(values) > 0
}
