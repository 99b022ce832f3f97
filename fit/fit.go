// Package fit drives the epoch loop which trains one or
// more sessions on a stream of batches.
//
// Every session trains on the same batches in lock-step;
// a multi-head model has one session per head.
// Between epochs, Fit records loss and evaluation curves,
// consults an optional stop predicate and applies an
// optional learning rate rule.
package fit

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/byteshadow/EasyCNTK"
	"github.com/byteshadow/EasyCNTK/batch"
	"github.com/google/uuid"
)

// DefaultMaxRetries is the number of times a failing
// epoch is retried when Config.MaxRetries is 0.
const DefaultMaxRetries = 3

// Config configures a call to Fit.
type Config struct {
	// Sessions are trained in lock-step.
	// Session i trains against label set Sessions[i].Head.
	Sessions []*Session

	// Supplier produces the batches for each epoch.
	Supplier batch.Supplier

	// Epochs is the maximum number of epochs.
	Epochs int

	// RateRule, if non-nil, is applied after every epoch.
	RateRule RateRule

	// Stop, if non-nil, is called after every epoch.
	Stop StopFunc

	// MaxRetries is the number of times a failing epoch is
	// re-run from the start of its batch sequence.
	// If it is 0, DefaultMaxRetries is used.
	// If it is negative, failures are not retried.
	MaxRetries int

	// DegradeOnFailure keeps training after an epoch
	// exhausts its retries, logging the failure and marking
	// the results as degraded.
	// Otherwise, Fit returns a *easycntk.TransientError.
	DegradeOnFailure bool

	// Validation, if non-nil, supplies held-out batches
	// which are evaluated after every epoch.
	Validation batch.Supplier

	// Dropout lists nets whose Dropout layers are enabled
	// while training and disabled for validation and once
	// Fit returns.
	Dropout []easycntk.Net

	// Logger receives progress and diagnostic lines.
	// If it is nil, log.Default() is used.
	Logger *log.Logger

	// Status, if non-nil, is called after every epoch with
	// the results so far.
	Status func(epoch int, results []*Result)
}

// Fit runs the epoch loop and returns one Result per
// session.
//
// Configuration errors are returned before any step is
// taken, or as soon as a batch disagrees with the number
// of sessions.
// Sessions are closed when Fit returns.
func Fit(cfg *Config) ([]*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	defer func() {
		easycntk.SetDropout(false, cfg.Dropout...)
		for _, s := range cfg.Sessions {
			s.Close()
		}
	}()

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	runID := uuid.New().String()
	start := time.Now()

	results := make([]*Result, len(cfg.Sessions))
	for i := range results {
		results[i] = &Result{RunID: runID, State: Running}
	}

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		rates := cfg.rates()
		easycntk.SetDropout(true, cfg.Dropout...)
		err := cfg.runEpoch(logger, runID, epoch)
		easycntk.SetDropout(false, cfg.Dropout...)
		if err != nil {
			var transient *easycntk.TransientError
			if !errors.As(err, &transient) || !cfg.DegradeOnFailure {
				return nil, err
			}
			logger.Printf("run=%s epoch=%d degraded=true error=%q", runID, epoch, err)
			for _, r := range results {
				r.Degraded = true
			}
		}

		losses := make([]float64, len(cfg.Sessions))
		evals := make([]float64, len(cfg.Sessions))
		for i, s := range cfg.Sessions {
			losses[i] = s.LastLossAverage()
			evals[i] = s.LastEvalAverage()
			r := results[i]
			r.LossCurve = append(r.LossCurve, losses[i])
			r.EvalCurve = append(r.EvalCurve, evals[i])
			r.RateCurve = append(r.RateCurve, rates[i])
			r.EpochCount = epoch
		}
		if cfg.Validation != nil {
			if err := cfg.validateEpoch(epoch, results); err != nil {
				return nil, err
			}
		}
		for i, r := range results {
			line := fmt.Sprintf("run=%s epoch=%d head=%d loss=%g eval=%g rate=%g", runID,
				epoch, i, losses[i], evals[i], rates[i])
			if cfg.Validation != nil {
				line += fmt.Sprintf(" validation=%g", r.ValidationCurve[epoch-1])
			}
			logger.Print(line)
		}
		if cfg.Status != nil {
			cfg.Status(epoch, results)
		}

		if cfg.Stop != nil && cfg.Stop(epoch, losses, evals) {
			for _, r := range results {
				r.State = StoppedEarly
			}
			break
		}
		if cfg.RateRule != nil {
			if err := cfg.applyRule(epoch, rates); err != nil {
				return nil, err
			}
		}
	}

	duration := time.Since(start)
	for _, r := range results {
		r.Duration = duration
		if r.State == Running {
			r.State = Completed
		}
		if n := len(r.LossCurve); n > 0 {
			r.LossError = r.LossCurve[n-1]
			r.EvalError = r.EvalCurve[n-1]
		}
	}
	return results, nil
}

func (c *Config) validate() error {
	if len(c.Sessions) == 0 {
		return easycntk.ConfigErrorf("no training sessions")
	} else if c.Supplier == nil {
		return easycntk.ConfigErrorf("no batch supplier")
	} else if c.Epochs <= 0 {
		return easycntk.ConfigErrorf("epoch count must be positive (got %d)", c.Epochs)
	}
	heads := map[int]bool{}
	for i, s := range c.Sessions {
		if s.closed {
			return easycntk.ConfigErrorf("session %d is closed", i)
		} else if heads[s.Head] {
			return easycntk.ConfigErrorf("head %d has more than one session", s.Head)
		}
		heads[s.Head] = true
	}
	return nil
}

func (c *Config) maxRetries() int {
	if c.MaxRetries == 0 {
		return DefaultMaxRetries
	} else if c.MaxRetries < 0 {
		return 0
	}
	return c.MaxRetries
}

func (c *Config) rates() []float64 {
	res := make([]float64, len(c.Sessions))
	for i, s := range c.Sessions {
		res[i] = s.Optimizer.LearningRate
	}
	return res
}

// runEpoch trains on one epoch, re-running the whole batch
// sequence on failure.
func (c *Config) runEpoch(logger *log.Logger, runID string, epoch int) error {
	var err error
	attempts := c.maxRetries() + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		err = c.trainEpoch(epoch)
		if err == nil {
			return nil
		} else if isFatal(err) {
			return err
		}
		logger.Printf("run=%s epoch=%d attempt=%d error=%q", runID, epoch, attempt, err)
	}
	return &easycntk.TransientError{Epoch: epoch, Attempt: attempts, Err: err}
}

func (c *Config) trainEpoch(epoch int) error {
	stream, err := c.Supplier(epoch)
	if err != nil {
		return err
	}
	for {
		b, ok := stream.Next()
		if !ok {
			return nil
		}
		if len(b.Outputs) != len(c.Sessions) {
			return easycntk.ConfigErrorf("batch has %d label sets but there are %d sessions",
				len(b.Outputs), len(c.Sessions))
		}
		for _, s := range c.Sessions {
			if err := s.TrainOnBatch(b); err != nil {
				return err
			}
		}
	}
}

func (c *Config) validateEpoch(epoch int, results []*Result) error {
	stream, err := c.Validation(epoch)
	if err != nil {
		return err
	}
	batches := batch.Collect(stream)
	n := batches.NumExamples()
	for i, s := range c.Sessions {
		var total float64
		for _, b := range batches {
			if len(b.Outputs) != len(c.Sessions) {
				return easycntk.ConfigErrorf("validation batch has %d label sets but there "+
					"are %d sessions", len(b.Outputs), len(c.Sessions))
			}
			cost, err := s.EvalBatch(b)
			if err != nil {
				return err
			}
			total += cost
		}
		var avg float64
		if n > 0 {
			avg = total / float64(n)
		}
		results[i].ValidationCurve = append(results[i].ValidationCurve, avg)
	}
	return nil
}

func (c *Config) applyRule(epoch int, rates []float64) error {
	newRates := c.RateRule(epoch, rates)
	if len(newRates) != len(rates) {
		return easycntk.ConfigErrorf("rate rule returned %d rates for %d sessions",
			len(newRates), len(rates))
	}
	for i, s := range c.Sessions {
		if newRates[i] != rates[i] {
			s.Optimizer.SetLearningRate(newRates[i])
		}
	}
	return nil
}

func isFatal(err error) bool {
	return errors.Is(err, easycntk.ErrConfiguration) || errors.Is(err, easycntk.ErrShape) ||
		errors.Is(err, errSessionClosed)
}
