package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/byteshadow/EasyCNTK"
	"github.com/byteshadow/EasyCNTK/batch"
	"github.com/byteshadow/EasyCNTK/sgd"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

var errSessionClosed = errors.New("session is closed")

// A Session trains one model output with its own loss,
// evaluation function and optimizer.
type Session struct {
	Output    easycntk.Output
	Loss      easycntk.Cost
	Eval      easycntk.Cost
	Optimizer *sgd.Optimizer

	// Head is the index of the batch label set this
	// session trains against.
	Head int

	lastLoss float64
	lastEval float64
	closed   bool
}

// NewSession creates a session and binds the optimizer to
// the output's parameters.
// If eval is nil, the loss is used for evaluation too.
func NewSession(out easycntk.Output, loss, eval easycntk.Cost, opt *sgd.Optimizer,
	head int) *Session {
	if eval == nil {
		eval = loss
	}
	opt.Bind(out.Parameters())
	return &Session{
		Output:    out,
		Loss:      loss,
		Eval:      eval,
		Optimizer: opt,
		Head:      head,
	}
}

// NewSessions creates one session per model output.
//
// There must be exactly one loss, one evaluation function
// and one optimizer per output, and no optimizer may be
// shared between outputs.
func NewSessions(m easycntk.Model, losses, evals []easycntk.Cost,
	opts []*sgd.Optimizer) ([]*Session, error) {
	outs := m.Outputs()
	if len(losses) != len(evals) {
		return nil, easycntk.ConfigErrorf("%d loss functions but %d evaluation functions",
			len(losses), len(evals))
	} else if len(losses) != len(outs) {
		return nil, easycntk.ConfigErrorf("%d loss functions but model has %d outputs",
			len(losses), len(outs))
	} else if len(opts) != len(outs) {
		return nil, easycntk.ConfigErrorf("%d optimizers but model has %d outputs",
			len(opts), len(outs))
	}
	seen := map[*sgd.Optimizer]bool{}
	for i, o := range opts {
		if o == nil {
			return nil, easycntk.ConfigErrorf("optimizer %d is nil", i)
		} else if seen[o] {
			return nil, easycntk.ConfigErrorf("optimizer %d is shared with another head", i)
		}
		seen[o] = true
	}
	res := make([]*Session, len(outs))
	for i, out := range outs {
		res[i] = NewSession(out, losses[i], evals[i], opts[i], i)
	}
	return res, nil
}

// TrainOnBatch performs one optimizer step on the batch.
//
// The optimizer's batch size is initialized from the
// first batch if it is unset.
// Backend faults and non-finite losses are returned as
// errors, in which case no step is taken.
func (s *Session) TrainOnBatch(b *batch.Batch) error {
	if s.closed {
		return errSessionClosed
	}
	if s.Head >= len(b.Outputs) {
		return easycntk.ConfigErrorf("session trains head %d but batch has %d label sets",
			s.Head, len(b.Outputs))
	}
	s.Optimizer.InitBatchSize(b.Size)

	var loss, eval float64
	var grad anydiff.Grad
	err := easycntk.CatchPanic(func() {
		desired := b.Outputs[s.Head]
		actual := s.Output.Apply(b.Inputs)
		costs := s.Loss.Cost(desired, actual, b.Size)
		loss = average(costs, b.Size)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return
		}
		eval = average(s.Eval.Cost(desired, actual, b.Size), b.Size)

		grad = anydiff.NewGrad(s.Output.Parameters()...)
		c := costs.Output().Creator()
		upstream := c.MakeVector(costs.Output().Len())
		upstream.AddScalar(c.MakeNumeric(1 / float64(b.Size)))
		costs.Propagate(upstream, grad)
	})
	if err != nil {
		return err
	} else if grad == nil {
		return fmt.Errorf("numeric fault: loss is %v", loss)
	}
	s.Optimizer.Step(grad)
	s.lastLoss = loss
	s.lastEval = eval
	return nil
}

// EvalBatch runs a forward pass and returns the total
// evaluation cost of the batch.
func (s *Session) EvalBatch(b *batch.Batch) (total float64, err error) {
	if s.closed {
		return 0, errSessionClosed
	}
	if s.Head >= len(b.Outputs) {
		return 0, easycntk.ConfigErrorf("session evaluates head %d but batch has %d label sets",
			s.Head, len(b.Outputs))
	}
	err = easycntk.CatchPanic(func() {
		actual := s.Output.Apply(b.Inputs)
		costs := s.Eval.Cost(b.Outputs[s.Head], actual, b.Size)
		total = easycntk.Float64(anyvec.Sum(costs.Output()))
	})
	return
}

// LastLossAverage returns the average loss of the most
// recent successful batch.
func (s *Session) LastLossAverage() float64 {
	return s.lastLoss
}

// LastEvalAverage returns the average evaluation cost of
// the most recent successful batch.
func (s *Session) LastEvalAverage() float64 {
	return s.lastEval
}

// Close releases the session's hold on the model output.
// Further calls to TrainOnBatch or EvalBatch fail.
//
// The optimizer and its state are left to the caller.
func (s *Session) Close() {
	s.closed = true
	s.Output = nil
}

func average(costs anydiff.Res, n int) float64 {
	return easycntk.Float64(anyvec.Sum(costs.Output())) / float64(n)
}
