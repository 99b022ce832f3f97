// Package sgd implements the optimizers used to update
// model parameters from gradients.
//
// An Optimizer combines a learning rate with an optional
// gradient Transformer (momentum, RMSProp or Adam).
// Learning rates can be expressed per mini-batch or per
// sample; in the latter case the step is scaled by the
// optimizer's batch size, which is typically initialized
// from the first batch the optimizer sees.
package sgd

import (
	"strings"

	"github.com/byteshadow/EasyCNTK"
	"github.com/unixpickle/anydiff"
)

// Method names accepted by New.
const (
	MethodSGD      = "sgd"
	MethodMomentum = "momentum"
	MethodRMSProp  = "rmsprop"
	MethodAdam     = "adam"
)

const defaultMomentum = 0.9

// An Optimizer applies gradient steps to a set of
// variables.
//
// An Optimizer is not thread-safe.
type Optimizer struct {
	// Transformer, if non-nil, transforms each gradient
	// before the step.
	Transformer Transformer

	// LearningRate is the step size.
	LearningRate float64

	// PerSample indicates that LearningRate is expressed
	// per example rather than per mini-batch.
	// The effective step size is then
	// LearningRate*BatchSize.
	PerSample bool

	// BatchSize is the mini-batch size the rate is
	// expressed against.
	// If it is 0, InitBatchSize sets it.
	BatchSize int

	// Vars lists the variables the optimizer is bound to.
	// The order is used for checkpoints.
	Vars []*anydiff.Var

	steps int
}

// New creates an unbound optimizer for a named method.
//
// The momentum argument is only used by the momentum
// method; if it is 0, a default is used.
func New(method string, rate, momentum float64) (*Optimizer, error) {
	o := &Optimizer{LearningRate: rate}
	switch strings.ToLower(method) {
	case MethodSGD, "":
	case MethodMomentum:
		if momentum == 0 {
			momentum = defaultMomentum
		}
		o.Transformer = &Momentum{Momentum: momentum}
	case MethodRMSProp:
		o.Transformer = &RMSProp{}
	case MethodAdam:
		o.Transformer = &Adam{}
	default:
		return nil, easycntk.ConfigErrorf("unknown optimizer: %s", method)
	}
	if rate <= 0 {
		return nil, easycntk.ConfigErrorf("learning rate must be positive (got %g)", rate)
	}
	return o, nil
}

// Method returns the name of the optimizer's method.
func (o *Optimizer) Method() string {
	switch o.Transformer.(type) {
	case nil:
		return MethodSGD
	case *Momentum:
		return MethodMomentum
	case *RMSProp:
		return MethodRMSProp
	case *Adam:
		return MethodAdam
	default:
		return "custom"
	}
}

// Bind sets the variables the optimizer updates.
//
// Rebinding to the same variables in the same order keeps
// the step count and transformer state, so training can
// resume with a new session or after UnmarshalBinary.
// Binding to different variables clears the state.
func (o *Optimizer) Bind(vars []*anydiff.Var) {
	if sameVars(o.Vars, vars) {
		return
	}
	o.Vars = vars
	o.Reset()
}

// InitBatchSize sets BatchSize to n if it is unset.
// It reports whether BatchSize was changed.
func (o *Optimizer) InitBatchSize(n int) bool {
	if o.BatchSize != 0 {
		return false
	}
	o.BatchSize = n
	return true
}

// SetLearningRate replaces the learning rate.
// Accumulated transformer state is kept.
func (o *Optimizer) SetLearningRate(rate float64) {
	o.LearningRate = rate
}

// Rate returns the effective step size for one
// mini-batch.
func (o *Optimizer) Rate() float64 {
	if o.PerSample && o.BatchSize > 0 {
		return o.LearningRate * float64(o.BatchSize)
	}
	return o.LearningRate
}

// Steps returns the number of steps taken since the last
// Reset.
func (o *Optimizer) Steps() int {
	return o.steps
}

// Step transforms the gradient and adds it, scaled by the
// negative effective rate, to the variables.
//
// The gradient may be modified.
func (o *Optimizer) Step(g anydiff.Grad) {
	if o.Transformer != nil {
		g = o.Transformer.Transform(g)
	}
	scaleGrad(g, -o.Rate())
	g.AddToVars()
	o.steps++
}

// Reset clears the step count and transformer state.
func (o *Optimizer) Reset() {
	o.steps = 0
	if s, ok := o.Transformer.(stateful); ok {
		s.reset()
	}
}

// Clone creates an unbound copy of the optimizer's
// settings without any accumulated state.
func (o *Optimizer) Clone() *Optimizer {
	res := &Optimizer{
		LearningRate: o.LearningRate,
		PerSample:    o.PerSample,
		BatchSize:    o.BatchSize,
	}
	switch t := o.Transformer.(type) {
	case *Momentum:
		res.Transformer = &Momentum{Momentum: t.Momentum}
	case *RMSProp:
		res.Transformer = &RMSProp{DecayRate: t.DecayRate, Damping: t.Damping}
	case *Adam:
		res.Transformer = &Adam{DecayRate1: t.DecayRate1, DecayRate2: t.DecayRate2,
			Damping: t.Damping}
	default:
		res.Transformer = t
	}
	return res
}

func sameVars(v1, v2 []*anydiff.Var) bool {
	if v1 == nil || len(v1) != len(v2) {
		return false
	}
	for i, v := range v1 {
		if v != v2[i] {
			return false
		}
	}
	return true
}
