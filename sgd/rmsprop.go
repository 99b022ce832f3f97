package sgd

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

const (
	rmspropDefaultDecayRate = 0.9
	rmspropDefaultDamping   = 1e-8
)

// RMSProp divides each gradient component by a running
// root-mean-square of its recent values.
type RMSProp struct {
	// DecayRate is the decay rate of the running average.
	// If it is 0, a default of 0.9 is used.
	DecayRate float64

	// Damping prevents divisions by zero.
	// If it is 0, a default is used.
	Damping float64

	moment anydiff.Grad
}

// Transform transforms the gradient using RMSProp.
func (r *RMSProp) Transform(realGrad anydiff.Grad) anydiff.Grad {
	if r.moment == nil {
		r.moment = anydiff.Grad{}
		for v, grad := range realGrad {
			sq := grad.Copy()
			anyvec.Pow(sq, sq.Creator().MakeNumeric(2))
			r.moment[v] = sq
		}
	} else {
		keep := 1 - valueOrDefault(r.DecayRate, rmspropDefaultDecayRate)
		for v, grad := range realGrad {
			sq := grad.Copy()
			anyvec.Pow(sq, sq.Creator().MakeNumeric(2))
			sq.Sub(r.moment[v])
			sq.Scale(sq.Creator().MakeNumeric(keep))
			r.moment[v].Add(sq)
		}
	}
	damping := valueOrDefault(r.Damping, rmspropDefaultDamping)
	for v, grad := range realGrad {
		div := r.moment[v].Copy()
		div.AddScalar(div.Creator().MakeNumeric(damping))
		anyvec.Pow(div, div.Creator().MakeNumeric(-0.5))
		grad.Mul(div)
	}
	return realGrad
}

func (r *RMSProp) reset() {
	r.moment = nil
}

func (r *RMSProp) moments() []*anydiff.Grad {
	return []*anydiff.Grad{&r.moment}
}
