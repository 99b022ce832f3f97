package sgd

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

const (
	adamDefaultDecayRate1 = 0.9
	adamDefaultDecayRate2 = 0.999
	adamDefaultDamping    = 1e-8
)

// Adam implements adaptive moment estimation, as
// described in https://arxiv.org/pdf/1412.6980.pdf.
type Adam struct {
	// Decay rates for the first and second moments.
	// If these are 0, the defaults from the paper are used.
	DecayRate1, DecayRate2 float64

	// Damping prevents divisions by zero.
	// If it is 0, a default is used.
	Damping float64

	firstMoment  anydiff.Grad
	secondMoment anydiff.Grad
	iteration    float64
}

// Transform transforms the gradient using Adam.
func (a *Adam) Transform(realGrad anydiff.Grad) anydiff.Grad {
	a.updateMoments(realGrad)

	a.iteration++
	decay1 := valueOrDefault(a.DecayRate1, adamDefaultDecayRate1)
	decay2 := valueOrDefault(a.DecayRate2, adamDefaultDecayRate2)
	scale := math.Sqrt(1-math.Pow(decay2, a.iteration)) / (1 - math.Pow(decay1, a.iteration))
	damping := valueOrDefault(a.Damping, adamDefaultDamping)
	for variable, vec := range realGrad {
		vec.Set(a.firstMoment[variable])
		vec.Scale(vec.Creator().MakeNumeric(scale))

		divisor := a.secondMoment[variable].Copy()
		divisor.AddScalar(divisor.Creator().MakeNumeric(damping))
		anyvec.Pow(divisor, divisor.Creator().MakeNumeric(0.5))
		vec.Div(divisor)
	}
	return realGrad
}

func (a *Adam) updateMoments(grad anydiff.Grad) {
	decay1 := valueOrDefault(a.DecayRate1, adamDefaultDecayRate1)
	decay2 := valueOrDefault(a.DecayRate2, adamDefaultDecayRate2)
	if a.firstMoment == nil {
		a.firstMoment = zeroGrad(grad)
		a.secondMoment = zeroGrad(grad)
	}
	for variable, vec := range grad {
		first := a.firstMoment[variable]
		first.Scale(first.Creator().MakeNumeric(decay1))
		v := vec.Copy()
		v.Scale(v.Creator().MakeNumeric(1 - decay1))
		first.Add(v)

		second := a.secondMoment[variable]
		second.Scale(second.Creator().MakeNumeric(decay2))
		sq := vec.Copy()
		anyvec.Pow(sq, sq.Creator().MakeNumeric(2))
		sq.Scale(sq.Creator().MakeNumeric(1 - decay2))
		second.Add(sq)
	}
}

func (a *Adam) reset() {
	a.firstMoment = nil
	a.secondMoment = nil
	a.iteration = 0
}

func (a *Adam) moments() []*anydiff.Grad {
	return []*anydiff.Grad{&a.firstMoment, &a.secondMoment}
}

func zeroGrad(g anydiff.Grad) anydiff.Grad {
	res := anydiff.Grad{}
	for v, x := range g {
		res[v] = x.Creator().MakeVector(x.Len())
	}
	return res
}

func (a *Adam) setSteps(n int) {
	a.iteration = float64(n)
}
