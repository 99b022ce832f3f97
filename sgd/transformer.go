package sgd

import "github.com/unixpickle/anydiff"

// A Transformer transforms gradients before a step.
//
// After its first call, a Transformer expects to see
// gradients for the same variables.
// A Transformer may modify its input and return it.
type Transformer interface {
	Transform(g anydiff.Grad) anydiff.Grad
}

// stateful is implemented by the built-in transformers so
// that their moments can be reset and checkpointed.
type stateful interface {
	reset()
	moments() []*anydiff.Grad
}

func copyGrad(g anydiff.Grad) anydiff.Grad {
	res := anydiff.Grad{}
	for v, x := range g {
		res[v] = x.Copy()
	}
	return res
}

func scaleGrad(g anydiff.Grad, s float64) {
	for _, v := range g {
		g.Scale(v.Creator().MakeNumeric(s))
		return
	}
}

func valueOrDefault(value, def float64) float64 {
	if value == 0 {
		return def
	}
	return value
}
