package easycntk

import (
	"github.com/unixpickle/anydiff"
	"gonum.org/v1/gonum/floats"
)

// A Cost measures the error of a network's output.
//
// Like a Layer, a Cost is batched.
// It takes a packed batch of desired outputs and actual
// outputs, and produces one cost per example.
type Cost interface {
	Cost(desired, actual anydiff.Res, n int) anydiff.Res
}

// DotCost computes the cost by taking the dot product of
// the desired and actual outputs, and then negating it.
//
// Combined with a LogSoftmax output, this is the
// cross-entropy loss.
type DotCost struct{}

// Cost computes the negated dot products.
func (d DotCost) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	comb := anydiff.Mul(desired, actual)
	dots := anydiff.SumCols(&anydiff.Matrix{
		Data: comb,
		Rows: n,
		Cols: comb.Output().Len() / n,
	})
	return anydiff.Scale(dots, dots.Output().Creator().MakeNumeric(-1))
}

// MSE is the mean squared error between the actual and
// desired output.
type MSE struct{}

// Cost computes, for each example, the mean squared
// distance between the actual and desired output.
func (m MSE) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	neg := anydiff.Scale(actual, actual.Output().Creator().MakeNumeric(-1))
	diff := anydiff.Add(desired, neg)
	sq := anydiff.Square(diff)
	numComps := sq.Output().Len() / n
	sum := anydiff.SumCols(&anydiff.Matrix{
		Data: sq,
		Rows: n,
		Cols: numComps,
	})
	normalizer := 1.0 / float64(numComps)
	return anydiff.Scale(sum, sum.Output().Creator().MakeNumeric(normalizer))
}

// SigmoidCE combines a sigmoid output activation with
// cross-entropy loss.
// The network itself should output raw logits.
type SigmoidCE struct {
	// Average indicates whether or not the cross-entropy
	// cost should be an average rather than a sum.
	Average bool
}

// Cost is mathematically equivalent to applying the
// sigmoid to each component of actual, then finding the
// cross-entropy loss.
func (s SigmoidCE) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	minusOne := actual.Output().Creator().MakeNumeric(-1)
	costProducts := anydiff.Pool(desired, func(desired anydiff.Res) anydiff.Res {
		return anydiff.Pool(actual, func(actual anydiff.Res) anydiff.Res {
			logRegular := anydiff.LogSigmoid(actual)
			logComplement := anydiff.LogSigmoid(anydiff.Scale(actual, minusOne))
			return anydiff.Add(
				anydiff.Mul(desired, logRegular),
				anydiff.Mul(anydiff.Complement(desired), logComplement),
			)
		})
	})
	res := anydiff.SumCols(&anydiff.Matrix{
		Data: costProducts,
		Rows: n,
		Cols: actual.Output().Len() / n,
	})
	d := -1.0
	if s.Average {
		d /= float64(actual.Output().Len() / n)
	}
	return anydiff.Scale(res, res.Output().Creator().MakeNumeric(d))
}

// L2Reg wraps a Cost and adds an L2 penalty of
// Penalty/2 times the sum of squared parameters.
type L2Reg struct {
	Penalty float64
	Params  []*anydiff.Var
	Wrapped Cost
}

// Cost computes the cost from l.Wrapped and adds the L2
// penalty to each component.
func (l *L2Reg) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	var sum anydiff.Res
	sum = anydiff.NewConst(actual.Output().Creator().MakeVector(1))
	for _, p := range l.Params {
		sum = anydiff.Add(sum, anydiff.Sum(anydiff.Square(p)))
	}
	sum = anydiff.Scale(sum, sum.Output().Creator().MakeNumeric(l.Penalty/2))
	return anydiff.AddRepeated(l.Wrapped.Cost(desired, actual, n), sum)
}

// ClassError is 1 for every example whose arg-max output
// differs from the arg-max of the desired output, and 0
// otherwise.
//
// It is meant as an evaluation function; it has no
// gradient.
type ClassError struct{}

// Cost computes the per-example classification error.
func (c ClassError) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	want := Float64s(desired.Output())
	got := Float64s(actual.Output())
	if len(want) != len(got) {
		panic(&ShapeError{What: "ClassError output", Expected: len(want), Actual: len(got)})
	}
	cols := len(got) / n
	errs := make([]float64, n)
	for i := range errs {
		w := want[i*cols : (i+1)*cols]
		g := got[i*cols : (i+1)*cols]
		if floats.MaxIdx(w) != floats.MaxIdx(g) {
			errs[i] = 1
		}
	}
	return anydiff.NewConst(MakeVector(actual.Output().Creator(), errs))
}

// ThresholdError is the fraction of output components
// which land on the wrong side of Threshold, compared to
// the desired 0/1 labels.
// A zero Threshold means 0.5.
//
// Like ClassError, it has no gradient.
type ThresholdError struct {
	Threshold float64
}

// Cost computes the per-example error fractions.
func (t ThresholdError) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	threshold := t.Threshold
	if threshold == 0 {
		threshold = 0.5
	}
	want := Float64s(desired.Output())
	got := Float64s(actual.Output())
	if len(want) != len(got) {
		panic(&ShapeError{What: "ThresholdError output", Expected: len(want), Actual: len(got)})
	}
	cols := len(got) / n
	errs := make([]float64, n)
	for i := range errs {
		var wrong int
		for j := i * cols; j < (i+1)*cols; j++ {
			if (want[j] > 0.5) != (got[j] > threshold) {
				wrong++
			}
		}
		errs[i] = float64(wrong) / float64(cols)
	}
	return anydiff.NewConst(MakeVector(actual.Output().Creator(), errs))
}
