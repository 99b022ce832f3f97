package sgd

import (
	"testing"

	"github.com/byteshadow/EasyCNTK"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

var testCreator = anyvec64.DefaultCreator{}

func newVar(data ...float64) *anydiff.Var {
	return anydiff.NewVar(easycntk.MakeVector(testCreator, data))
}

// quadraticGrad computes the gradient of sum((x-3)^2).
func quadraticGrad(v *anydiff.Var) anydiff.Grad {
	g := v.Vector.Copy()
	g.AddScalar(g.Creator().MakeNumeric(-3.0))
	g.Scale(g.Creator().MakeNumeric(2.0))
	return anydiff.Grad{v: g}
}

func TestNew(t *testing.T) {
	for _, method := range []string{"sgd", "Momentum", "RMSProp", "adam"} {
		o, err := New(method, 0.1, 0)
		require.NoError(t, err, method)
		assert.Equal(t, 0.1, o.LearningRate)
	}
	o, err := New("momentum", 0.1, 0)
	require.NoError(t, err)
	assert.Equal(t, MethodMomentum, o.Method())
	assert.Equal(t, defaultMomentum, o.Transformer.(*Momentum).Momentum)

	_, err = New("lbfgs", 0.1, 0)
	assert.ErrorIs(t, err, easycntk.ErrConfiguration)
	_, err = New("adam", 0, 0)
	assert.ErrorIs(t, err, easycntk.ErrConfiguration)
}

func TestInitBatchSize(t *testing.T) {
	o := &Optimizer{LearningRate: 0.01, PerSample: true}
	assert.Equal(t, 0.01, o.Rate())
	assert.True(t, o.InitBatchSize(32))
	assert.False(t, o.InitBatchSize(7))
	assert.Equal(t, 32, o.BatchSize)
	assert.InDelta(t, 0.32, o.Rate(), 1e-12)

	o.PerSample = false
	assert.Equal(t, 0.01, o.Rate())
}

func TestPlainStep(t *testing.T) {
	v := newVar(1, 2)
	o := &Optimizer{LearningRate: 0.1}
	o.Bind([]*anydiff.Var{v})
	o.Step(anydiff.Grad{v: easycntk.MakeVector(testCreator, []float64{0.5, -1})})
	assert.InDeltaSlice(t, []float64{0.95, 2.1}, easycntk.Float64s(v.Vector), 1e-12)
	assert.Equal(t, 1, o.Steps())

	o.SetLearningRate(1)
	o.Step(anydiff.Grad{v: easycntk.MakeVector(testCreator, []float64{1, 1})})
	assert.InDeltaSlice(t, []float64{-0.05, 1.1}, easycntk.Float64s(v.Vector), 1e-12)
}

func TestConvergence(t *testing.T) {
	optimizers := map[string]*Optimizer{
		"sgd":      {LearningRate: 0.1},
		"momentum": {LearningRate: 0.01, Transformer: &Momentum{Momentum: 0.9}},
		"rmsprop":  {LearningRate: 0.01, Transformer: &RMSProp{}},
		"adam":     {LearningRate: 0.05, Transformer: &Adam{}},
	}
	for name, o := range optimizers {
		v := newVar(0, 1, 5)
		o.Bind([]*anydiff.Var{v})
		for i := 0; i < 2000; i++ {
			o.Step(quadraticGrad(v))
		}
		assert.InDeltaSlice(t, []float64{3, 3, 3}, easycntk.Float64s(v.Vector), 0.1, name)
	}
}

func TestClone(t *testing.T) {
	v := newVar(1)
	o := &Optimizer{LearningRate: 0.3, PerSample: true, Transformer: &Adam{DecayRate1: 0.8}}
	o.Bind([]*anydiff.Var{v})
	o.Step(quadraticGrad(v))

	c := o.Clone()
	assert.Nil(t, c.Vars)
	assert.Equal(t, 0, c.Steps())
	assert.Equal(t, 0.8, c.Transformer.(*Adam).DecayRate1)
	assert.Nil(t, c.Transformer.(*Adam).firstMoment)
	assert.NotSame(t, o.Transformer, c.Transformer)
}

func TestMarshal(t *testing.T) {
	for _, tr := range []Transformer{nil, &Momentum{Momentum: 0.5}, &RMSProp{}, &Adam{}} {
		v1 := newVar(1, -2, 0.5)
		v2 := newVar(4)
		o := &Optimizer{LearningRate: 0.05, Transformer: tr}
		o.Bind([]*anydiff.Var{v1, v2})

		step := func() {
			g := quadraticGrad(v1)
			for k, x := range quadraticGrad(v2) {
				g[k] = x
			}
			o.Step(g)
		}

		data, err := o.MarshalBinary()
		require.NoError(t, err)
		step()
		step()
		data, err = o.MarshalBinary()
		require.NoError(t, err)
		saved := []anyvec.Vector{v1.Vector.Copy(), v2.Vector.Copy()}

		step()
		expected := [][]float64{easycntk.Float64s(v1.Vector), easycntk.Float64s(v2.Vector)}

		o.SetLearningRate(1)
		step()

		require.NoError(t, o.UnmarshalBinary(data))
		assert.Equal(t, 2, o.Steps())
		assert.Equal(t, 0.05, o.LearningRate)
		v1.Vector.Set(saved[0])
		v2.Vector.Set(saved[1])
		step()
		actual := [][]float64{easycntk.Float64s(v1.Vector), easycntk.Float64s(v2.Vector)}
		assert.Equal(t, expected, actual, o.Method())
	}
}

func TestMarshalUnbound(t *testing.T) {
	_, err := (&Optimizer{LearningRate: 1}).MarshalBinary()
	assert.Error(t, err)
	assert.Error(t, (&Optimizer{LearningRate: 1}).UnmarshalBinary(nil))
}

func TestReset(t *testing.T) {
	v := newVar(1)
	o := &Optimizer{LearningRate: 0.1, Transformer: &RMSProp{}}
	o.Bind([]*anydiff.Var{v})
	o.Step(quadraticGrad(v))
	assert.NotNil(t, o.Transformer.(*RMSProp).moment)
	o.Reset()
	assert.Nil(t, o.Transformer.(*RMSProp).moment)
	assert.Equal(t, 0, o.Steps())
}

func TestBindKeepsState(t *testing.T) {
	v1 := newVar(1)
	v2 := newVar(2)
	o := &Optimizer{LearningRate: 0.1, Transformer: &Adam{}}
	o.Bind([]*anydiff.Var{v1, v2})
	g := quadraticGrad(v1)
	g[v2] = quadraticGrad(v2)[v2]
	o.Step(g)
	o.Step(g)

	o.Bind([]*anydiff.Var{v1, v2})
	assert.Equal(t, 2, o.Steps())
	assert.NotNil(t, o.Transformer.(*Adam).firstMoment)

	o.Bind([]*anydiff.Var{v2, v1})
	assert.Equal(t, 0, o.Steps())
	assert.Nil(t, o.Transformer.(*Adam).firstMoment)
}
