package evaluate

import (
	"testing"

	"github.com/byteshadow/EasyCNTK"
	"github.com/byteshadow/EasyCNTK/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/anyvec/anyvec64"
)

var testCreator = anyvec64.DefaultCreator{}

// linearModel computes y = x0 + 2*x1 + 0.5.
func linearModel() *easycntk.FeedForward {
	fc := easycntk.NewDenseZero(testCreator, 2, 1)
	fc.Weights.Vector.Set(easycntk.MakeVector(testCreator, []float64{1, 2}))
	fc.AddBias(testCreator.MakeNumeric(0.5))
	return &easycntk.FeedForward{Net: easycntk.Net{fc}}
}

func linearBatches(t *testing.T) batch.List {
	s, err := batch.EncodeFlat(testCreator, [][]float64{
		{1, 0, 1.5},
		{0, 1, 2.5},
		{1, 1, 0},
	}, 2, 2)
	require.NoError(t, err)
	return batch.Collect(s)
}

func TestEvaluate(t *testing.T) {
	e := Evaluate(linearModel(), linearBatches(t).Stream())
	var got []Item
	for e.Next() {
		require.Len(t, e.Items(), 1)
		got = append(got, e.Item())
	}
	require.NoError(t, e.Err())
	require.Len(t, got, 3)
	assert.Equal(t, []float64{1.5}, got[0].Expected)
	assert.InDeltaSlice(t, []float64{1.5}, got[0].Evaluated, 1e-12)
	assert.InDeltaSlice(t, []float64{2.5}, got[1].Evaluated, 1e-12)
	assert.Equal(t, []float64{0}, got[2].Expected)
	assert.InDeltaSlice(t, []float64{3.5}, got[2].Evaluated, 1e-12)
}

func TestEvaluateUnlabeled(t *testing.T) {
	s, err := batch.EncodeInputs(testCreator, []batch.Example{batch.FlatExample{1, 2}}, 1)
	require.NoError(t, err)
	e := Evaluate(linearModel(), s)
	assert.False(t, e.Next())
	assert.ErrorIs(t, e.Err(), easycntk.ErrConfiguration)
}

func TestEvaluateBackendFault(t *testing.T) {
	s, err := batch.EncodeFlat(testCreator, [][]float64{{1, 2, 3, 4}}, 3, 1)
	require.NoError(t, err)
	e := Evaluate(linearModel(), s)
	assert.False(t, e.Next())
	assert.ErrorIs(t, e.Err(), easycntk.ErrShape)
}

func TestPredict(t *testing.T) {
	features := []batch.Example{
		batch.FlatExample{0, 0},
		batch.FlatExample{2, 1},
		batch.FlatExample{-1, 0},
	}
	s, err := batch.EncodeInputs(testCreator, features, 2)
	require.NoError(t, err)
	p := Predict(linearModel(), s)
	var got []float64
	for p.Next() {
		require.Len(t, p.Values(), 1)
		got = append(got, p.Value()...)
	}
	require.NoError(t, p.Err())
	assert.InDeltaSlice(t, []float64{0.5, 4.5, -0.5}, got, 1e-12)
}

func TestEvaluateMultiHead(t *testing.T) {
	identity := func() easycntk.Net {
		return easycntk.Net{easycntk.NewAffine(testCreator, 1)}
	}
	model := &easycntk.MultiHead{
		Trunk: identity(),
		Heads: []easycntk.Net{identity(), {easycntk.NewAffine(testCreator, 1), easycntk.Tanh}},
	}
	features := []batch.Example{batch.FlatExample{0}, batch.FlatExample{1}}
	labels := [][][]float64{{{0}, {0}}, {{1}, {1}}}
	s, err := batch.EncodeMultiHead(testCreator, features, labels, 2)
	require.NoError(t, err)

	e := Evaluate(model, s)
	var count int
	for e.Next() {
		items := e.Items()
		require.Len(t, items, 2)
		assert.InDeltaSlice(t, items[0].Expected, items[0].Evaluated, 1e-12)
		count++
	}
	require.NoError(t, e.Err())
	assert.Equal(t, 2, count)
}

func TestModelSource(t *testing.T) {
	src := ModelSource(linearModel(), linearBatches(t), 0)
	m, err := Regression(src)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Count)
	assert.InDelta(t, 3.5/3, m.Features[0].MAE, 1e-9)

	_, err = Regression(ModelSource(linearModel(), linearBatches(t), 1))
	assert.ErrorIs(t, err, easycntk.ErrConfiguration)
}
