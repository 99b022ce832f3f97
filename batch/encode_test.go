package batch

import (
	"testing"

	"github.com/byteshadow/EasyCNTK"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/anyvec/anyvec64"
)

var testCreator = anyvec64.DefaultCreator{}

func TestEncodeFlat(t *testing.T) {
	rows := [][]float64{
		{1, 2, 10},
		{3, 4, 11},
		{5, 6, 12},
		{7, 8, 13},
		{9, 10, 14},
	}
	s, err := EncodeFlat(testCreator, rows, 2, 2)
	require.NoError(t, err)
	batches := Collect(s)
	require.Len(t, batches, 3)

	assert.Equal(t, []int{2, 2, 1}, []int{batches[0].Size, batches[1].Size, batches[2].Size})
	assert.Equal(t, 5, batches.NumExamples())

	first := batches[0].Inputs.(*easycntk.Packed)
	assert.Equal(t, []int{2}, first.Shape)
	assert.Equal(t, []float64{1, 2, 3, 4}, easycntk.Float64s(first.Vector.Output()))
	require.Len(t, batches[0].Outputs, 1)
	assert.Equal(t, []float64{10, 11}, easycntk.Float64s(batches[0].Outputs[0].Output()))

	last := batches[2].Inputs.(*easycntk.Packed)
	assert.Equal(t, []float64{9, 10}, easycntk.Float64s(last.Vector.Output()))
	assert.Equal(t, []float64{14}, easycntk.Float64s(batches[2].Outputs[0].Output()))
}

func TestEncodeFlatUnlabeled(t *testing.T) {
	s, err := EncodeFlat(testCreator, [][]float64{{1, 2}, {3, 4}}, 2, 5)
	require.NoError(t, err)
	batches := Collect(s)
	require.Len(t, batches, 1)
	assert.Nil(t, batches[0].Outputs)
	assert.Equal(t, 0, batches[0].Heads())
}

func TestEncodeFlatBadRow(t *testing.T) {
	_, err := EncodeFlat(testCreator, [][]float64{{1, 2, 3}, {1}}, 2, 5)
	assert.ErrorIs(t, err, easycntk.ErrShape)

	_, err = EncodeFlat(testCreator, [][]float64{{1, 2, 3}, {1, 2, 3, 4}}, 2, 5)
	assert.ErrorIs(t, err, easycntk.ErrShape)
}

func TestSplitFlat(t *testing.T) {
	ds, err := SplitFlat([][]float64{{1, 2, 3}, {4, 5, 6}}, 2)
	require.NoError(t, err)
	require.True(t, ds.Labeled())
	assert.Equal(t, FlatExample{4, 5}, ds.Features[1])
	assert.Equal(t, SingleLabel{6}, ds.Labels[1])
	layout, err := ds.Validate()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, layout.Shape)
	assert.Equal(t, []int{1}, layout.HeadSizes)

	ds, err = SplitFlat([][]float64{{1, 2}, {3, 4}}, 2)
	require.NoError(t, err)
	assert.False(t, ds.Labeled())

	_, err = SplitFlat([][]float64{{1}}, 2)
	assert.ErrorIs(t, err, easycntk.ErrShape)
	_, err = SplitFlat([][]float64{{1, 2}, {3, 4, 5}}, 2)
	assert.ErrorIs(t, err, easycntk.ErrShape)
	_, err = SplitFlat(nil, 0)
	assert.ErrorIs(t, err, easycntk.ErrConfiguration)
}

func TestEncodeBatchInvariant(t *testing.T) {
	ds := &Dataset{}
	for i := 0; i < 7; i++ {
		x := float64(i)
		ds.Features = append(ds.Features, FlatExample{x, x, x})
		ds.Labels = append(ds.Labels, MultiLabel{{x}, {x, -x}})
	}
	s, err := Encode(testCreator, ds, 3)
	require.NoError(t, err)
	for {
		b, ok := s.Next()
		if !ok {
			break
		}
		packed := b.Inputs.(*easycntk.Packed)
		assert.Equal(t, b.Size, packed.Len())
		assert.Equal(t, b.Size*3, packed.Vector.Output().Len())
		require.Len(t, b.Outputs, 2)
		assert.Equal(t, b.Size, b.Outputs[0].Output().Len())
		assert.Equal(t, b.Size*2, b.Outputs[1].Output().Len())
	}
}

func TestEncodeLengthMismatch(t *testing.T) {
	_, err := EncodeSequence(testCreator, [][][]float64{{{1}}, {{2}}}, [][]float64{{1}}, 1)
	require.Error(t, err)
	var lm *easycntk.LengthMismatchError
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 2, lm.Features)
	assert.Equal(t, 1, lm.Labels)
	assert.ErrorIs(t, err, easycntk.ErrConfiguration)
}

func TestEncodeEmpty(t *testing.T) {
	s, err := EncodeMatrix(testCreator, nil, nil, 4)
	require.NoError(t, err)
	_, ok := s.Next()
	assert.False(t, ok)
}

func TestEncodeBadBatchSize(t *testing.T) {
	_, err := EncodeInputs(testCreator, []Example{FlatExample{1}}, 0)
	assert.ErrorIs(t, err, easycntk.ErrConfiguration)
}

func TestEncodeMixedKinds(t *testing.T) {
	_, err := EncodeInputs(testCreator, []Example{FlatExample{1}, SequenceExample{{1}}}, 2)
	assert.ErrorIs(t, err, easycntk.ErrConfiguration)
}

func TestEncodeMatrix(t *testing.T) {
	features := [][][]float64{
		{{1, 2, 3}, {4, 5, 6}},
		{{7, 8, 9}, {10, 11, 12}},
	}
	s, err := EncodeMatrix(testCreator, features, [][]float64{{0}, {1}}, 2)
	require.NoError(t, err)
	b, ok := s.Next()
	require.True(t, ok)
	packed := b.Inputs.(*easycntk.Packed)
	assert.Equal(t, []int{2, 3, 1}, packed.Shape)
	assert.Equal(t, 6, packed.ExampleSize())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		easycntk.Float64s(packed.Vector.Output()))

	_, err = EncodeMatrix(testCreator, [][][]float64{{{1, 2}, {3}}}, [][]float64{{0}}, 1)
	assert.ErrorIs(t, err, easycntk.ErrShape)

	_, err = EncodeMatrix(testCreator, [][][]float64{{{1, 2}}, {{1, 2}, {3, 4}}},
		[][]float64{{0}, {1}}, 1)
	assert.ErrorIs(t, err, easycntk.ErrShape)
}

func TestEncodeSequence(t *testing.T) {
	features := [][][]float64{
		{{1, 2}, {3, 4}, {5, 6}},
		{{7, 8}},
		{{9, 10}, {11, 12}},
	}
	labels := [][]float64{{1}, {2}, {3}}
	s, err := EncodeSequence(testCreator, features, labels, 2)
	require.NoError(t, err)
	batches := Collect(s)
	require.Len(t, batches, 2)

	seqs := batches[0].Inputs.(*easycntk.Sequences)
	assert.Equal(t, 2, seqs.Len())
	assert.Equal(t, 2, seqs.Dim)
	steps := seqs.Seq.Output()
	require.Len(t, steps, 3)
	assert.Equal(t, 2, steps[0].NumPresent())
	assert.Equal(t, 1, steps[1].NumPresent())
	assert.Equal(t, []float64{1, 2, 7, 8}, easycntk.Float64s(steps[0].Packed))
	assert.Equal(t, []float64{1, 2}, easycntk.Float64s(batches[0].Outputs[0].Output()))

	_, err = EncodeSequence(testCreator, [][][]float64{{{1, 2}, {3}}}, [][]float64{{1}}, 1)
	assert.ErrorIs(t, err, easycntk.ErrShape)
}

func TestEncodeMultiHead(t *testing.T) {
	features := []Example{FlatExample{1}, FlatExample{2}, FlatExample{3}}
	labels := [][][]float64{
		{{1, 0}, {5}},
		{{0, 1}, {6}},
		{{1, 0}, {7}},
	}
	s, err := EncodeMultiHead(testCreator, features, labels, 2)
	require.NoError(t, err)
	batches := Collect(s)
	require.Len(t, batches, 2)
	require.Equal(t, 2, batches[0].Heads())
	assert.Equal(t, []float64{1, 0, 0, 1}, easycntk.Float64s(batches[0].Outputs[0].Output()))
	assert.Equal(t, []float64{5, 6}, easycntk.Float64s(batches[0].Outputs[1].Output()))
	assert.Equal(t, []float64{7}, easycntk.Float64s(batches[1].Outputs[1].Output()))

	labels[2] = [][]float64{{1, 0}}
	_, err = EncodeMultiHead(testCreator, features, labels, 2)
	assert.ErrorIs(t, err, easycntk.ErrConfiguration)

	labels[2] = [][]float64{{1, 0}, {1, 2}}
	_, err = EncodeMultiHead(testCreator, features, labels, 2)
	assert.ErrorIs(t, err, easycntk.ErrShape)
}
