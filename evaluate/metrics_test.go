package evaluate

import (
	"errors"
	"math"
	"testing"

	"github.com/byteshadow/EasyCNTK"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(t *testing.T, expected, evaluated [][]float64) Source {
	var res []Item
	for i := range expected {
		item, err := NewItem(expected[i], evaluated[i])
		require.NoError(t, err)
		res = append(res, item)
	}
	return SliceSource(res)
}

func TestNewItem(t *testing.T) {
	_, err := NewItem([]float64{1, 2}, []float64{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, easycntk.ErrShape)
	var shapeErr *easycntk.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 2, shapeErr.Expected)
	assert.Equal(t, 1, shapeErr.Actual)

	item, err := NewItem([]float64{1}, []float64{0.5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, item.Evaluated)
}

func TestEmptyInput(t *testing.T) {
	empty := SliceSource(nil)
	_, err := Regression(empty)
	assert.ErrorIs(t, err, easycntk.ErrEmptyInput)
	_, err = Binary(empty, 0)
	assert.ErrorIs(t, err, easycntk.ErrEmptyInput)
	_, err = MultiClass(empty)
	assert.ErrorIs(t, err, easycntk.ErrEmptyInput)
	_, err = MultiLabel(empty, 0.5)
	assert.ErrorIs(t, err, easycntk.ErrEmptyInput)
}

func TestRegression(t *testing.T) {
	src := items(t,
		[][]float64{{1, 5, 5}, {2, 5, 5}, {3, 5, 5}, {4, 5, 5}},
		[][]float64{{1, 5, 5}, {2, 5, 5}, {3, 5, 5}, {6, 5, 7}},
	)
	m, err := Regression(src)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Count)
	require.Len(t, m.Features, 3)

	assert.InDelta(t, 0.5, m.Features[0].MAE, 1e-12)
	assert.InDelta(t, 1, m.Features[0].RMSE, 1e-12)
	assert.InDelta(t, 0.2, m.Features[0].R2, 1e-12)

	assert.Equal(t, FeatureStatistic{MAE: 0, RMSE: 0, R2: 1}, m.Features[1])

	assert.InDelta(t, 0.5, m.Features[2].MAE, 1e-12)
	assert.InDelta(t, 1, m.Features[2].RMSE, 1e-12)
	assert.Equal(t, 0.0, m.Features[2].R2)
}

func TestRegressionShape(t *testing.T) {
	src := SliceSource([]Item{
		{Expected: []float64{1}, Evaluated: []float64{1}},
		{Expected: []float64{1, 2}, Evaluated: []float64{1, 2}},
	})
	_, err := Regression(src)
	assert.ErrorIs(t, err, easycntk.ErrShape)

	_, err = Regression(SliceSource([]Item{{Expected: []float64{1}, Evaluated: nil}}))
	assert.ErrorIs(t, err, easycntk.ErrShape)
}

func TestBinary(t *testing.T) {
	src := items(t,
		[][]float64{{1}, {1}, {0}, {0}},
		[][]float64{{1}, {0}, {0}, {1}},
	)
	m, err := Binary(src, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TP)
	assert.Equal(t, 1, m.TN)
	assert.Equal(t, 1, m.FP)
	assert.Equal(t, 1, m.FN)
	assert.Equal(t, 0.5, m.Accuracy)
	assert.Equal(t, 0.5, m.Precision)
	assert.Equal(t, 0.5, m.Recall)
	assert.Equal(t, 0.5, m.F1)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, 0.25, m.Confusion.At(i, j))
		}
	}
}

func TestBinaryThreshold(t *testing.T) {
	src := items(t,
		[][]float64{{1}, {1}, {0}},
		[][]float64{{0.8}, {0.6}, {0.3}},
	)
	m, err := Binary(src, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Accuracy)

	m, err = Binary(src, 0.7)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TP)
	assert.Equal(t, 1, m.FN)
	assert.Equal(t, 1.0, m.Precision)
	assert.Equal(t, 0.5, m.Recall)
	assert.InDelta(t, 2.0/3, m.F1, 1e-12)

	_, err = Binary(src, 1.5)
	assert.ErrorIs(t, err, easycntk.ErrConfiguration)

	_, err = Binary(items(t, [][]float64{{1, 0}}, [][]float64{{1, 0}}), 0.5)
	assert.ErrorIs(t, err, easycntk.ErrShape)
}

func TestBinaryNoPositives(t *testing.T) {
	m, err := Binary(items(t, [][]float64{{0}}, [][]float64{{0}}), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Precision)
	assert.Equal(t, 0.0, m.Recall)
	assert.Equal(t, 0.0, m.F1)
	assert.Equal(t, 1.0, m.Accuracy)
}

func TestMultiClass(t *testing.T) {
	src := items(t,
		[][]float64{{1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[][]float64{{0.7, 0.2, 0.1}, {0.3, 0.6, 0.1}, {0.1, 0.8, 0.1}, {0.2, 0.1, 0.7}},
	)
	m, err := MultiClass(src)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Count)
	assert.Equal(t, 0.75, m.Accuracy)
	require.Len(t, m.Classes, 3)

	assert.Equal(t, 1.0, m.Classes[0].Precision)
	assert.Equal(t, 0.5, m.Classes[0].Recall)
	assert.InDelta(t, 2.0/3, m.Classes[0].F1, 1e-12)
	assert.Equal(t, 0.5, m.Classes[0].Fraction)

	assert.Equal(t, 0.5, m.Classes[1].Precision)
	assert.Equal(t, 1.0, m.Classes[1].Recall)
	assert.Equal(t, 0.25, m.Classes[1].Fraction)

	assert.Equal(t, ClassItem{Precision: 1, Recall: 1, F1: 1, Fraction: 0.25}, m.Classes[2])

	assert.Equal(t, 0.25, m.Confusion.At(0, 0))
	assert.Equal(t, 0.25, m.Confusion.At(0, 1))
	assert.Equal(t, 0.0, m.Confusion.At(1, 0))
}

func TestMultiLabel(t *testing.T) {
	src := items(t,
		[][]float64{{1, 0, 1}, {0, 1, 0}},
		[][]float64{{0.9, 0.2, 0.4}, {0.6, 0.7, 0.1}},
	)
	m, err := MultiLabel(src, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count)
	assert.InDelta(t, 4.0/6, m.Accuracy, 1e-12)
	require.Len(t, m.Classes, 3)

	assert.Equal(t, 0.5, m.Classes[0].Precision)
	assert.Equal(t, 1.0, m.Classes[0].Recall)
	assert.Equal(t, ClassItem{Precision: 1, Recall: 1, F1: 1, Fraction: 1.0 / 3}, m.Classes[1])
	assert.Equal(t, 0.0, m.Classes[2].F1)
	for _, c := range m.Classes {
		assert.InDelta(t, 1.0/3, c.Fraction, 1e-12)
	}

	for _, bad := range []float64{0, 1, -0.2, math.NaN()} {
		_, err := MultiLabel(src, bad)
		assert.ErrorIs(t, err, easycntk.ErrConfiguration, "%v", bad)
	}
}

type failingIterator struct{}

func (failingIterator) Next() (Item, bool) { return Item{}, false }
func (failingIterator) Err() error         { return errors.New("read failed") }

func TestIteratorError(t *testing.T) {
	src := func() Iterator { return failingIterator{} }
	_, err := MultiClass(src)
	assert.EqualError(t, err, "read failed")
}
