package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepDecay(t *testing.T) {
	rule := StepDecay(3, 0.1)
	rates := []float64{1, 2}
	var history [][]float64
	for epoch := 1; epoch <= 6; epoch++ {
		rates = rule(epoch, rates)
		history = append(history, rates)
	}
	assert.Equal(t, []float64{1, 2}, history[1])
	assert.InDeltaSlice(t, []float64{0.1, 0.2}, history[2], 1e-12)
	assert.InDeltaSlice(t, []float64{0.01, 0.02}, history[5], 1e-12)
}

func TestExponentialDecay(t *testing.T) {
	rule := ExponentialDecay(0.5)
	assert.Equal(t, []float64{0.5, 2}, rule(1, []float64{1, 4}))
}

func TestCosineAnnealing(t *testing.T) {
	rule := CosineAnnealing(4, 0)
	rates := []float64{1}
	var seq []float64
	for epoch := 1; epoch <= 4; epoch++ {
		rates = rule(epoch, rates)
		seq = append(seq, rates[0])
	}
	expected := []float64{
		(1 + math.Cos(math.Pi/4)) / 2,
		0.5,
		(1 + math.Cos(3*math.Pi/4)) / 2,
		1,
	}
	assert.InDeltaSlice(t, expected, seq, 1e-12)
}

func TestLossBelow(t *testing.T) {
	stop := LossBelow(0.1)
	assert.False(t, stop(1, []float64{0.05, 0.2}, nil))
	assert.True(t, stop(2, []float64{0.05, 0.09}, nil))
	assert.False(t, stop(3, []float64{math.NaN()}, nil))
	assert.True(t, EvalBelow(1)(1, nil, []float64{0.5}))
}

func TestPlateau(t *testing.T) {
	stop := Plateau(2, 0.01)
	assert.False(t, stop(1, []float64{1}, nil))
	assert.False(t, stop(2, []float64{0.5}, nil))
	assert.False(t, stop(3, []float64{0.495}, nil))
	assert.True(t, stop(4, []float64{0.6}, nil))
}

func TestAny(t *testing.T) {
	var calls int
	counter := func(epoch int, losses, evals []float64) bool {
		calls++
		return false
	}
	stop := Any(LossBelow(1), counter)
	assert.True(t, stop(1, []float64{0.5}, nil))
	assert.False(t, stop(2, []float64{2}, nil))
	assert.Equal(t, 2, calls)
}

func TestChannel(t *testing.T) {
	ch := make(chan struct{})
	stop := Channel(ch)
	assert.False(t, stop(1, nil, nil))
	close(ch)
	assert.True(t, stop(2, nil, nil))
}
