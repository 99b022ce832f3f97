package fit

import "math"

// A RateRule proposes the learning rates for the next
// epoch, given the epoch that just finished (starting at
// 1) and the current rate of every session.
//
// The returned slice must have one rate per session.
type RateRule func(epoch int, rates []float64) []float64

// StepDecay multiplies every rate by factor after every
// `every` epochs.
func StepDecay(every int, factor float64) RateRule {
	return func(epoch int, rates []float64) []float64 {
		if every <= 0 || epoch%every != 0 {
			return rates
		}
		return scaleRates(rates, factor)
	}
}

// ExponentialDecay multiplies every rate by gamma after
// each epoch.
func ExponentialDecay(gamma float64) RateRule {
	return func(epoch int, rates []float64) []float64 {
		return scaleRates(rates, gamma)
	}
}

// CosineAnnealing anneals each rate from its initial value
// down to minRate over period epochs, then restarts.
//
// The initial rates are captured the first time the rule
// runs.
func CosineAnnealing(period int, minRate float64) RateRule {
	var initial []float64
	return func(epoch int, rates []float64) []float64 {
		if initial == nil {
			initial = append([]float64{}, rates...)
		}
		if period <= 0 {
			return rates
		}
		phase := float64(epoch%period) / float64(period)
		res := make([]float64, len(rates))
		for i, r0 := range initial {
			res[i] = minRate + (r0-minRate)*(1+math.Cos(math.Pi*phase))/2
		}
		return res
	}
}

func scaleRates(rates []float64, factor float64) []float64 {
	res := make([]float64, len(rates))
	for i, r := range rates {
		res[i] = r * factor
	}
	return res
}
