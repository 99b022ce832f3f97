package easycntk

import (
	"fmt"

	"github.com/unixpickle/anyvec"
)

// Float64s copies the contents of a float32 or float64
// vector into a []float64.
// It panics for other numeric types.
func Float64s(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res
	case []float64:
		return append([]float64{}, data...)
	default:
		panic(fmt.Sprintf("unsupported numeric type: %T", data))
	}
}

// Float64 converts a float32 or float64 Numeric to a
// float64.
// It panics for other numeric types.
func Float64(n anyvec.Numeric) float64 {
	switch n := n.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		panic(fmt.Sprintf("unsupported numeric type: %T", n))
	}
}

// MakeVector creates a vector from float64 data.
func MakeVector(c anyvec.Creator, data []float64) anyvec.Vector {
	return c.MakeVectorData(c.MakeNumericList(data))
}
