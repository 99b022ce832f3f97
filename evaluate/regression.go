package evaluate

import (
	"fmt"
	"math"

	"github.com/byteshadow/EasyCNTK"
	"gonum.org/v1/gonum/floats"
)

// A FeatureStatistic holds regression metrics for one
// output dimension.
type FeatureStatistic struct {
	MAE  float64
	RMSE float64

	// R2 is the coefficient of determination.
	// If the expected values of the dimension are constant,
	// R2 is 1 for a perfect fit and 0 otherwise.
	R2 float64
}

// RegressionMetrics summarizes a regression model.
type RegressionMetrics struct {
	Count    int
	Features []FeatureStatistic
}

// Regression computes per-dimension MAE, RMSE and R2.
//
// It makes two passes over the source: the first sums
// the errors and the expected values, the second sums
// the squared deviations of the expected values from
// their mean.
func Regression(src Source) (*RegressionMetrics, error) {
	var absErr, sqErr, sumExpected, diff []float64
	var count int
	err := forEach(src(), func(item Item) error {
		if count == 0 {
			dim := len(item.Expected)
			absErr = make([]float64, dim)
			sqErr = make([]float64, dim)
			sumExpected = make([]float64, dim)
			diff = make([]float64, dim)
		} else if err := checkDim(item, len(diff)); err != nil {
			return err
		}
		floats.SubTo(diff, item.Evaluated, item.Expected)
		for i, d := range diff {
			absErr[i] += math.Abs(d)
			sqErr[i] += d * d
		}
		floats.Add(sumExpected, item.Expected)
		count++
		return nil
	})
	if err != nil {
		return nil, err
	} else if count == 0 {
		return nil, easycntk.ErrEmptyInput
	}

	mean := make([]float64, len(sumExpected))
	floats.ScaleTo(mean, 1/float64(count), sumExpected)
	ssTot := make([]float64, len(mean))
	var secondCount int
	err = forEach(src(), func(item Item) error {
		if err := checkDim(item, len(mean)); err != nil {
			return err
		}
		floats.SubTo(diff, item.Expected, mean)
		floats.Mul(diff, diff)
		floats.Add(ssTot, diff)
		secondCount++
		return nil
	})
	if err != nil {
		return nil, err
	} else if secondCount != count {
		return nil, fmt.Errorf("regression: source yielded %d items on the second pass "+
			"but %d on the first", secondCount, count)
	}

	res := &RegressionMetrics{Count: count, Features: make([]FeatureStatistic, len(mean))}
	n := float64(count)
	for i := range res.Features {
		stat := &res.Features[i]
		stat.MAE = absErr[i] / n
		stat.RMSE = math.Sqrt(sqErr[i] / n)
		if ssTot[i] == 0 {
			if sqErr[i] == 0 {
				stat.R2 = 1
			}
		} else {
			stat.R2 = 1 - sqErr[i]/ssTot[i]
		}
	}
	return res, nil
}

func forEach(it Iterator, f func(Item) error) error {
	for {
		item, ok := it.Next()
		if !ok {
			return it.Err()
		}
		if len(item.Expected) != len(item.Evaluated) {
			return &easycntk.ShapeError{
				What:     "evaluated output",
				Expected: len(item.Expected),
				Actual:   len(item.Evaluated),
			}
		}
		if err := f(item); err != nil {
			return err
		}
	}
}

func checkDim(item Item, dim int) error {
	if len(item.Expected) != dim {
		return &easycntk.ShapeError{
			What:     "expected output",
			Expected: dim,
			Actual:   len(item.Expected),
		}
	}
	return nil
}
