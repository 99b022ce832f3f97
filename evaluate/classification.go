package evaluate

import (
	"github.com/byteshadow/EasyCNTK"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultThreshold is the probability threshold used when
// a zero threshold is given.
const DefaultThreshold = 0.5

// BinaryMetrics summarizes a binary classifier.
type BinaryMetrics struct {
	Count int

	TP, TN, FP, FN int

	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64

	// Confusion is a 2x2 matrix indexed [expected][predicted],
	// with class 0 negative and class 1 positive.
	// Cells are fractions of Count.
	Confusion *mat.Dense
}

// Binary computes binary classification metrics from
// single-component items.
//
// An output is positive if it exceeds threshold, and an
// expected value is positive if it exceeds 0.5.
// A zero threshold means DefaultThreshold.
func Binary(src Source, threshold float64) (*BinaryMetrics, error) {
	threshold, err := checkThreshold(threshold)
	if err != nil {
		return nil, err
	}
	counts := mat.NewDense(2, 2, nil)
	var count int
	err = forEach(src(), func(item Item) error {
		if err := checkDim(item, 1); err != nil {
			return err
		}
		expected := classIndex(item.Expected[0] > 0.5)
		predicted := classIndex(item.Evaluated[0] > threshold)
		counts.Set(expected, predicted, counts.At(expected, predicted)+1)
		count++
		return nil
	})
	if err != nil {
		return nil, err
	} else if count == 0 {
		return nil, easycntk.ErrEmptyInput
	}

	res := &BinaryMetrics{
		Count: count,
		TP:    int(counts.At(1, 1)),
		TN:    int(counts.At(0, 0)),
		FP:    int(counts.At(0, 1)),
		FN:    int(counts.At(1, 0)),
	}
	res.Accuracy = float64(res.TP+res.TN) / float64(count)
	res.Precision = ratio(res.TP, res.TP+res.FP)
	res.Recall = ratio(res.TP, res.TP+res.FN)
	res.F1 = f1(res.Precision, res.Recall)
	counts.Scale(1/float64(count), counts)
	res.Confusion = counts
	return res, nil
}

// A ClassItem holds per-class classification metrics.
type ClassItem struct {
	Precision float64
	Recall    float64
	F1        float64

	// Fraction is the share of the data which belongs to
	// the class.
	Fraction float64
}

// MultiClassMetrics summarizes a single-label (one-hot)
// classifier.
type MultiClassMetrics struct {
	Count    int
	Accuracy float64

	// Confusion is indexed [expected][predicted].
	// Cells are fractions of Count.
	Confusion *mat.Dense

	Classes []ClassItem
}

// MultiClass computes single-label classification
// metrics.
// The expected and predicted classes of an item are the
// arg-max of its vectors.
func MultiClass(src Source) (*MultiClassMetrics, error) {
	var counts *mat.Dense
	var count, correct int
	err := forEach(src(), func(item Item) error {
		if counts == nil {
			if len(item.Expected) == 0 {
				return easycntk.ConfigErrorf("multi-class items must have at least one class")
			}
			counts = mat.NewDense(len(item.Expected), len(item.Expected), nil)
		} else if err := checkDim(item, counts.RawMatrix().Rows); err != nil {
			return err
		}
		expected := floats.MaxIdx(item.Expected)
		predicted := floats.MaxIdx(item.Evaluated)
		counts.Set(expected, predicted, counts.At(expected, predicted)+1)
		if expected == predicted {
			correct++
		}
		count++
		return nil
	})
	if err != nil {
		return nil, err
	} else if count == 0 {
		return nil, easycntk.ErrEmptyInput
	}

	numClasses, _ := counts.Dims()
	res := &MultiClassMetrics{
		Count:    count,
		Accuracy: float64(correct) / float64(count),
		Classes:  make([]ClassItem, numClasses),
	}
	for c := range res.Classes {
		tp := int(counts.At(c, c))
		expected := int(floats.Sum(counts.RawRowView(c)))
		predicted := int(mat.Sum(counts.ColView(c)))
		item := &res.Classes[c]
		item.Precision = ratio(tp, predicted)
		item.Recall = ratio(tp, expected)
		item.F1 = f1(item.Precision, item.Recall)
		item.Fraction = ratio(expected, count)
	}
	counts.Scale(1/float64(count), counts)
	res.Confusion = counts
	return res, nil
}

// MultiLabelMetrics summarizes a multi-label classifier.
//
// Counts are taken per label rather than per example, so
// an item with three expected labels contributes three
// hits or misses.
type MultiLabelMetrics struct {
	Count int

	// Accuracy is the fraction of (example, class) pairs
	// which were classified correctly.
	Accuracy float64

	// Classes holds per-class metrics.
	// Fraction is the share of all expected labels which
	// belong to the class.
	Classes []ClassItem
}

// MultiLabel computes multi-label classification metrics.
//
// A class belongs to an item's expected (or predicted)
// label set if the corresponding value exceeds threshold.
// The threshold must be in (0, 1).
func MultiLabel(src Source, threshold float64) (*MultiLabelMetrics, error) {
	if !(threshold > 0 && threshold < 1) {
		return nil, easycntk.ConfigErrorf("threshold must be in (0, 1) (got %g)", threshold)
	}
	var tp, fp, fn []int
	var count, correct int
	err := forEach(src(), func(item Item) error {
		if tp == nil {
			tp = make([]int, len(item.Expected))
			fp = make([]int, len(item.Expected))
			fn = make([]int, len(item.Expected))
		} else if err := checkDim(item, len(tp)); err != nil {
			return err
		}
		for c, x := range item.Expected {
			expected := x > threshold
			predicted := item.Evaluated[c] > threshold
			switch {
			case expected && predicted:
				tp[c]++
			case predicted:
				fp[c]++
			case expected:
				fn[c]++
			}
			if expected == predicted {
				correct++
			}
		}
		count++
		return nil
	})
	if err != nil {
		return nil, err
	} else if count == 0 {
		return nil, easycntk.ErrEmptyInput
	}

	var totalExpected int
	for c := range tp {
		totalExpected += tp[c] + fn[c]
	}
	res := &MultiLabelMetrics{
		Count:    count,
		Accuracy: ratio(correct, count*len(tp)),
		Classes:  make([]ClassItem, len(tp)),
	}
	for c := range res.Classes {
		item := &res.Classes[c]
		item.Precision = ratio(tp[c], tp[c]+fp[c])
		item.Recall = ratio(tp[c], tp[c]+fn[c])
		item.F1 = f1(item.Precision, item.Recall)
		item.Fraction = ratio(tp[c]+fn[c], totalExpected)
	}
	return res, nil
}

func checkThreshold(threshold float64) (float64, error) {
	if threshold == 0 {
		return DefaultThreshold, nil
	} else if !(threshold > 0 && threshold < 1) {
		return 0, easycntk.ConfigErrorf("threshold must be in (0, 1) (got %g)", threshold)
	}
	return threshold, nil
}

func classIndex(positive bool) int {
	if positive {
		return 1
	}
	return 0
}

func ratio(num, denom int) float64 {
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
