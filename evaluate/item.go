package evaluate

import (
	"github.com/byteshadow/EasyCNTK"
	"github.com/byteshadow/EasyCNTK/batch"
)

// An Item pairs the expected output of one example with
// the output the model produced.
type Item struct {
	Expected  []float64
	Evaluated []float64
}

// NewItem creates an Item, checking that both vectors
// have the same length.
func NewItem(expected, evaluated []float64) (Item, error) {
	if len(expected) != len(evaluated) {
		return Item{}, &easycntk.ShapeError{
			What:     "evaluated output",
			Expected: len(expected),
			Actual:   len(evaluated),
		}
	}
	return Item{Expected: expected, Evaluated: evaluated}, nil
}

// An Iterator yields Items one at a time.
//
// After Next returns false, Err reports any error that
// ended the iteration early.
type Iterator interface {
	Next() (Item, bool)
	Err() error
}

// A Source opens a fresh Iterator over the same sequence
// of Items.
// Reducers which need several passes open it more than
// once.
type Source func() Iterator

// SliceSource creates a Source over a fixed list.
func SliceSource(items []Item) Source {
	return func() Iterator {
		return &sliceIterator{items: items}
	}
}

// ModelSource creates a Source which evaluates the model
// on the batches every time it is opened, yielding the
// Items of one head.
func ModelSource(m easycntk.Model, batches batch.List, head int) Source {
	return func() Iterator {
		return &headIterator{eval: Evaluate(m, batches.Stream()), head: head}
	}
}

type sliceIterator struct {
	items []Item
	idx   int
}

func (s *sliceIterator) Next() (Item, bool) {
	if s.idx >= len(s.items) {
		return Item{}, false
	}
	s.idx++
	return s.items[s.idx-1], true
}

func (s *sliceIterator) Err() error {
	return nil
}

type headIterator struct {
	eval *Evaluation
	head int
	err  error
}

func (h *headIterator) Next() (Item, bool) {
	if h.err != nil || !h.eval.Next() {
		return Item{}, false
	}
	items := h.eval.Items()
	if h.head >= len(items) {
		h.err = easycntk.ConfigErrorf("head %d out of range (model has %d outputs)", h.head,
			len(items))
		return Item{}, false
	}
	return items[h.head], true
}

func (h *headIterator) Err() error {
	if h.err != nil {
		return h.err
	}
	return h.eval.Err()
}
