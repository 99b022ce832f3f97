package batch

import (
	"fmt"

	"github.com/byteshadow/EasyCNTK"
)

// A Kind is the shape family of a dataset's examples.
type Kind int

// These are the supported shape families.
const (
	Flat Kind = iota
	Sequence
	Matrix
)

func (k Kind) String() string {
	switch k {
	case Flat:
		return "flat"
	case Sequence:
		return "sequence"
	case Matrix:
		return "matrix"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// An Example is the raw feature data of one example.
//
// It is one of FlatExample, SequenceExample or
// MatrixExample.
type Example interface {
	Kind() Kind
}

// A FlatExample is a single feature vector.
type FlatExample []float64

// Kind returns Flat.
func (f FlatExample) Kind() Kind { return Flat }

// A SequenceExample is an ordered list of equally-sized
// feature vectors.
// Different examples may have different lengths.
type SequenceExample [][]float64

// Kind returns Sequence.
func (s SequenceExample) Kind() Kind { return Sequence }

// A MatrixExample is a 2-D feature matrix, indexed
// [row][col].
type MatrixExample [][]float64

// Kind returns Matrix.
func (m MatrixExample) Kind() Kind { return Matrix }

// A Label is the desired output of one example.
//
// It is either a SingleLabel or a MultiLabel.
type Label interface {
	// Heads returns one vector per output head.
	Heads() [][]float64
}

// A SingleLabel is the label of a single-head model.
type SingleLabel []float64

// Heads returns a one-element list.
func (s SingleLabel) Heads() [][]float64 {
	return [][]float64{s}
}

// A MultiLabel holds one label vector per output head.
type MultiLabel [][]float64

// Heads returns m.
func (m MultiLabel) Heads() [][]float64 {
	return m
}

// A Dataset is a list of examples and (optionally) their
// labels.
//
// All examples must have the same Kind and dimensions,
// except that sequence lengths may vary.
// All labels must have the same number of heads, and
// every head must have a fixed size.
// If Labels is nil, the dataset is unlabeled.
type Dataset struct {
	Features []Example
	Labels   []Label
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	return len(d.Features)
}

// Labeled reports whether the dataset has labels.
func (d *Dataset) Labeled() bool {
	return d.Labels != nil
}

// Slice returns a shallow copy of a range of examples.
func (d *Dataset) Slice(i, j int) *Dataset {
	res := &Dataset{Features: append([]Example{}, d.Features[i:j]...)}
	if d.Labeled() {
		res.Labels = append([]Label{}, d.Labels[i:j]...)
	}
	return res
}

// Swap swaps two examples along with their labels.
func (d *Dataset) Swap(i, j int) {
	d.Features[i], d.Features[j] = d.Features[j], d.Features[i]
	if d.Labeled() {
		d.Labels[i], d.Labels[j] = d.Labels[j], d.Labels[i]
	}
}

// A Layout describes the dimensions of a validated
// dataset.
type Layout struct {
	Kind Kind

	// Shape is the per-example feature shape.
	// For Flat it is [n]; for Matrix it is [rows, cols, 1];
	// for Sequence it is [dim].
	Shape []int

	// HeadSizes lists the label size of each head.
	// It is empty for unlabeled datasets.
	HeadSizes []int
}

// Validate checks that the dataset is consistent and
// returns its layout.
//
// An empty dataset is valid and has a zero Layout.
func (d *Dataset) Validate() (*Layout, error) {
	if d.Labeled() && len(d.Labels) != len(d.Features) {
		return nil, &easycntk.LengthMismatchError{
			Features: len(d.Features),
			Labels:   len(d.Labels),
		}
	}
	if len(d.Features) == 0 {
		return &Layout{}, nil
	}
	layout := &Layout{Kind: d.Features[0].Kind()}
	for i, f := range d.Features {
		if f.Kind() != layout.Kind {
			return nil, easycntk.ConfigErrorf("example %d is %s but example 0 is %s", i,
				f.Kind(), layout.Kind)
		}
		shape, err := exampleShape(f)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
		if i == 0 {
			layout.Shape = shape
		} else if err := sameShape(layout.Shape, shape); err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
	}
	if d.Labeled() {
		for i, l := range d.Labels {
			heads := l.Heads()
			if i == 0 {
				for _, h := range heads {
					layout.HeadSizes = append(layout.HeadSizes, len(h))
				}
				continue
			}
			if len(heads) != len(layout.HeadSizes) {
				return nil, easycntk.ConfigErrorf("label %d has %d heads but label 0 has %d",
					i, len(heads), len(layout.HeadSizes))
			}
			for j, h := range heads {
				if len(h) != layout.HeadSizes[j] {
					return nil, &easycntk.ShapeError{
						What:     fmt.Sprintf("label %d head %d", i, j),
						Expected: layout.HeadSizes[j],
						Actual:   len(h),
					}
				}
			}
		}
	}
	return layout, nil
}

func exampleShape(e Example) ([]int, error) {
	switch e := e.(type) {
	case FlatExample:
		return []int{len(e)}, nil
	case SequenceExample:
		if len(e) == 0 {
			return nil, easycntk.ConfigErrorf("empty sequence")
		}
		for t, v := range e {
			if len(v) != len(e[0]) {
				return nil, &easycntk.ShapeError{
					What:     fmt.Sprintf("timestep %d", t),
					Expected: len(e[0]),
					Actual:   len(v),
				}
			}
		}
		return []int{len(e[0])}, nil
	case MatrixExample:
		if len(e) == 0 {
			return nil, easycntk.ConfigErrorf("empty matrix")
		}
		for r, row := range e {
			if len(row) != len(e[0]) {
				return nil, &easycntk.ShapeError{
					What:     fmt.Sprintf("matrix row %d", r),
					Expected: len(e[0]),
					Actual:   len(row),
				}
			}
		}
		return []int{len(e), len(e[0]), 1}, nil
	default:
		return nil, easycntk.ConfigErrorf("unsupported example type %T", e)
	}
}

func sameShape(expected, actual []int) error {
	for i, x := range expected {
		if actual[i] != x {
			return &easycntk.ShapeError{
				What:     fmt.Sprintf("feature axis %d", i),
				Expected: x,
				Actual:   actual[i],
			}
		}
	}
	return nil
}
