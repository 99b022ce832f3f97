package batch

import (
	"fmt"

	"github.com/byteshadow/EasyCNTK"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// Encode validates a dataset and returns a Stream which
// packs it into batches of batchSize examples.
//
// All validation happens before Encode returns, so the
// Stream itself never fails.
// An empty dataset produces an empty Stream.
func Encode(c anyvec.Creator, ds *Dataset, batchSize int) (Stream, error) {
	if batchSize <= 0 {
		return nil, easycntk.ConfigErrorf("batch size must be positive (got %d)", batchSize)
	}
	layout, err := ds.Validate()
	if err != nil {
		return nil, err
	}
	indices := make([]int, ds.Len())
	for i := range indices {
		indices[i] = i
	}
	return &encoder{
		creator:  c,
		dataset:  ds,
		layout:   layout,
		segments: Segment(indices, batchSize),
	}, nil
}

// SplitFlat builds a Dataset from rows of the form
// features++labels.
//
// Each row is split at inputDim; the remaining components
// form a single-head label.
// If the first row has exactly inputDim components, the
// dataset is unlabeled and every row must have that size.
func SplitFlat(rows [][]float64, inputDim int) (*Dataset, error) {
	if inputDim <= 0 {
		return nil, easycntk.ConfigErrorf("input dimension must be positive (got %d)", inputDim)
	}
	ds := &Dataset{}
	labeled := len(rows) > 0 && len(rows[0]) > inputDim
	if labeled {
		ds.Labels = make([]Label, 0, len(rows))
	}
	for i, row := range rows {
		if len(row) < inputDim || (!labeled && len(row) != inputDim) {
			return nil, &easycntk.ShapeError{
				What:     fmt.Sprintf("row %d", i),
				Expected: inputDim,
				Actual:   len(row),
			}
		}
		ds.Features = append(ds.Features, FlatExample(row[:inputDim:inputDim]))
		if labeled {
			ds.Labels = append(ds.Labels, SingleLabel(row[inputDim:]))
		}
	}
	return ds, nil
}

// EncodeFlat encodes rows of the form features++labels.
// See SplitFlat for how rows are split.
func EncodeFlat(c anyvec.Creator, rows [][]float64, inputDim, batchSize int) (Stream, error) {
	ds, err := SplitFlat(rows, inputDim)
	if err != nil {
		return nil, err
	}
	return Encode(c, ds, batchSize)
}

// EncodeSequence encodes variable-length sequences with
// single-head labels.
func EncodeSequence(c anyvec.Creator, features [][][]float64, labels [][]float64,
	batchSize int) (Stream, error) {
	ds := &Dataset{Labels: singleLabels(labels)}
	for _, f := range features {
		ds.Features = append(ds.Features, SequenceExample(f))
	}
	return Encode(c, ds, batchSize)
}

// EncodeMatrix encodes 2-D examples with single-head
// labels.
// Each example is packed row-major with shape
// [rows, cols, 1].
func EncodeMatrix(c anyvec.Creator, features [][][]float64, labels [][]float64,
	batchSize int) (Stream, error) {
	ds := &Dataset{Labels: singleLabels(labels)}
	for _, f := range features {
		ds.Features = append(ds.Features, MatrixExample(f))
	}
	return Encode(c, ds, batchSize)
}

// EncodeMultiHead encodes examples whose labels contain
// one vector per head.
func EncodeMultiHead(c anyvec.Creator, features []Example, labels [][][]float64,
	batchSize int) (Stream, error) {
	ds := &Dataset{Features: features, Labels: []Label{}}
	for _, l := range labels {
		ds.Labels = append(ds.Labels, MultiLabel(l))
	}
	return Encode(c, ds, batchSize)
}

// EncodeInputs encodes unlabeled examples, typically for
// prediction.
func EncodeInputs(c anyvec.Creator, features []Example, batchSize int) (Stream, error) {
	return Encode(c, &Dataset{Features: features}, batchSize)
}

func singleLabels(labels [][]float64) []Label {
	res := []Label{}
	for _, l := range labels {
		res = append(res, SingleLabel(l))
	}
	return res
}

type encoder struct {
	creator  anyvec.Creator
	dataset  *Dataset
	layout   *Layout
	segments *Segmenter[int]
}

func (e *encoder) Next() (*Batch, bool) {
	indices, ok := e.segments.Next()
	if !ok {
		return nil, false
	}
	res := &Batch{
		Size:   len(indices),
		Inputs: e.encodeInputs(indices),
	}
	if e.dataset.Labeled() {
		res.Outputs = e.encodeOutputs(indices)
	}
	return res, true
}

func (e *encoder) encodeInputs(indices []int) easycntk.Input {
	if e.layout.Kind == Sequence {
		seqs := make([][]anyvec.Vector, len(indices))
		for i, idx := range indices {
			for _, step := range e.dataset.Features[idx].(SequenceExample) {
				seqs[i] = append(seqs[i], easycntk.MakeVector(e.creator, step))
			}
		}
		return easycntk.NewSequences(e.creator, seqs, e.layout.Shape[0])
	}
	var data []float64
	for _, idx := range indices {
		switch f := e.dataset.Features[idx].(type) {
		case FlatExample:
			data = append(data, f...)
		case MatrixExample:
			for _, row := range f {
				data = append(data, row...)
			}
		}
	}
	return &easycntk.Packed{
		Vector: anydiff.NewConst(easycntk.MakeVector(e.creator, data)),
		Shape:  append([]int{}, e.layout.Shape...),
		Num:    len(indices),
	}
}

func (e *encoder) encodeOutputs(indices []int) []*anydiff.Const {
	res := make([]*anydiff.Const, len(e.layout.HeadSizes))
	for head := range res {
		var data []float64
		for _, idx := range indices {
			data = append(data, e.dataset.Labels[idx].Heads()[head]...)
		}
		res[head] = anydiff.NewConst(easycntk.MakeVector(e.creator, data))
	}
	return res
}
