package easycntk

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
)

// An Input is a batch of encoded examples, ready to be fed
// to a model.
//
// It is either a *Packed or a *Sequences.
type Input interface {
	// Len returns the number of examples in the batch.
	Len() int

	// Creator returns the creator of the underlying
	// vectors.
	Creator() anyvec.Creator
}

// Packed stores fixed-shape examples one after another in
// a single vector.
//
// Shape is the per-example shape.
// Flat vectors have shape [n]; matrices have shape
// [rows, cols, 1] and are stored row-major.
type Packed struct {
	Vector *anydiff.Const
	Shape  []int
	Num    int
}

// Len returns p.Num.
func (p *Packed) Len() int {
	return p.Num
}

// Creator returns the creator of p.Vector.
func (p *Packed) Creator() anyvec.Creator {
	return p.Vector.Output().Creator()
}

// ExampleSize returns the number of components in one
// example.
func (p *Packed) ExampleSize() int {
	size := 1
	for _, x := range p.Shape {
		size *= x
	}
	return size
}

// Sequences stores a batch of variable-length sequences of
// equally-sized vectors.
type Sequences struct {
	Seq anyseq.Seq
	Dim int
	Num int

	creator anyvec.Creator
}

// NewSequences packs the sequences into a *Sequences.
// Sequences may differ in length but not in vector size.
func NewSequences(c anyvec.Creator, seqs [][]anyvec.Vector, dim int) *Sequences {
	return &Sequences{
		Seq:     anyseq.ConstSeqList(c, seqs),
		Dim:     dim,
		Num:     len(seqs),
		creator: c,
	}
}

// Len returns s.Num.
func (s *Sequences) Len() int {
	return s.Num
}

// Creator returns the creator used to pack the sequences.
func (s *Sequences) Creator() anyvec.Creator {
	return s.creator
}
