// Package batch converts in-memory datasets into
// mini-batches ready to be fed to a model.
//
// A Dataset holds raw examples (flat vectors, sequences
// or matrices) and optional labels for one or more output
// heads.
// Encode validates a Dataset and produces a Stream of
// *Batch values, each packed for the vector backend.
package batch

import (
	"github.com/byteshadow/EasyCNTK"
	"github.com/unixpickle/anydiff"
)

// A Batch stores the packed inputs and outputs of a
// contiguous group of examples.
type Batch struct {
	// Size is the number of examples in the batch.
	Size int

	// Inputs is a *easycntk.Packed for flat and matrix
	// examples, or a *easycntk.Sequences for sequences.
	Inputs easycntk.Input

	// Outputs contains one packed label vector per head.
	// It is nil for unlabeled batches.
	Outputs []*anydiff.Const
}

// Heads returns the number of label heads in the batch.
func (b *Batch) Heads() int {
	return len(b.Outputs)
}

// A Stream yields batches in order.
//
// Streams are single-pass.
type Stream interface {
	// Next returns the next batch, or false if the stream
	// is exhausted.
	Next() (*Batch, bool)
}

// A List is a materialized sequence of batches.
type List []*Batch

// Collect reads the rest of a Stream into a List.
func Collect(s Stream) List {
	var res List
	for {
		b, ok := s.Next()
		if !ok {
			return res
		}
		res = append(res, b)
	}
}

// Stream creates a new Stream which replays the list.
func (l List) Stream() Stream {
	return &listStream{list: l}
}

// NumExamples returns the total number of examples.
func (l List) NumExamples() int {
	var n int
	for _, b := range l {
		n += b.Size
	}
	return n
}

type listStream struct {
	list List
	idx  int
}

func (l *listStream) Next() (*Batch, bool) {
	if l.idx >= len(l.list) {
		return nil, false
	}
	l.idx++
	return l.list[l.idx-1], true
}
