// Package evaluate runs trained models forward and
// computes evaluation metrics from their outputs.
//
// Evaluate and Predict process one batch at a time and
// yield results one example at a time.
// The metric reducers (Regression, Binary, MultiClass and
// MultiLabel) consume Items in a streaming fashion and
// never hold the whole data set in memory.
package evaluate

import (
	"fmt"

	"github.com/byteshadow/EasyCNTK"
	"github.com/byteshadow/EasyCNTK/batch"
)

// An Evaluation iterates over the examples of a labeled
// batch stream, pairing each head's expected output with
// the model's output.
//
// Use it like a bufio.Scanner:
//
//	e := Evaluate(model, stream)
//	for e.Next() {
//	    items := e.Items()
//	    ...
//	}
//	if err := e.Err(); err != nil {
//	    ...
//	}
type Evaluation struct {
	forward forwarder
	current []Item
}

// Evaluate creates an Evaluation of the model.
// Every batch must carry one label set per model output.
func Evaluate(m easycntk.Model, s batch.Stream) *Evaluation {
	return &Evaluation{forward: forwarder{model: m, stream: s, labeled: true}}
}

// Next advances to the next example.
func (e *Evaluation) Next() bool {
	if !e.forward.next() {
		return false
	}
	e.current = make([]Item, len(e.forward.outputs))
	for head, out := range e.forward.outputs {
		expected := e.forward.expected[head][e.forward.idx]
		item, err := NewItem(expected, out[e.forward.idx])
		if err != nil {
			e.forward.err = fmt.Errorf("evaluate: %w", err)
			return false
		}
		e.current[head] = item
	}
	return true
}

// Items returns one Item per head for the current
// example.
func (e *Evaluation) Items() []Item {
	return e.current
}

// Item returns the first head's Item for the current
// example.
func (e *Evaluation) Item() Item {
	return e.current[0]
}

// Err returns the error, if any, that stopped iteration.
func (e *Evaluation) Err() error {
	return e.forward.err
}

// A Prediction iterates over the model's outputs for each
// example of a batch stream.
// Labels, if present, are ignored.
type Prediction struct {
	forward forwarder
}

// Predict creates a Prediction.
func Predict(m easycntk.Model, s batch.Stream) *Prediction {
	return &Prediction{forward: forwarder{model: m, stream: s}}
}

// Next advances to the next example.
func (p *Prediction) Next() bool {
	return p.forward.next()
}

// Values returns one output vector per head for the
// current example.
func (p *Prediction) Values() [][]float64 {
	res := make([][]float64, len(p.forward.outputs))
	for head, out := range p.forward.outputs {
		res[head] = out[p.forward.idx]
	}
	return res
}

// Value returns the first head's output vector for the
// current example.
func (p *Prediction) Value() []float64 {
	return p.forward.outputs[0][p.forward.idx]
}

// Err returns the error, if any, that stopped iteration.
func (p *Prediction) Err() error {
	return p.forward.err
}

// forwarder runs one batch at a time through every model
// output and splits the results per example.
type forwarder struct {
	model   easycntk.Model
	stream  batch.Stream
	labeled bool

	// outputs and expected are indexed [head][example].
	outputs  [][][]float64
	expected [][][]float64
	idx      int
	size     int
	err      error
}

func (f *forwarder) next() bool {
	if f.err != nil {
		return false
	}
	f.idx++
	for f.idx >= f.size {
		b, ok := f.stream.Next()
		if !ok {
			return false
		}
		if err := f.load(b); err != nil {
			f.err = err
			return false
		}
	}
	return true
}

func (f *forwarder) load(b *batch.Batch) error {
	outs := f.model.Outputs()
	if f.labeled && len(b.Outputs) != len(outs) {
		return easycntk.ConfigErrorf("batch has %d label sets but model has %d outputs",
			len(b.Outputs), len(outs))
	}
	f.outputs = make([][][]float64, len(outs))
	f.expected = make([][][]float64, len(outs))
	err := easycntk.CatchPanic(func() {
		for head, out := range outs {
			f.outputs[head] = split(easycntk.Float64s(out.Apply(b.Inputs).Output()), b.Size)
			if f.labeled {
				f.expected[head] = split(easycntk.Float64s(b.Outputs[head].Output()), b.Size)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("forward pass: %w", err)
	}
	f.idx = 0
	f.size = b.Size
	return nil
}

func split(packed []float64, n int) [][]float64 {
	res := make([][]float64, n)
	size := len(packed) / n
	for i := range res {
		res[i] = packed[i*size : (i+1)*size : (i+1)*size]
	}
	return res
}
