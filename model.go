package easycntk

import (
	"errors"
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var m MultiHead
	serializer.RegisterTypedDeserializer(m.SerializerType(), DeserializeMultiHead)
}

// An Output is one output of a model.
// Training sessions bind to an Output and update its
// parameters.
type Output interface {
	Parameterizer

	// Apply runs the forward pass, producing one packed
	// output vector per example in the batch.
	Apply(in Input) anydiff.Res
}

// A Model exposes one Output per head.
// Single-head models have exactly one Output.
type Model interface {
	Outputs() []Output
}

// FeedForward is a single-head model which feeds packed
// inputs through a Net.
type FeedForward struct {
	Net Net
}

// Apply applies the Net.
// The input must be a *Packed.
func (f *FeedForward) Apply(in Input) anydiff.Res {
	p, ok := in.(*Packed)
	if !ok {
		panic(fmt.Sprintf("FeedForward: unsupported input %T", in))
	}
	return f.Net.Apply(p.Vector, p.Num)
}

// Parameters returns the Net's parameters.
func (f *FeedForward) Parameters() []*anydiff.Var {
	return f.Net.Parameters()
}

// Outputs returns f.
func (f *FeedForward) Outputs() []Output {
	return []Output{f}
}

// SeqToVec is a single-head model which maps each input
// sequence to one output vector.
type SeqToVec struct {
	// Func produces a packed batch of output vectors, one
	// per sequence.
	Func   func(anyseq.Seq) anydiff.Res
	Params []*anydiff.Var
}

// Apply applies s.Func.
// The input must be a *Sequences.
func (s *SeqToVec) Apply(in Input) anydiff.Res {
	seqs, ok := in.(*Sequences)
	if !ok {
		panic(fmt.Sprintf("SeqToVec: unsupported input %T", in))
	}
	return s.Func(seqs.Seq)
}

// Parameters returns s.Params.
func (s *SeqToVec) Parameters() []*anydiff.Var {
	return s.Params
}

// Outputs returns s.
func (s *SeqToVec) Outputs() []Output {
	return []Output{s}
}

// MultiHead is a model with a shared trunk feeding several
// independent heads.
//
// Each head's Output includes the trunk parameters, so
// every head's optimizer also updates the trunk.
// Wrap the trunk in a ParamHider to freeze it.
type MultiHead struct {
	Trunk Net
	Heads []Net
}

// DeserializeMultiHead deserializes a MultiHead.
func DeserializeMultiHead(d []byte) (*MultiHead, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize MultiHead", err)
	}
	if len(slice) == 0 {
		return nil, errors.New("deserialize MultiHead: missing trunk")
	}
	res := &MultiHead{}
	for i, x := range slice {
		net, ok := x.(Net)
		if !ok {
			return nil, fmt.Errorf("deserialize MultiHead: not a Net: %T", x)
		}
		if i == 0 {
			res.Trunk = net
		} else {
			res.Heads = append(res.Heads, net)
		}
	}
	return res, nil
}

// Outputs returns one Output per head.
func (m *MultiHead) Outputs() []Output {
	res := make([]Output, len(m.Heads))
	for i := range m.Heads {
		res[i] = &headOutput{Model: m, Index: i}
	}
	return res
}

// Architecture lists the trunk records followed by each
// head's records.
// Head layers are prefixed with "head<i>/".
func (m *MultiHead) Architecture() []LayerRecord {
	res := m.Trunk.Architecture()
	for i, h := range m.Heads {
		for _, rec := range h.Architecture() {
			rec.Kind = fmt.Sprintf("head%d/%s", i, rec.Kind)
			res = append(res, rec)
		}
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a MultiHead with the serializer package.
func (m *MultiHead) SerializerType() string {
	return "github.com/byteshadow/EasyCNTK.MultiHead"
}

// Serialize serializes the trunk and heads.
func (m *MultiHead) Serialize() ([]byte, error) {
	slice := []serializer.Serializer{m.Trunk}
	for _, h := range m.Heads {
		slice = append(slice, h)
	}
	return serializer.SerializeSlice(slice)
}

type headOutput struct {
	Model *MultiHead
	Index int
}

func (h *headOutput) Apply(in Input) anydiff.Res {
	p, ok := in.(*Packed)
	if !ok {
		panic(fmt.Sprintf("MultiHead: unsupported input %T", in))
	}
	trunkOut := h.Model.Trunk.Apply(p.Vector, p.Num)
	return h.Model.Heads[h.Index].Apply(trunkOut, p.Num)
}

func (h *headOutput) Parameters() []*anydiff.Var {
	return append(h.Model.Trunk.Parameters(), h.Model.Heads[h.Index].Parameters()...)
}
