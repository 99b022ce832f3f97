package easycntk

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var a Affine
	serializer.RegisterTypedDeserializer(a.SerializerType(), DeserializeAffine)
}

// Affine scales and shifts every component of its input.
//
// For component x[i] it computes
//
//     a[i%len(a)]*x[i] + b[i%len(b)]
//
// where the scalers a and biases b are learned.
// It is typically used to normalize raw features.
type Affine struct {
	Scalers *anydiff.Var
	Biases  *anydiff.Var
}

// DeserializeAffine deserializes an Affine layer.
func DeserializeAffine(d []byte) (*Affine, error) {
	var s, b *anyvecsave.S
	if err := serializer.DeserializeAny(d, &s, &b); err != nil {
		return nil, essentials.AddCtx("deserialize Affine", err)
	}
	return &Affine{
		Scalers: anydiff.NewVar(s.Vector),
		Biases:  anydiff.NewVar(b.Vector),
	}, nil
}

// NewAffine creates an identity Affine layer with one
// scaler and one bias per input component.
func NewAffine(c anyvec.Creator, size int) *Affine {
	scalers := c.MakeVector(size)
	scalers.AddScalar(c.MakeNumeric(1))
	return &Affine{
		Scalers: anydiff.NewVar(scalers),
		Biases:  anydiff.NewVar(c.MakeVector(size)),
	}
}

// Apply applies the layer to a batch of inputs.
// The size of each vector in the batch must be divisible
// by the number of scalers and biases.
func (a *Affine) Apply(in anydiff.Res, n int) anydiff.Res {
	if in.Output().Len()%n != 0 {
		panic("Affine: input size not divisible by batch size")
	}
	inLen := in.Output().Len() / n
	if inLen%a.Scalers.Vector.Len() != 0 || inLen%a.Biases.Vector.Len() != 0 {
		panic("Affine: scaler and bias count must divide input count")
	}
	return anydiff.ScaleAddRepeated(in, a.Scalers, a.Biases)
}

// Parameters returns the scalers followed by the biases.
func (a *Affine) Parameters() []*anydiff.Var {
	return []*anydiff.Var{a.Scalers, a.Biases}
}

// Describe returns a record with the layer's size.
func (a *Affine) Describe() LayerRecord {
	return record("Affine", "scalers", a.Scalers.Vector.Len(), "biases", a.Biases.Vector.Len())
}

// SerializerType returns the unique ID used to serialize
// an Affine with the serializer package.
func (a *Affine) SerializerType() string {
	return "github.com/byteshadow/EasyCNTK.Affine"
}

// Serialize serializes the layer.
func (a *Affine) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		&anyvecsave.S{Vector: a.Scalers.Vector},
		&anyvecsave.S{Vector: a.Biases.Vector},
	)
}
