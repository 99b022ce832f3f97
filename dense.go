package easycntk

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var d Dense
	serializer.RegisterTypedDeserializer(d.SerializerType(), DeserializeDense)
}

// Dense is a fully-connected layer mapping In inputs to
// Out outputs.
//
// Weights is an Out x In row-major matrix.
type Dense struct {
	In      int
	Out     int
	Weights *anydiff.Var
	Biases  *anydiff.Var
}

// DeserializeDense deserializes a Dense layer.
func DeserializeDense(d []byte) (*Dense, error) {
	var in, out serializer.Int
	var weights, biases *anyvecsave.S
	if err := serializer.DeserializeAny(d, &in, &out, &weights, &biases); err != nil {
		return nil, essentials.AddCtx("deserialize Dense", err)
	}
	if weights.Vector.Len() != int(in)*int(out) {
		return nil, essentials.AddCtx("deserialize Dense", &ShapeError{
			What:     "weights",
			Expected: int(in) * int(out),
			Actual:   weights.Vector.Len(),
		})
	}
	if biases.Vector.Len() != int(out) {
		return nil, essentials.AddCtx("deserialize Dense", &ShapeError{
			What:     "biases",
			Expected: int(out),
			Actual:   biases.Vector.Len(),
		})
	}
	return &Dense{
		In:      int(in),
		Out:     int(out),
		Weights: anydiff.NewVar(weights.Vector),
		Biases:  anydiff.NewVar(biases.Vector),
	}, nil
}

// NewDense creates a Dense layer with Glorot-uniform
// weights and zero biases.
func NewDense(c anyvec.Creator, in, out int) *Dense {
	res := NewDenseZero(c, in, out)
	limit := math.Sqrt(6 / float64(in+out))
	w := res.Weights.Vector
	anyvec.Rand(w, anyvec.Uniform, nil)
	w.Scale(c.MakeNumeric(2 * limit))
	w.AddScalar(c.MakeNumeric(-limit))
	return res
}

// NewDenseZero creates a Dense layer with every parameter
// set to zero.
func NewDenseZero(c anyvec.Creator, in, out int) *Dense {
	return &Dense{
		In:      in,
		Out:     out,
		Weights: anydiff.NewVar(c.MakeVector(in * out)),
		Biases:  anydiff.NewVar(c.MakeVector(out)),
	}
}

// Apply computes W*x+b for every example in the batch.
//
// It panics with a *ShapeError if the input does not hold
// n vectors of size d.In.
func (d *Dense) Apply(in anydiff.Res, n int) anydiff.Res {
	if got := in.Output().Len(); got != n*d.In {
		panic(&ShapeError{What: "Dense input", Expected: n * d.In, Actual: got})
	}
	product := anydiff.MatMul(false, true,
		&anydiff.Matrix{Data: in, Rows: n, Cols: d.In},
		&anydiff.Matrix{Data: d.Weights, Rows: d.Out, Cols: d.In})
	return anydiff.AddRepeated(product.Data, d.Biases)
}

// AddBias adds val to every bias and returns d.
func (d *Dense) AddBias(val anyvec.Numeric) *Dense {
	d.Biases.Vector.AddScalar(val)
	return d
}

// Parameters returns the weights followed by the biases.
func (d *Dense) Parameters() []*anydiff.Var {
	return []*anydiff.Var{d.Weights, d.Biases}
}

func (d *Dense) Describe() LayerRecord {
	return record("Dense", "in", d.In, "out", d.Out)
}

// SerializerType returns the unique ID used to serialize
// a Dense layer with the serializer package.
func (d *Dense) SerializerType() string {
	return "github.com/byteshadow/EasyCNTK.Dense"
}

// Serialize serializes the layer.
func (d *Dense) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		serializer.Int(d.In),
		serializer.Int(d.Out),
		&anyvecsave.S{Vector: d.Weights.Vector},
		&anyvecsave.S{Vector: d.Biases.Vector},
	)
}
