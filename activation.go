package easycntk

import (
	"fmt"
	"strings"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/serializer"
)

func init() {
	var a Activation
	serializer.RegisterTypedDeserializer(a.SerializerType(), DeserializeActivation)
}

// An Activation is a standard activation function.
type Activation int

// These are the supported activation functions.
const (
	Tanh Activation = iota
	LogSoftmax
	Sigmoid
	ReLU
	Sin
	Softmax
)

var activationNames = []string{"tanh", "logsoftmax", "sigmoid", "relu", "sin", "softmax"}

// ParseActivation finds an activation by its
// case-insensitive name, e.g. "relu".
func ParseActivation(name string) (Activation, error) {
	for i, x := range activationNames {
		if strings.EqualFold(x, name) {
			return Activation(i), nil
		}
	}
	return 0, ConfigErrorf("unknown activation: %q", name)
}

// DeserializeActivation deserializes an Activation.
func DeserializeActivation(d []byte) (Activation, error) {
	if len(d) != 1 {
		return 0, fmt.Errorf("deserialize Activation: data length (%d) should be 1", len(d))
	}
	a := Activation(d[0])
	if a > Softmax {
		return 0, fmt.Errorf("deserialize Activation: unknown activation ID: %d", a)
	}
	return a, nil
}

// String returns the lower-case name of a.
func (a Activation) String() string {
	if a < 0 || int(a) >= len(activationNames) {
		return fmt.Sprintf("Activation(%d)", int(a))
	}
	return activationNames[a]
}

// Apply applies the activation function.
func (a Activation) Apply(in anydiff.Res, n int) anydiff.Res {
	switch a {
	case Tanh:
		return anydiff.Tanh(in)
	case LogSoftmax, Softmax:
		inLen := in.Output().Len()
		if inLen%n != 0 {
			panic("batch size must divide input length")
		}
		res := anydiff.LogSoftmax(in, inLen/n)
		if a == Softmax {
			return anydiff.Exp(res)
		}
		return res
	case Sigmoid:
		return anydiff.Sigmoid(in)
	case ReLU:
		return anydiff.ClipPos(in)
	case Sin:
		return anydiff.Sin(in)
	default:
		panic(fmt.Sprintf("unknown activation: %d", a))
	}
}

// Describe returns a record naming the activation.
func (a Activation) Describe() LayerRecord {
	return record("Activation", "func", a)
}

// SerializerType returns the unique ID used to serialize
// an Activation.
func (a Activation) SerializerType() string {
	return "github.com/byteshadow/EasyCNTK.Activation"
}

// Serialize serializes the activation.
func (a Activation) Serialize() ([]byte, error) {
	return []byte{byte(a)}, nil
}
