package easycntk

import (
	"fmt"
	"log"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/serializer"
)

func init() {
	serializer.RegisterTypedDeserializer((&Debug{}).SerializerType(), DeserializeDebug)
}

// Debug is a pass-through layer which logs statistics
// about the batches flowing through it.
type Debug struct {
	// Logger receives the statistics.
	// If nil, the standard logger is used.
	Logger *log.Logger

	ID            string
	PrintRaw      bool
	PrintMean     bool
	PrintVariance bool
}

// DeserializeDebug deserializes a Debug layer.
// The Logger will be nil.
func DeserializeDebug(d []byte) (*Debug, error) {
	var res Debug
	err := serializer.DeserializeAny(d, &res.ID, &res.PrintRaw, &res.PrintMean,
		&res.PrintVariance)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Apply logs information about its input.
// The input is returned, untouched.
func (d *Debug) Apply(in anydiff.Res, n int) anydiff.Res {
	if d.PrintRaw {
		d.printf("batch=%d values=%v", n, in.Output().Data())
	}
	cols := in.Output().Len() / n
	if d.PrintMean || d.PrintVariance {
		mean := anyvec.SumRows(in.Output(), cols)
		normalizer := mean.Creator().MakeNumeric(1 / float64(n))
		mean.Scale(normalizer)
		if d.PrintMean {
			d.printf("mean=%v", mean.Data())
		}
		if d.PrintVariance {
			two := mean.Creator().MakeNumeric(2)
			squared := in.Output().Copy()
			anyvec.Pow(squared, two)
			variance := anyvec.SumRows(squared, cols)
			variance.Scale(normalizer)
			anyvec.Pow(mean, two)
			variance.Sub(mean)
			d.printf("variance=%v", variance.Data())
		}
	}
	return in
}

// Describe returns a record with the layer ID.
func (d *Debug) Describe() LayerRecord {
	return record("Debug", "id", d.ID)
}

// SerializerType returns the unique ID used to serialize
// a Debug layer with the serializer package.
func (d *Debug) SerializerType() string {
	return "github.com/byteshadow/EasyCNTK.Debug"
}

// Serialize serializes the layer.
func (d *Debug) Serialize() ([]byte, error) {
	return serializer.SerializeAny(d.ID, d.PrintRaw, d.PrintMean, d.PrintVariance)
}

func (d *Debug) printf(format string, args ...interface{}) {
	msg := fmt.Sprintf("debug id=%s ", d.ID) + fmt.Sprintf(format, args...)
	if d.Logger == nil {
		log.Print(msg)
	} else {
		d.Logger.Print(msg)
	}
}
