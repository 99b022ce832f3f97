package easycntk

import (
	"fmt"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// An Architecturer can describe its layers as records.
// Net and *MultiHead implement it.
type Architecturer interface {
	Architecture() []LayerRecord
}

// DescriptionPath returns the path of the side-car file
// which holds the description of the model saved at path.
func DescriptionPath(path string) string {
	return path + ".txt"
}

// Save writes a serialized model to path.
//
// If the model implements Architecturer, its rendered
// architecture is written to DescriptionPath(path) too.
func Save(path string, model serializer.Serializer) error {
	data, err := serializer.SerializeWithType(model)
	if err != nil {
		return essentials.AddCtx("save model", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return essentials.AddCtx("save model", err)
	}
	if a, ok := model.(Architecturer); ok {
		desc := RenderArchitecture(a.Architecture())
		if err := os.WriteFile(DescriptionPath(path), []byte(desc), 0644); err != nil {
			return essentials.AddCtx("save model description", err)
		}
	}
	return nil
}

// Load reads a model written by Save.
// The result has the same type that was saved, e.g. Net
// or *MultiHead.
func Load(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("load model", err)
	}
	obj, err := serializer.DeserializeWithType(data)
	if err != nil {
		return nil, essentials.AddCtx("load model", err)
	}
	return obj, nil
}

// LoadNet is like Load, but it requires the saved model
// to be a Net.
func LoadNet(path string) (Net, error) {
	obj, err := Load(path)
	if err != nil {
		return nil, err
	}
	net, ok := obj.(Net)
	if !ok {
		return nil, fmt.Errorf("load model: expected Net but got %T", obj)
	}
	return net, nil
}

// ReadDescription reads the side-car description of the
// model saved at path.
func ReadDescription(path string) (string, error) {
	data, err := os.ReadFile(DescriptionPath(path))
	if err != nil {
		return "", essentials.AddCtx("read model description", err)
	}
	return string(data), nil
}
