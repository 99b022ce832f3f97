package easycntk

import (
	"fmt"
	"strings"
)

// A LayerRecord describes one layer of a model.
type LayerRecord struct {
	Kind   string
	Params []LayerParam
}

// A LayerParam is a named hyper-parameter of a layer.
type LayerParam struct {
	Name  string
	Value string
}

// A Describer can produce a LayerRecord for itself.
type Describer interface {
	Describe() LayerRecord
}

// Describe returns the record for l.
// Layers which do not implement Describer are recorded
// by their Go type.
func Describe(l interface{}) LayerRecord {
	if d, ok := l.(Describer); ok {
		return d.Describe()
	}
	return LayerRecord{Kind: fmt.Sprintf("%T", l)}
}

func record(kind string, kv ...interface{}) LayerRecord {
	rec := LayerRecord{Kind: kind}
	for i := 0; i+1 < len(kv); i += 2 {
		rec.Params = append(rec.Params, LayerParam{
			Name:  fmt.Sprint(kv[i]),
			Value: fmt.Sprint(kv[i+1]),
		})
	}
	return rec
}

// RenderArchitecture produces a human-readable, one line
// per layer description of the records.
func RenderArchitecture(records []LayerRecord) string {
	var b strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&b, "%d: %s", i, rec.Kind)
		if len(rec.Params) > 0 {
			parts := make([]string, len(rec.Params))
			for j, p := range rec.Params {
				parts[j] = p.Name + "=" + p.Value
			}
			b.WriteString("(" + strings.Join(parts, ", ") + ")")
		}
		b.WriteString("\n")
	}
	return b.String()
}
