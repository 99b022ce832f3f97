package sgd

import (
	"errors"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

var errUnbound = errors.New("optimizer is not bound to any variables")

// MarshalBinary checkpoints the optimizer's rate, batch
// size, step count and transformer moments.
//
// The optimizer must be bound, since moments are stored
// in the order of o.Vars.
func (o *Optimizer) MarshalBinary() ([]byte, error) {
	if len(o.Vars) == 0 {
		return nil, essentials.AddCtx("marshal optimizer", errUnbound)
	}
	var hasState serializer.Int
	objs := []interface{}{
		serializer.Float64(o.LearningRate),
		serializer.Int(o.BatchSize),
		serializer.Int(o.steps),
	}
	var vecs []interface{}
	for _, m := range o.moments() {
		if *m != nil {
			hasState = 1
		}
		for _, v := range o.Vars {
			if *m == nil {
				vecs = append(vecs, &anyvecsave.S{Vector: v.Vector.Creator().MakeVector(v.Vector.Len())})
				continue
			}
			vec, ok := (*m)[v]
			if !ok {
				return nil, errors.New("marshal optimizer: variable list does not match moments")
			}
			vecs = append(vecs, &anyvecsave.S{Vector: vec})
		}
	}
	objs = append(objs, hasState)
	objs = append(objs, vecs...)
	return serializer.SerializeAny(objs...)
}

// UnmarshalBinary restores a checkpoint created by
// MarshalBinary.
//
// The optimizer must already be bound to the same
// variables and use the same kind of transformer.
// Rebinding to those variables afterwards, e.g. through a
// new training session, keeps the restored state.
func (o *Optimizer) UnmarshalBinary(data []byte) error {
	if len(o.Vars) == 0 {
		return essentials.AddCtx("unmarshal optimizer", errUnbound)
	}
	var rate serializer.Float64
	var batchSize, steps, hasState serializer.Int
	dests := []interface{}{&rate, &batchSize, &steps, &hasState}
	moments := o.moments()
	vecs := make([]*anyvecsave.S, len(moments)*len(o.Vars))
	for i := range vecs {
		dests = append(dests, &vecs[i])
	}
	if err := serializer.DeserializeAny(data, dests...); err != nil {
		return essentials.AddCtx("unmarshal optimizer", err)
	}
	for i, m := range moments {
		if hasState == 0 {
			*m = nil
			continue
		}
		g := anydiff.Grad{}
		for j, v := range o.Vars {
			vec := vecs[i*len(o.Vars)+j].Vector
			if vec.Len() != v.Vector.Len() {
				return errors.New("unmarshal optimizer: bad vector length")
			} else if vec.Creator() != v.Vector.Creator() {
				return errors.New("unmarshal optimizer: bad vector creator")
			}
			g[v] = vec
		}
		*m = g
	}
	o.LearningRate = float64(rate)
	o.BatchSize = int(batchSize)
	o.steps = int(steps)
	if a, ok := o.Transformer.(*Adam); ok {
		a.setSteps(o.steps)
	}
	return nil
}

func (o *Optimizer) moments() []*anydiff.Grad {
	if s, ok := o.Transformer.(stateful); ok {
		return s.moments()
	}
	return nil
}
