package batch

import (
	"fmt"

	"github.com/unixpickle/anyvec"
)

// A Supplier produces the batches for an epoch.
// Epochs are numbered starting at 1.
//
// A Supplier may be called more than once for the same
// epoch (for example, when an epoch is retried) and must
// return a fresh Stream every time.
type Supplier func(epoch int) (Stream, error)

// Static encodes the dataset once and replays the same
// batches for every epoch.
func Static(c anyvec.Creator, ds *Dataset, batchSize int) (Supplier, error) {
	s, err := Encode(c, ds, batchSize)
	if err != nil {
		return nil, fmt.Errorf("static supplier: %w", err)
	}
	return Replay(Collect(s)), nil
}

// Replay creates a Supplier which yields the same batches
// for every epoch.
func Replay(l List) Supplier {
	return func(epoch int) (Stream, error) {
		return l.Stream(), nil
	}
}

// Reshuffled creates a Supplier which shuffles a copy of
// the dataset before every epoch and encodes it lazily.
//
// Epoch e is shuffled with seed+e, so a run is
// reproducible and a retried epoch sees the same order.
// If seed is 0, a fresh base seed is drawn once.
//
// The dataset is validated up front.
func Reshuffled(c anyvec.Creator, ds *Dataset, batchSize int, seed int64) (Supplier, error) {
	if _, err := Encode(c, ds, batchSize); err != nil {
		return nil, fmt.Errorf("reshuffled supplier: %w", err)
	}
	seed = freshSeed(seed)
	return func(epoch int) (Stream, error) {
		shuffled := ds.Slice(0, ds.Len())
		Shuffle(shuffled, freshSeed(seed+int64(epoch)))
		return Encode(c, shuffled, batchSize)
	}, nil
}
