package batch

import "math/rand"

// Shuffle shuffles a dataset in place, keeping every
// label with its example.
//
// The shuffle is determined entirely by seed.
// If seed is 0, a fresh seed is drawn from the
// process-wide random source.
// The seed that was actually used is returned, so that a
// shuffle can be reproduced.
func Shuffle(ds *Dataset, seed int64) int64 {
	seed = freshSeed(seed)
	gen := rand.New(rand.NewSource(seed))
	for i := 0; i < ds.Len(); i++ {
		j := i + gen.Intn(ds.Len()-i)
		ds.Swap(i, j)
	}
	return seed
}

func freshSeed(seed int64) int64 {
	for seed == 0 {
		seed = rand.Int63()
	}
	return seed
}
