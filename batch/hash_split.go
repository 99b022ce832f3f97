package batch

import (
	"crypto/md5"
	"encoding/binary"
	"io"
	"math"
	"sort"
)

// HashSplit deterministically partitions a dataset, for
// example into training and validation samples.
//
// Each example lands on the left if the hash of its
// features falls below a cutoff, so the split does not
// depend on the order of the dataset.
// The leftRatio argument is the expected fraction of
// examples that end up on the left.
//
// The dataset is re-ordered as needed.
func HashSplit(ds *Dataset, leftRatio float64) (left, right *Dataset) {
	if leftRatio <= 0 {
		return ds.Slice(0, 0), ds
	} else if leftRatio >= 1 {
		return ds, ds.Slice(0, 0)
	}
	cutoff := hashCutoff(leftRatio)
	hashes := make([][]byte, ds.Len())
	for i, f := range ds.Features {
		hashes[i] = exampleHash(f)
	}
	insertIdx := 0
	for i := range hashes {
		if compareHashes(hashes[i], cutoff) < 0 {
			ds.Swap(insertIdx, i)
			hashes[insertIdx], hashes[i] = hashes[i], hashes[insertIdx]
			insertIdx++
		}
	}
	splitIdx := sort.Search(ds.Len(), func(i int) bool {
		return compareHashes(hashes[i], cutoff) >= 0
	})
	return ds.Slice(0, splitIdx), ds.Slice(splitIdx, ds.Len())
}

func exampleHash(e Example) []byte {
	h := md5.New()
	temp := make([]byte, 8)
	writeFloatBits(h, temp, float64(e.Kind()))
	switch e := e.(type) {
	case FlatExample:
		for _, x := range e {
			writeFloatBits(h, temp, x)
		}
	case SequenceExample:
		writeRows(h, temp, e)
	case MatrixExample:
		writeRows(h, temp, e)
	}
	return h.Sum(nil)
}

func writeRows(w io.Writer, temp []byte, rows [][]float64) {
	for _, row := range rows {
		writeFloatBits(w, temp, float64(len(row)))
		for _, x := range row {
			writeFloatBits(w, temp, x)
		}
	}
}

func hashCutoff(ratio float64) []byte {
	res := make([]byte, 8)
	for i := range res {
		ratio *= 256
		value := int(ratio)
		ratio -= float64(value)
		if value == 256 {
			value = 255
		}
		res[i] = byte(value)
	}
	return res
}

func compareHashes(h1, h2 []byte) int {
	max := len(h1)
	if len(h2) > max {
		max = len(h2)
	}
	for i := 0; i < max; i++ {
		var h1Val, h2Val byte
		if i < len(h1) {
			h1Val = h1[i]
		}
		if i < len(h2) {
			h2Val = h2[i]
		}
		if h1Val < h2Val {
			return -1
		} else if h1Val > h2Val {
			return 1
		}
	}
	return 0
}

func writeFloatBits(w io.Writer, temp []byte, val float64) {
	binary.BigEndian.PutUint64(temp, math.Float64bits(val))
	w.Write(temp)
}
