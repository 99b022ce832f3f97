package batch

// A Segmenter splits a slice into consecutive chunks.
//
// Every chunk has the segmenter's size except possibly the
// last, which holds whatever remains.
// A Segmenter cannot be restarted.
type Segmenter[T any] struct {
	src  []T
	size int
	pos  int
}

// Segment creates a Segmenter over src.
//
// It panics if size is not positive.
func Segment[T any](src []T, size int) *Segmenter[T] {
	if size <= 0 {
		panic("segment size must be positive")
	}
	return &Segmenter[T]{src: src, size: size}
}

// Next returns the next chunk.
// The second return value is false once the source is
// exhausted.
//
// Chunks alias the source slice.
func (s *Segmenter[T]) Next() ([]T, bool) {
	if s.pos >= len(s.src) {
		return nil, false
	}
	end := s.pos + s.size
	if end > len(s.src) {
		end = len(s.src)
	}
	chunk := s.src[s.pos:end:end]
	s.pos = end
	return chunk, true
}

// Remaining returns the number of elements which have not
// been returned yet.
func (s *Segmenter[T]) Remaining() int {
	return len(s.src) - s.pos
}
