package downloader

import (
	"sync/atomic"
)

// NameSequence hands out the numbers used in generated download filenames.
// It is owned by main and injected into the engine; the numbers only make
// filenames unique within one process lifetime, nothing depends on them.
type NameSequence struct {
	n atomic.Uint32
}

func NewNameSequence() *NameSequence {
	return &NameSequence{}
}

// Next returns the next number, starting at 1.
func (s *NameSequence) Next() uint32 {
	return s.n.Add(1)
}
