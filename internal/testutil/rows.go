package testutil

import (
	"slices"
	"sync"
)

// RowSequence issues row identities 1, 2, 3, ... and records every value it
// handed out. It satisfies builder.Sequencer.
//
// A scenario that runs twice against sequences created the same way sees
// the same identities, which keeps traces byte-stable.
type RowSequence struct {
	mu     sync.Mutex
	issued []int64
}

// NewRowSequence returns an empty sequence.
func NewRowSequence() *RowSequence {
	return &RowSequence{}
}

// Next issues the next identity.
func (s *RowSequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := int64(len(s.issued)) + 1
	s.issued = append(s.issued, id)
	return id
}

// Issued returns the identities handed out so far, oldest first.
func (s *RowSequence) Issued() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.issued)
}

// Reset forgets every issued identity; the next call to Next returns 1.
func (s *RowSequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued = nil
}
