package repository

import (
	"strconv"
	"sync"
)

// Sequence generates the dense decimal string IDs used by every entity
// type except seats (seats derive a composite key from their position).
// Each repository owns one. After a bulk load the sequence is reseeded
// to max existing numeric ID + 1, so fresh creations never collide with
// loaded rows even when earlier rows were deleted.
type Sequence struct {
	mu   sync.Mutex
	next int64
}

// Next returns the current counter value as a decimal string and
// advances it.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strconv.FormatInt(s.next, 10)
	s.next++
	return id
}

// Reseed resets the counter to zero and re-derives it from the loaded
// IDs: one past the highest numeric ID seen. Non-numeric IDs are
// ignored.
func (s *Sequence) Reseed(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = 0
	for _, id := range ids {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n >= s.next {
			s.next = n + 1
		}
	}
}
