package batch

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown, consumed or expired batch ids.
var ErrNotFound = errors.New("batch not found")

type storedBatch struct {
	batch   *LinkBatch
	created time.Time
}

// Store holds batches in memory under opaque ids between sorting and probing.
// Entries live until consumed, deleted or older than the TTL.
type Store struct {
	items map[string]storedBatch
	now   func() time.Time
	ttl   time.Duration
	mu    sync.Mutex
}

// NewStore creates a store. A non-positive ttl keeps batches until consumed.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		items: make(map[string]storedBatch),
		now:   time.Now,
		ttl:   ttl,
	}
}

// Create stores b and returns its new id.
func (s *Store) Create(b *LinkBatch) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[id] = storedBatch{batch: b, created: s.now()}

	return id
}

// Get returns the batch without removing it.
func (s *Store) Get(id string) (*LinkBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lookup(id)
}

// Consume returns the batch and removes it.
func (s *Store) Consume(id string) (*LinkBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	delete(s.items, id)

	return b, nil
}

// Delete removes the batch and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[id]
	delete(s.items, id)

	return ok
}

// Sweep drops expired batches and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for id, item := range s.items {
		if s.expired(item) {
			delete(s.items, id)
			removed++
		}
	}

	return removed
}

// Len returns the number of stored batches, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// lookup expects s.mu to be held.
func (s *Store) lookup(id string) (*LinkBatch, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	if s.expired(item) {
		delete(s.items, id)
		return nil, ErrNotFound
	}

	return item.batch, nil
}

func (s *Store) expired(item storedBatch) bool {
	return s.ttl > 0 && s.now().Sub(item.created) > s.ttl
}
