package fleet

import (
	"sync"

	"fleetmon/internal/models"
)

// Store is an append-only, insertion-ordered collection of telemetry records
// for one fleet snapshot. It is the sole owner of the records it holds: there
// is no removal, no lookup-by-id and no sorting. Not safe for concurrent use;
// see ConcurrentStore.
type Store struct {
	records []models.Reader
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends one fully-constructed record. It never fails.
func (s *Store) Add(r models.Reader) {
	s.records = append(s.records, r)
}

// All returns the current contents in insertion order. The returned slice is
// a read-only view; callers must not modify it.
func (s *Store) All() []models.Reader {
	return s.records
}

// Len reports the number of records held.
func (s *Store) Len() int {
	return len(s.records)
}

// ConcurrentStore holds mutable TelemetryCell records behind a membership
// lock, so appends can run concurrently with aggregation. The lock guards
// only the record list: All copies the reference list under the lock and
// releases it before the caller touches any record, so a long aggregation
// never blocks an append and vice versa. Per-field consistency of the
// returned records is the business of each record's own lock.
type ConcurrentStore struct {
	mu      sync.Mutex
	records []*models.TelemetryCell
}

// NewConcurrentStore returns an empty concurrent store.
func NewConcurrentStore() *ConcurrentStore {
	return &ConcurrentStore{}
}

// Add appends one record. Safe to call from any goroutine, including while an
// aggregation is in flight.
func (s *ConcurrentStore) Add(c *models.TelemetryCell) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, c)
}

// All returns an insertion-ordered snapshot of the membership list. The list
// itself is a copy taken under the store lock; the records it points at stay
// live and may change after the call returns.
func (s *ConcurrentStore) All() []models.Reader {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Reader, len(s.records))
	for i, c := range s.records {
		out[i] = c
	}
	return out
}

// Cells returns the same snapshot as All with the concrete record type, for
// callers that need the setters (updaters).
func (s *ConcurrentStore) Cells() []*models.TelemetryCell {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.TelemetryCell, len(s.records))
	copy(out, s.records)
	return out
}

// Len reports the number of records held.
func (s *ConcurrentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
