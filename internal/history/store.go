// Package history keeps the bounded per-product log of past price records.
package history

import (
	"errors"
	"sync"

	"pricewatch/internal/models"
)

// MaxRecords is the maximum number of records kept per product. The oldest
// record is evicted first once the cap is exceeded.
const MaxRecords = 100

// ErrInvalidRecord is returned when a caller tries to append a record with no
// parsed price. Callers must filter failed observations before appending.
var ErrInvalidRecord = errors.New("record has no price")

// Snapshot is the flat serializable form of the full history, suitable for a
// persistence collaborator. The store does not dictate the storage format.
type Snapshot map[models.ProductID][]models.PriceRecord

// Store holds per-product price histories in insertion order. All methods are
// safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[models.ProductID][]models.PriceRecord
}

// New creates an empty store.
func New() *Store {
	return &Store{records: make(map[models.ProductID][]models.PriceRecord)}
}

// FromSnapshot creates a store seeded with previously persisted history.
// Sequences longer than MaxRecords are trimmed to their newest entries.
func FromSnapshot(snap Snapshot) *Store {
	s := New()
	for id, recs := range snap {
		if n := len(recs); n > MaxRecords {
			recs = recs[n-MaxRecords:]
		}
		cp := make([]models.PriceRecord, len(recs))
		copy(cp, recs)
		s.records[id] = cp
	}
	return s
}

// Get returns the ordered record sequence for a product. An unknown product
// yields an empty sequence, never an error. The returned slice is a copy.
func (s *Store) Get(id models.ProductID) []models.PriceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[id]
	cp := make([]models.PriceRecord, len(recs))
	copy(cp, recs)
	return cp
}

// Last returns the most recently appended record for a product, if any.
func (s *Store) Last(id models.ProductID) (models.PriceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[id]
	if len(recs) == 0 {
		return models.PriceRecord{}, false
	}
	return recs[len(recs)-1], true
}

// Append adds a record to the tail of its product's sequence, evicting from
// the head once the sequence exceeds MaxRecords. Records without a price are
// rejected with ErrInvalidRecord.
func (s *Store) Append(rec models.PriceRecord) error {
	if rec.Price == nil {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs := append(s.records[rec.ProductID], rec)
	if n := len(recs); n > MaxRecords {
		// Copy into a fresh slice so evicted entries do not pin the old array
		trimmed := make([]models.PriceRecord, MaxRecords)
		copy(trimmed, recs[n-MaxRecords:])
		recs = trimmed
	}
	s.records[rec.ProductID] = recs
	return nil
}

// Len returns the number of records held for a product.
func (s *Store) Len(id models.ProductID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[id])
}

// Size returns the total number of records held across all products.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, recs := range s.records {
		total += len(recs)
	}
	return total
}

// Snapshot returns a deep copy of the full history for persistence.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(Snapshot, len(s.records))
	for id, recs := range s.records {
		cp := make([]models.PriceRecord, len(recs))
		copy(cp, recs)
		snap[id] = cp
	}
	return snap
}
