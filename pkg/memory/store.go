package memory

import (
	"strings"
	"sync"
	"time"
)

// Store is the append-mostly collection of memory records for one session.
//
// Records are kept in arrival order, so CreatedAt is non-decreasing across
// the slice and an in-order scan visits the oldest records first. The store
// lives in process memory for the life of the session; it is guarded by a
// RWMutex so a timer-driven poll goroutine can read it safely.
//
// Example:
//
//	store := memory.NewStore(true)
//	stored := store.Add(&memory.Record{
//	    ID:       1,
//	    Category: memory.CategoryEvent,
//	    Content:  "job interview tomorrow",
//	})
type Store struct {
	// dedup enables near-duplicate suppression on Add.
	dedup bool

	// records holds all records in arrival order.
	records []*Record

	// mu protects concurrent access to records.
	mu sync.RWMutex
}

// NewStore creates an empty store.
//
// Parameters:
//   - dedupEnabled: When true, Add suppresses near-duplicate records.
func NewStore(dedupEnabled bool) *Store {
	return &Store{dedup: dedupEnabled}
}

// Add appends a record unless an existing record in the same category has
// near-duplicate content, in which case the add is a no-op.
//
// Two contents are near-duplicates when one is a case-insensitive substring
// of the other, in either direction.
//
// Returns true if the record was stored, false if it was suppressed.
func (s *Store) Add(rec *Record) bool {
	if rec == nil || rec.Category == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedup {
		for _, existing := range s.records {
			if existing.Category == rec.Category && nearDuplicate(existing.Content, rec.Content) {
				return false
			}
		}
	}

	s.records = append(s.records, rec)
	return true
}

// UnfollowedIn returns the records in the category that have not been
// followed up and are at least minAge old at the given time, oldest first.
//
// Re-invoking re-scans current state; the query does not consume the store.
func (s *Store) UnfollowedIn(cat Category, minAge time.Duration, now time.Time) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for _, rec := range s.records {
		if rec.Category != cat || rec.FollowedUp {
			continue
		}
		if now.Sub(rec.CreatedAt) < minAge {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// MarkFollowedUp sets the record's FollowedUp flag. The operation is
// idempotent, and marking a record the store does not own is a no-op.
//
// Returns true if the record belongs to the store.
func (s *Store) MarkFollowedUp(rec *Record) bool {
	if rec == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, owned := range s.records {
		if owned == rec || (rec.ID != 0 && owned.ID == rec.ID) {
			owned.FollowedUp = true
			rec.FollowedUp = true
			return true
		}
	}
	return false
}

// All returns a read-only snapshot of every stored record in arrival order.
//
// The snapshot holds copies; mutating it does not affect the store.
func (s *Store) All() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, len(s.records))
	for i, rec := range s.records {
		c := *rec
		out[i] = &c
	}
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// nearDuplicate reports whether one content is a case-insensitive substring
// of the other.
func nearDuplicate(a, b string) bool {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
