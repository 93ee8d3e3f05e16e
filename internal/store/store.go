// Package store holds the in-memory, observable notification collection.
// It is the single source of truth: the connection layer, the bootstrap
// aggregator and the mutation gateway all write through its methods, and the
// presentation layer only ever reads from it.
package store

import (
	"sort"
	"sync"

	"eduboard/internal/domain"
)

// Observer receives a consistent (records, unread) pair synchronously after
// every mutation. The slice is a private copy; observers may retain it.
type Observer func(records []domain.Notification, unread int)

// Store keeps notification records ordered newest-first with an unread
// counter maintained in lock-step with the record set. All methods are safe
// for concurrent use; a single mutex guards both the records and the counter
// so observers never see them inconsistent.
type Store struct {
	mu        sync.Mutex
	records   []domain.Notification // sorted by CreatedAt descending
	unread    int
	closed    bool
	nextObs   int
	observers map[int]Observer
}

func New() *Store {
	return &Store{observers: make(map[int]Observer)}
}

// Seed replaces the whole collection and recomputes the unread counter from
// scratch. It is meant to be called once, with the bootstrap snapshot;
// calling it after push traffic has started discards that traffic.
func (s *Store) Seed(records []domain.Notification) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.records = make([]domain.Notification, len(records))
	copy(s.records, records)
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].CreatedAt.After(s.records[j].CreatedAt)
	})
	s.unread = 0
	for _, r := range s.records {
		if !r.IsRead {
			s.unread++
		}
	}
	s.notifyLocked()
}

// Upsert inserts rec or replaces the record with the same id, keeping the
// newest-first order. A replacement that would turn a read record unread is
// rejected with ErrReadRegression; that transition only exists on the
// explicit Restore path.
func (s *Store) Upsert(rec domain.Notification) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if i := s.indexOf(rec.ID); i >= 0 {
		old := s.records[i]
		if old.IsRead && !rec.IsRead {
			s.mu.Unlock()
			return ErrReadRegression
		}
		if !old.IsRead && rec.IsRead {
			s.unread--
		}
		s.records = append(s.records[:i], s.records[i+1:]...)
	} else if !rec.IsRead {
		s.unread++
	}
	s.insertSorted(rec)
	s.notifyLocked()
	return nil
}

// Restore unconditionally replaces (or re-inserts) a record, including the
// read-to-unread transition Upsert forbids. The mutation gateway uses it to
// revert optimistic changes after a failed REST call.
func (s *Store) Restore(rec domain.Notification) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if i := s.indexOf(rec.ID); i >= 0 {
		if !s.records[i].IsRead {
			s.unread--
		}
		s.records = append(s.records[:i], s.records[i+1:]...)
	}
	if !rec.IsRead {
		s.unread++
	}
	s.insertSorted(rec)
	s.notifyLocked()
}

// MarkRead flags the record as read and reports whether anything changed.
// Absent or already-read ids are a no-op, not an error.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	i := s.indexOf(id)
	if i < 0 || s.records[i].IsRead {
		s.mu.Unlock()
		return false
	}
	s.records[i].IsRead = true
	s.unread--
	s.notifyLocked()
	return true
}

// MarkAllRead flags every record as read. Idempotent.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.unread == 0 {
		s.mu.Unlock()
		return
	}
	for i := range s.records {
		s.records[i].IsRead = true
	}
	s.unread = 0
	s.notifyLocked()
}

// Remove deletes the record and reports whether it was present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	if !s.records[i].IsRead {
		s.unread--
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	s.notifyLocked()
	return true
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (domain.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.records[i], true
	}
	return domain.Notification{}, false
}

// Snapshot returns a copy of the record sequence, newest first.
func (s *Store) Snapshot() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// UnreadCount returns the number of unread records.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Subscribe registers an observer and returns its unsubscribe func.
func (s *Store) Subscribe(obs Observer) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = obs
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Close disposes the store: later mutations become no-ops so in-flight work
// completing after teardown is discarded instead of applied.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.observers = make(map[int]Observer)
	s.mu.Unlock()
}

func (s *Store) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) insertSorted(rec domain.Notification) {
	i := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].CreatedAt.Before(rec.CreatedAt)
	})
	s.records = append(s.records, domain.Notification{})
	copy(s.records[i+1:], s.records[i:])
	s.records[i] = rec
}

func (s *Store) snapshotLocked() []domain.Notification {
	out := make([]domain.Notification, len(s.records))
	copy(out, s.records)
	return out
}

// notifyLocked snapshots under the lock, releases it, then calls observers so
// a callback can re-enter the store without deadlocking. Must be called with
// s.mu held; returns with it released.
func (s *Store) notifyLocked() {
	snapshot := s.snapshotLocked()
	unread := s.unread
	observers := make([]Observer, 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()
	for _, obs := range observers {
		obs(snapshot, unread)
	}
}
