package crud

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("entity not found")
	ErrBusy     = errors.New("operation already in progress")
	ErrClosed   = errors.New("view unmounted")
)

// KeyFunc extracts the store key of an entity.
type KeyFunc[T any] func(T) Key

// Lister fetches the full list of one entity type.
type Lister[T any] func(ctx context.Context) ([]T, error)

// Store is the per-view in-memory list of one entity type. It keeps
// insertion order. Once closed every write is dropped so that results
// arriving after the view went away cannot touch it.
type Store[T any] struct {
	keyOf    KeyFunc[T]
	mu       sync.RWMutex
	items    []T
	loaded   bool
	closed   bool
	onRemove []func(Key)
}

func NewStore[T any](keyOf KeyFunc[T], items ...T) *Store[T] {
	s := &Store[T]{keyOf: keyOf}
	for _, it := range items {
		s.upsertLocked(it)
	}
	return s
}

// Load replaces the whole list with what fetch returns. On error the
// previous list stays as it was.
func (s *Store[T]) Load(ctx context.Context, fetch Lister[T]) error {
	items, err := fetch(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.items = s.items[:0:0]
	for _, it := range items {
		s.upsertLocked(it)
	}
	s.loaded = true
	return nil
}

func (s *Store[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Upsert replaces the entity with the same key or appends it.
func (s *Store[T]) Upsert(e T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.upsertLocked(e)
}

func (s *Store[T]) upsertLocked(e T) {
	k := s.keyOf(e)
	for i := range s.items {
		if s.keyOf(s.items[i]) == k {
			s.items[i] = e
			return
		}
	}
	s.items = append(s.items, e)
}

// Reconcile swaps the entry stored under old for the server copy e,
// keeping its position. Without an entry under old it behaves like Upsert.
func (s *Store[T]) Reconcile(old Key, e T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if old != s.keyOf(e) {
		for i := range s.items {
			if s.keyOf(s.items[i]) == old {
				s.items[i] = e
				s.dedupeLocked(i)
				return
			}
		}
	}
	s.upsertLocked(e)
}

// dedupeLocked drops any other entry sharing the key of items[keep].
func (s *Store[T]) dedupeLocked(keep int) {
	k := s.keyOf(s.items[keep])
	out := s.items[:0]
	for i, it := range s.items {
		if i != keep && s.keyOf(it) == k {
			continue
		}
		out = append(out, it)
	}
	s.items = out
}

// Remove deletes the entity under k. Unknown keys are ignored.
func (s *Store[T]) Remove(k Key) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	idx := -1
	for i := range s.items {
		if s.keyOf(s.items[i]) == k {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	hooks := append([]func(Key){}, s.onRemove...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(k)
	}
	return true
}

// Modify applies fn to the stored copy under k.
func (s *Store[T]) Modify(k Key, fn func(*T)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for i := range s.items {
		if s.keyOf(s.items[i]) == k {
			fn(&s.items[i])
			if s.keyOf(s.items[i]) != k {
				panic("crud: Modify changed the entity key")
			}
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store[T]) Get(k Key) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if s.keyOf(it) == k {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// All returns a copy of the list in insertion order.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// OnRemove registers fn to run after an entity leaves the store.
func (s *Store[T]) OnRemove(fn func(Key)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemove = append(s.onRemove, fn)
}

func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Store[T]) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
