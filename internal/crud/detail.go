package crud

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrNothingPending = errors.New("no delete awaiting confirmation")
	ErrNotPersisted   = errors.New("entity has not been saved yet")
)

// Detail tracks the inspected entity, inline edits made from the detail
// panel that are ahead of the server, and the delete confirmation.
type Detail[T any] struct {
	store  *Store[T]
	delete func(ctx context.Context, id int64) error
	isGone func(error) bool
	log    *zap.Logger

	mu       sync.Mutex
	current  *Key
	pending  *Key
	deleting bool
	flushing map[Key]bool
	dirty    map[Key]bool
	// edits stamps every Adjust with a fresh seq so Flush can tell whether
	// the local copy moved while the request was out.
	edits map[Key]uint64
	seq   uint64
}

func newDetail[T any](store *Store[T], del func(context.Context, int64) error, isGone func(error) bool, log *zap.Logger) *Detail[T] {
	d := &Detail[T]{
		store:    store,
		delete:   del,
		isGone:   isGone,
		log:      log,
		flushing: map[Key]bool{},
		dirty:    map[Key]bool{},
		edits:    map[Key]uint64{},
	}
	store.OnRemove(d.forget)
	return d
}

func (d *Detail[T]) Open(k Key) (T, error) {
	e, ok := d.store.Get(k)
	if !ok {
		return e, fmt.Errorf("%s: %w", k, ErrNotFound)
	}
	d.mu.Lock()
	d.current = &k
	d.mu.Unlock()
	return e, nil
}

// Close hides the panel. Inline edits already written to the store stay.
func (d *Detail[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = nil
}

// Current reads the inspected entity through the store so inline edits show.
func (d *Detail[T]) Current() (T, bool) {
	d.mu.Lock()
	k := d.current
	d.mu.Unlock()
	if k == nil {
		var zero T
		return zero, false
	}
	return d.store.Get(*k)
}

// Adjust writes an inline edit straight into the store's local copy and
// marks the entity as ahead of the server until Flush.
func (d *Detail[T]) Adjust(k Key, fn func(*T)) (T, error) {
	if err := d.store.Modify(k, fn); err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", k, err)
	}
	d.mu.Lock()
	d.dirty[k] = true
	d.seq++
	d.edits[k] = d.seq
	d.mu.Unlock()
	e, _ := d.store.Get(k)
	return e, nil
}

func (d *Detail[T]) Dirty(k Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty[k]
}

func (d *Detail[T]) DirtyKeys() []Key {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Key, 0, len(d.dirty))
	for k := range d.dirty {
		out = append(out, k)
	}
	return out
}

// Flush persists the local copy under k through persist and reconciles the
// server response into the store. An Adjust that lands while the request is
// out wins: the entity stays dirty and keeps its local value.
func (d *Detail[T]) Flush(ctx context.Context, k Key, persist func(context.Context, int64, T) (T, error)) (T, error) {
	var zero T
	id, ok := k.ID()
	if !ok {
		return zero, ErrNotPersisted
	}

	d.mu.Lock()
	if d.flushing[k] {
		d.mu.Unlock()
		return zero, ErrBusy
	}
	d.flushing[k] = true
	stamp := d.edits[k]
	d.mu.Unlock()

	local, found := d.store.Get(k)
	if !found {
		d.mu.Lock()
		delete(d.flushing, k)
		d.mu.Unlock()
		return zero, fmt.Errorf("%s: %w", k, ErrNotFound)
	}

	saved, err := persist(ctx, id, local)

	d.mu.Lock()
	delete(d.flushing, k)
	stale := d.edits[k] != stamp
	if err == nil && !stale {
		delete(d.dirty, k)
	}
	d.mu.Unlock()

	if err != nil {
		if d.isGone != nil && d.isGone(err) {
			d.store.Remove(k)
			err = fmt.Errorf("%s: %w", k, ErrNotFound)
		}
		d.log.Warn("flush failed", zap.String("key", k.String()), zap.Error(err))
		return zero, err
	}
	if stale {
		d.log.Debug("edited during flush, keeping local copy", zap.String("key", k.String()))
		return saved, nil
	}
	d.store.Upsert(saved)
	return saved, nil
}

func (d *Detail[T]) RequestDelete(k Key) (T, error) {
	e, ok := d.store.Get(k)
	if !ok {
		return e, fmt.Errorf("%s: %w", k, ErrNotFound)
	}
	d.mu.Lock()
	d.pending = &k
	d.mu.Unlock()
	return e, nil
}

func (d *Detail[T]) CancelDelete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.deleting {
		d.pending = nil
	}
}

func (d *Detail[T]) Pending() (T, bool) {
	d.mu.Lock()
	k := d.pending
	d.mu.Unlock()
	if k == nil {
		var zero T
		return zero, false
	}
	return d.store.Get(*k)
}

// ConfirmDelete deletes the pending entity on the backend and then drops it
// from the store. Placeholders were never persisted and are only dropped
// locally. On failure the confirmation stays open.
func (d *Detail[T]) ConfirmDelete(ctx context.Context) (Key, error) {
	d.mu.Lock()
	if d.pending == nil {
		d.mu.Unlock()
		return Key{}, ErrNothingPending
	}
	if d.deleting {
		d.mu.Unlock()
		return Key{}, ErrBusy
	}
	k := *d.pending
	d.deleting = true
	d.mu.Unlock()

	var err error
	if id, ok := k.ID(); ok {
		err = d.delete(ctx, id)
		if err != nil && d.isGone != nil && d.isGone(err) {
			// already gone on the server; treat as deleted
			err = nil
		}
	}

	d.mu.Lock()
	d.deleting = false
	if err != nil {
		d.mu.Unlock()
		d.log.Warn("delete failed", zap.String("key", k.String()), zap.Error(err))
		return k, err
	}
	d.pending = nil
	d.mu.Unlock()

	d.store.Remove(k)
	return k, nil
}

func (d *Detail[T]) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleting || len(d.flushing) > 0
}

func (d *Detail[T]) forget(k Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil && *d.current == k {
		d.current = nil
	}
	if d.pending != nil && *d.pending == k && !d.deleting {
		d.pending = nil
	}
	delete(d.dirty, k)
	delete(d.edits, k)
}

// resetDirty runs after a reload replaced every local copy with the server's,
// so no inline edit is ahead of the server anymore. Flushes still in flight
// keep their slot.
func (d *Detail[T]) resetDirty() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.dirty)
}
