package crud

import (
	"context"
	"errors"
	"sync/atomic"

	"dashkpis/internal/validation"

	"go.uber.org/zap"
)

// Config describes one entity type to NewView.
type Config[T any, F any] struct {
	Name     string
	Key      KeyFunc[T]
	Gateway  Gateway[T]
	Defaults func() T
	Validate func(*T) error
	Clone    func(T) T
	Filter   func([]T, F) []T
	// IsGone recognises backend errors meaning the entity no longer exists.
	IsGone func(error) bool
	Logger *zap.Logger
}

// View is the reusable CRUD-view pattern: a store, a filter, one form and
// one detail panel, plus the error banners of the failed operations.
type View[T any, F any] struct {
	Name    string
	Store   *Store[T]
	Form    *Form[T]
	Detail  *Detail[T]
	Banners *Banners

	gw      Gateway[T]
	filter  func([]T, F) []T
	log     *zap.Logger
	loading atomic.Bool
}

func NewView[T any, F any](cfg Config[T, F]) *View[T, F] {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("view", cfg.Name))
	clone := cfg.Clone
	if clone == nil {
		clone = func(v T) T { return v }
	}
	validate := cfg.Validate
	if validate == nil {
		validate = func(*T) error { return nil }
	}
	store := NewStore(cfg.Key)
	return &View[T, F]{
		Name:  cfg.Name,
		Store: store,
		Form: &Form[T]{
			store:    store,
			gw:       cfg.Gateway,
			defaults: cfg.Defaults,
			validate: validate,
			clone:    clone,
			isGone:   cfg.IsGone,
			log:      log,
			state:    FormClosed,
		},
		Detail:  newDetail(store, cfg.Gateway.Delete, cfg.IsGone, log),
		Banners: &Banners{},
		gw:      cfg.Gateway,
		filter:  cfg.Filter,
		log:     log,
	}
}

// Refresh reloads the list from the backend. A failed load keeps the
// last-known-good list and raises a banner.
func (v *View[T, F]) Refresh(ctx context.Context) error {
	return v.Load(ctx, v.gw.List)
}

// Load is Refresh with a custom fetch, for views that assemble their list
// from several endpoints.
func (v *View[T, F]) Load(ctx context.Context, fetch Lister[T]) error {
	if !v.loading.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer v.loading.Store(false)

	err := v.Store.Load(ctx, fetch)
	if errors.Is(err, ErrClosed) {
		return err
	}
	if err == nil {
		// the reload replaced any inline edit with the server's copy
		v.Detail.resetDirty()
	}
	return v.Fail("load", err)
}

func (v *View[T, F]) Filtered(f F) []T {
	items := v.Store.All()
	if v.filter == nil {
		return items
	}
	return v.filter(items, f)
}

func (v *View[T, F]) Save(ctx context.Context) (T, error) {
	saved, err := v.Form.Save(ctx)
	return saved, v.Fail("save", err)
}

func (v *View[T, F]) ConfirmDelete(ctx context.Context) (Key, error) {
	k, err := v.Detail.ConfirmDelete(ctx)
	return k, v.Fail("delete", err)
}

func (v *View[T, F]) Flush(ctx context.Context, op string, k Key, persist func(context.Context, int64, T) (T, error)) (T, error) {
	saved, err := v.Detail.Flush(ctx, k, persist)
	return saved, v.Fail(op, err)
}

// Fail turns a failed backend operation into a banner and logs it.
// Validation, busy and state errors are returned untouched: the caller
// renders those inline.
func (v *View[T, F]) Fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := validation.AsFieldErrors(err); ok {
		return err
	}
	if errors.Is(err, ErrBusy) || errors.Is(err, ErrFormClosed) ||
		errors.Is(err, ErrNothingPending) || errors.Is(err, ErrNotPersisted) {
		return err
	}
	if v.Store.Closed() {
		return ErrClosed
	}
	v.Banners.Push(op, err)
	v.log.Error("operation failed", zap.String("op", op), zap.Error(err))
	return err
}

// Busy reports whether any request of this view is in flight; renderers
// disable the matching actions meanwhile.
func (v *View[T, F]) Busy() bool {
	return v.loading.Load() || v.Form.State() == FormSubmitting || v.Detail.Busy()
}

// Unmount tears the view down. Requests still in flight finish against a
// closed store and change nothing.
func (v *View[T, F]) Unmount() {
	v.Store.Close()
	v.Form.Cancel()
	v.Detail.Close()
}

// Snapshot is the serialisable state a renderer needs besides the list.
type Snapshot[T any] struct {
	FormState FormState `json:"form_state"`
	Draft     *Draft[T] `json:"draft,omitempty"`
	FormError string    `json:"form_error,omitempty"`
	Detail    *T        `json:"detail,omitempty"`
	Dirty     bool      `json:"detail_dirty,omitempty"`
	Pending   *T        `json:"pending_delete,omitempty"`
	Banners   []Banner  `json:"banners"`
	Busy      bool      `json:"busy"`
}

func (v *View[T, F]) Snapshot() Snapshot[T] {
	s := Snapshot[T]{
		FormState: v.Form.State(),
		Banners:   v.Banners.List(),
		Busy:      v.Busy(),
	}
	if d, open := v.Form.Draft(); open {
		s.Draft = &d
		if err := v.Form.Err(); err != nil {
			s.FormError = err.Error()
		}
	}
	if cur, ok := v.Detail.Current(); ok {
		s.Detail = &cur
		s.Dirty = v.Detail.Dirty(v.Store.keyOf(cur))
	}
	if p, ok := v.Detail.Pending(); ok {
		s.Pending = &p
	}
	return s
}
