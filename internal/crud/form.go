package crud

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var ErrFormClosed = errors.New("form is not open")

// Gateway is the backend side of one entity type.
type Gateway[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, id int64, v T) (T, error)
	Delete(ctx context.Context, id int64) error
}

type FormState string

const (
	FormClosed     FormState = "closed"
	FormOpen       FormState = "open"
	FormSubmitting FormState = "submitting"
)

type DraftKind string

const (
	DraftCreate DraftKind = "create"
	DraftEdit   DraftKind = "edit"
)

// Draft is entity data held by the form until the backend confirms it.
// Create drafts carry a placeholder key, edit drafts the server key.
type Draft[T any] struct {
	Kind  DraftKind `json:"kind"`
	Key   Key       `json:"key"`
	Value T         `json:"value"`
}

// Form owns the single draft of a view across the create and edit flows.
type Form[T any] struct {
	store    *Store[T]
	gw       Gateway[T]
	defaults func() T
	validate func(*T) error
	clone    func(T) T
	isGone   func(error) bool
	log      *zap.Logger

	mu    sync.Mutex
	state FormState
	draft Draft[T]
	err   error
}

func (f *Form[T]) OpenCreate() Draft[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = Draft[T]{Kind: DraftCreate, Key: NewPlaceholder(), Value: f.defaults()}
	f.state = FormOpen
	f.err = nil
	return f.draft
}

func (f *Form[T]) OpenEdit(e T) Draft[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = Draft[T]{Kind: DraftEdit, Key: f.store.keyOf(e), Value: f.clone(e)}
	f.state = FormOpen
	f.err = nil
	return f.draft
}

// Edit mutates the open draft. The key cannot be changed through it.
func (f *Form[T]) Edit(fn func(*T)) (Draft[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case FormClosed:
		return Draft[T]{}, ErrFormClosed
	case FormSubmitting:
		return f.draft, ErrBusy
	}
	fn(&f.draft.Value)
	return f.draft, nil
}

func (f *Form[T]) Draft() (Draft[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft, f.state != FormClosed
}

func (f *Form[T]) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err is the error of the last failed save, if the form is still open.
func (f *Form[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Form[T]) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		// the in-flight save still reconciles into the store; only the form goes away
		f.state = FormClosed
		return
	}
	f.state = FormClosed
	f.draft = Draft[T]{}
	f.err = nil
}

// Save validates the draft and submits it: create for placeholder keys,
// update otherwise. On success the server copy replaces the draft's entry
// in the store and the form closes. On failure the form stays open.
func (f *Form[T]) Save(ctx context.Context) (T, error) {
	var zero T

	f.mu.Lock()
	switch f.state {
	case FormClosed:
		f.mu.Unlock()
		return zero, ErrFormClosed
	case FormSubmitting:
		f.mu.Unlock()
		return zero, ErrBusy
	}
	d := f.draft
	d.Value = f.clone(d.Value)
	if err := f.validate(&d.Value); err != nil {
		f.err = err
		f.mu.Unlock()
		return zero, err
	}
	f.draft.Value = d.Value
	f.state = FormSubmitting
	f.err = nil
	f.mu.Unlock()

	var (
		saved T
		err   error
	)
	if id, ok := d.Key.ID(); ok {
		saved, err = f.gw.Update(ctx, id, d.Value)
		if err != nil && f.isGone != nil && f.isGone(err) {
			f.store.Remove(d.Key)
			err = fmt.Errorf("%s: %w", d.Key, ErrNotFound)
		}
	} else {
		saved, err = f.gw.Create(ctx, d.Value)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		if f.state == FormSubmitting {
			f.state = FormOpen
		}
		f.err = err
		f.log.Warn("save failed", zap.String("key", d.Key.String()), zap.Error(err))
		return zero, err
	}

	f.store.Reconcile(d.Key, saved)
	if f.state == FormSubmitting {
		f.state = FormClosed
		f.draft = Draft[T]{}
	}
	return saved, nil
}
