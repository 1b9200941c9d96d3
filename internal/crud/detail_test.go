package crud

import (
	"context"
	"errors"
	"testing"
)

func loadedView(t *testing.T, gw *fakeGateway) *View[item, itemFilter] {
	t.Helper()
	v := newItemView(gw)
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestDetail_ConfirmDeleteClosesDetail(t *testing.T) {
	gw := &fakeGateway{items: []item{{ID: 7, Name: "Design board"}, {ID: 8}}}
	v := loadedView(t, gw)

	if _, err := v.Detail.Open(ServerKey(7)); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Detail.RequestDelete(ServerKey(7)); err != nil {
		t.Fatal(err)
	}
	k, err := v.ConfirmDelete(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if k != ServerKey(7) {
		t.Errorf("deleted %v", k)
	}
	if _, ok := v.Store.Get(ServerKey(7)); ok {
		t.Error("entity still in store")
	}
	if _, ok := v.Detail.Current(); ok {
		t.Error("detail still shows the deleted entity")
	}
	if _, ok := v.Detail.Pending(); ok {
		t.Error("confirmation still open")
	}
}

func TestDetail_FailedDeleteKeepsEntityAndConfirmation(t *testing.T) {
	gw := &fakeGateway{items: []item{{ID: 7}}}
	v := loadedView(t, gw)
	gw.failAll = errBackend

	v.Detail.RequestDelete(ServerKey(7))
	if _, err := v.ConfirmDelete(context.Background()); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if _, ok := v.Store.Get(ServerKey(7)); !ok {
		t.Error("entity removed before the server confirmed")
	}
	if _, ok := v.Detail.Pending(); !ok {
		t.Error("confirmation closed after failure")
	}
	if len(v.Banners.List()) != 1 {
		t.Error("failure raised no banner")
	}
}

func TestDetail_PlaceholderDeleteSkipsBackend(t *testing.T) {
	gw := &fakeGateway{}
	v := newItemView(gw)
	tmp := NewPlaceholder()
	v.Store.Upsert(item{Tmp: tmp, Name: "unsaved"})

	v.Detail.RequestDelete(tmp)
	if _, err := v.ConfirmDelete(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(gw.deletes) != 0 {
		t.Errorf("backend delete called for a placeholder: %v", gw.deletes)
	}
	if v.Store.Len() != 0 {
		t.Error("placeholder not removed")
	}
}

func TestDetail_DeleteOfVanishedEntitySucceeds(t *testing.T) {
	gw := &fakeGateway{}
	v := newItemView(gw)
	v.Store.Upsert(item{ID: 4})

	v.Detail.RequestDelete(ServerKey(4))
	if _, err := v.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if v.Store.Len() != 0 {
		t.Error("entity kept")
	}
}

func TestDetail_CancelDeleteKeepsEntity(t *testing.T) {
	gw := &fakeGateway{items: []item{{ID: 1}}}
	v := loadedView(t, gw)
	v.Detail.RequestDelete(ServerKey(1))
	v.Detail.CancelDelete()

	if _, err := v.ConfirmDelete(context.Background()); !errors.Is(err, ErrNothingPending) {
		t.Errorf("expected ErrNothingPending, got %v", err)
	}
	if v.Store.Len() != 1 || len(gw.deletes) != 0 {
		t.Error("cancelled delete had an effect")
	}
}

func TestDetail_AdjustIsVisibleAndDirtyUntilFlush(t *testing.T) {
	gw := &fakeGateway{items: []item{{ID: 2, Name: "a"}}}
	v := loadedView(t, gw)
	v.Detail.Open(ServerKey(2))

	if _, err := v.Detail.Adjust(ServerKey(2), func(it *item) { it.Name = "b" }); err != nil {
		t.Fatal(err)
	}
	cur, _ := v.Detail.Current()
	if cur.Name != "b" || !v.Detail.Dirty(ServerKey(2)) {
		t.Fatalf("inline edit not visible: %+v", cur)
	}
	if s := v.Snapshot(); !s.Dirty || s.Detail == nil {
		t.Errorf("snapshot misses dirty detail: %+v", s)
	}

	v.Detail.Close()
	if e, _ := v.Store.Get(ServerKey(2)); e.Name != "b" {
		t.Error("closing the detail discarded the inline edit")
	}

	_, err := v.Flush(context.Background(), "update", ServerKey(2), gw.Update)
	if err != nil {
		t.Fatal(err)
	}
	if v.Detail.Dirty(ServerKey(2)) {
		t.Error("still dirty after flush")
	}
	if gw.items[0].Name != "b" {
		t.Errorf("server copy not updated: %+v", gw.items[0])
	}
}

func TestDetail_ReloadDropsInlineEdits(t *testing.T) {
	gw := &fakeGateway{items: []item{{ID: 2, Name: "server"}}}
	v := loadedView(t, gw)

	v.Detail.Adjust(ServerKey(2), func(it *item) { it.Name = "local" })
	if !v.Detail.Dirty(ServerKey(2)) {
		t.Fatal("adjust did not mark dirty")
	}
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if v.Detail.Dirty(ServerKey(2)) || len(v.Detail.DirtyKeys()) != 0 {
		t.Error("still dirty after the server copy replaced the edit")
	}
	if e, _ := v.Store.Get(ServerKey(2)); e.Name != "server" {
		t.Errorf("expected server copy after reload, got %+v", e)
	}
	if s := v.Snapshot(); s.Dirty {
		t.Error("snapshot reports a dirty entity after reload")
	}
}

func TestDetail_FailedReloadKeepsInlineEdits(t *testing.T) {
	gw := &fakeGateway{items: []item{{ID: 2, Name: "server"}}}
	v := loadedView(t, gw)
	v.Detail.Adjust(ServerKey(2), func(it *item) { it.Name = "local" })

	gw.failAll = errBackend
	if err := v.Refresh(context.Background()); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if !v.Detail.Dirty(ServerKey(2)) {
		t.Error("failed reload cleared the dirty flag")
	}
	if e, _ := v.Store.Get(ServerKey(2)); e.Name != "local" {
		t.Errorf("failed reload lost the edit: %+v", e)
	}
}

func TestDetail_AdjustDuringFlushStaysDirty(t *testing.T) {
	gw := &fakeGateway{items: []item{{ID: 2, Name: "a"}}}
	v := loadedView(t, gw)
	v.Detail.Adjust(ServerKey(2), func(it *item) { it.Name = "b" })

	started, release := make(chan struct{}), make(chan struct{})
	persist := func(ctx context.Context, id int64, it item) (item, error) {
		close(started)
		<-release
		return gw.Update(ctx, id, it)
	}
	done := make(chan error, 1)
	go func() {
		_, err := v.Flush(context.Background(), "update", ServerKey(2), persist)
		done <- err
	}()

	<-started
	if _, err := v.Detail.Adjust(ServerKey(2), func(it *item) { it.Name = "c" }); err != nil {
		t.Fatal(err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if !v.Detail.Dirty(ServerKey(2)) {
		t.Error("edit made during the flush was marked clean")
	}
	if e, _ := v.Store.Get(ServerKey(2)); e.Name != "c" {
		t.Errorf("server response overwrote the newer edit: %+v", e)
	}

	if _, err := v.Flush(context.Background(), "update", ServerKey(2), gw.Update); err != nil {
		t.Fatal(err)
	}
	if v.Detail.Dirty(ServerKey(2)) || gw.items[0].Name != "c" {
		t.Errorf("second flush did not settle: dirty=%v server=%+v", v.Detail.Dirty(ServerKey(2)), gw.items[0])
	}
}

func TestDetail_FlushPlaceholderIsRejected(t *testing.T) {
	v := newItemView(&fakeGateway{})
	tmp := NewPlaceholder()
	v.Store.Upsert(item{Tmp: tmp})
	_, err := v.Flush(context.Background(), "update", tmp, func(context.Context, int64, item) (item, error) {
		t.Fatal("persist called")
		return item{}, nil
	})
	if !errors.Is(err, ErrNotPersisted) {
		t.Errorf("expected ErrNotPersisted, got %v", err)
	}
}

func TestDetail_ConcurrentConfirmIsBusy(t *testing.T) {
	gw := &fakeGateway{items: []item{{ID: 1}}, block: make(chan struct{}), started: make(chan struct{})}
	v := newItemView(gw)
	v.Store.Upsert(item{ID: 1})
	v.Detail.RequestDelete(ServerKey(1))

	done := make(chan error, 1)
	go func() {
		_, err := v.ConfirmDelete(context.Background())
		done <- err
	}()
	<-gw.started
	if _, err := v.ConfirmDelete(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	close(gw.block)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if len(gw.deletes) != 1 {
		t.Errorf("expected one backend delete, got %d", len(gw.deletes))
	}
}
