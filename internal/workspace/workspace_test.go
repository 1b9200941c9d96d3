package workspace

import (
	"context"
	"testing"
	"time"

	"dashkpis/internal/demo"
	"dashkpis/internal/models"

	"go.uber.org/zap"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	b, err := demo.Seeded()
	if err != nil {
		t.Fatal(err)
	}
	r := NewRegistry(b, time.Hour, zap.NewNop())
	t.Cleanup(r.Close)
	return r
}

func TestMountGetUnmount(t *testing.T) {
	r := newRegistry(t)
	w := r.Mount(context.Background(), models.User{ID: 1, Email: "leidy@dashkpis.local"})

	got, ok := r.Get(w.ID)
	if !ok || got != w {
		t.Fatal("mounted workspace not found")
	}
	if !r.Unmount(w.ID) {
		t.Fatal("unmount failed")
	}
	if _, ok := r.Get(w.ID); ok {
		t.Error("workspace still registered")
	}
	if !w.Tasks.Store.Closed() || !w.Inbox.Store.Closed() {
		t.Error("views not closed on unmount")
	}
	if r.Unmount(w.ID) {
		t.Error("second unmount reported true")
	}
}

func TestWorkspacesDoNotShareState(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	a := r.Mount(ctx, models.User{ID: 1})
	b := r.Mount(ctx, models.User{ID: 2})

	if err := a.KPIs.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if b.KPIs.Store.Len() != 0 {
		t.Error("loading one workspace filled another")
	}
}

func TestSweepDropsIdle(t *testing.T) {
	r := newRegistry(t)
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	old := r.Mount(context.Background(), models.User{ID: 1})
	now = now.Add(2 * time.Hour)
	fresh := r.Mount(context.Background(), models.User{ID: 2})

	if n := r.Sweep(time.Hour); n != 1 {
		t.Fatalf("swept %d", n)
	}
	if _, ok := r.Get(old.ID); ok {
		t.Error("idle workspace kept")
	}
	if _, ok := r.Get(fresh.ID); !ok {
		t.Error("fresh workspace dropped")
	}
}

func TestMountPollsNotifications(t *testing.T) {
	r := newRegistry(t)
	w := r.Mount(context.Background(), models.User{ID: 1})

	deadline := time.Now().Add(2 * time.Second)
	for w.Inbox.Unread() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if w.Inbox.Unread() != 1 {
		t.Errorf("unread = %d", w.Inbox.Unread())
	}
}
