package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestTick_SkipsWhilePending(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	p := New(time.Hour, func(ctx context.Context) error {
		started <- struct{}{}
		<-release
		return nil
	}, zap.NewNop())

	ctx := context.Background()
	if !p.Tick(ctx) {
		t.Fatal("first tick skipped")
	}
	<-started
	if p.Tick(ctx) || p.Tick(ctx) {
		t.Fatal("tick launched while a fetch was pending")
	}
	if p.Skipped() != 2 {
		t.Errorf("skipped = %d", p.Skipped())
	}

	close(release)
	for deadline := time.Now().Add(time.Second); p.InFlight(); {
		if time.Now().After(deadline) {
			t.Fatal("fetch never finished")
		}
		time.Sleep(time.Millisecond)
	}
	if !p.Tick(ctx) {
		t.Error("tick after completion skipped")
	}
	<-started
	p.Stop()
	if p.Runs() != 2 {
		t.Errorf("runs = %d", p.Runs())
	}
}

func TestTick_RefusedAfterStop(t *testing.T) {
	var calls atomic.Int32
	p := New(time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zap.NewNop())

	p.Stop()
	if p.Tick(context.Background()) {
		t.Error("tick launched a fetch after Stop")
	}
	p.Start(context.Background())
	p.Stop()
	if calls.Load() != 0 || p.Runs() != 0 {
		t.Errorf("stopped poller fetched: calls=%d runs=%d", calls.Load(), p.Runs())
	}
	if p.Skipped() != 0 {
		t.Errorf("refused tick counted as skipped: %d", p.Skipped())
	}
}

func TestStart_NeverOverlaps(t *testing.T) {
	var active, maxActive, calls atomic.Int32
	p := New(2*time.Millisecond, func(ctx context.Context) error {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		calls.Add(1)
		select {
		case <-time.After(15 * time.Millisecond):
		case <-ctx.Done():
		}
		active.Add(-1)
		return nil
	}, zap.NewNop())

	p.Start(context.Background())
	time.Sleep(80 * time.Millisecond)
	p.Stop()

	if maxActive.Load() != 1 {
		t.Errorf("fetches overlapped: max concurrent = %d", maxActive.Load())
	}
	if calls.Load() == 0 {
		t.Error("poller never fetched")
	}
	if p.Skipped() == 0 {
		t.Error("expected skipped ticks with a slow fetch")
	}
}

func TestStop_CancelsRunningFetch(t *testing.T) {
	cancelled := make(chan struct{})
	p := New(time.Hour, func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}, zap.NewNop())

	p.Start(context.Background())
	p.Stop()

	select {
	case <-cancelled:
	default:
		t.Fatal("running fetch was not cancelled")
	}
}
