// Package poll runs a fetch on a fixed interval without ever overlapping
// two fetches.
package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type FetchFunc func(ctx context.Context) error

// Poller calls its fetch every interval. A tick that arrives while the
// previous fetch is still running is skipped and counted.
type Poller struct {
	interval time.Duration
	fetch    FetchFunc
	log      *zap.Logger

	inflight atomic.Bool
	runs     atomic.Int64
	skipped  atomic.Int64

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool
}

func New(interval time.Duration, fetch FetchFunc, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{interval: interval, fetch: fetch, log: log}
}

// Start fires one fetch right away and then one per interval until ctx is
// done or Stop is called. Calling Start twice, or after Stop, does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.Tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Tick(ctx)
			}
		}
	}()
	p.log.Debug("poller started", zap.Duration("interval", p.interval))
}

// Tick launches one fetch unless the previous one is still running or the
// poller was stopped. It reports whether a fetch was launched.
func (p *Poller) Tick(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	if !p.inflight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		return false
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inflight.Store(false)
		p.runs.Add(1)
		if err := p.fetch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.log.Warn("poll failed", zap.Error(err))
		}
	}()
	return true
}

// Stop cancels the loop and any running fetch and waits for both. Later
// ticks are refused, so nothing joins the wait group once Stop waits on it.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *Poller) Runs() int64 { return p.runs.Load() }

func (p *Poller) Skipped() int64 { return p.skipped.Load() }

func (p *Poller) InFlight() bool { return p.inflight.Load() }
