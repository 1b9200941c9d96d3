package views

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"dashkpis/internal/crud"
	"dashkpis/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultNotificationLimit caps one poll.
const DefaultNotificationLimit = 20

func NotificationKey(n models.Notification) crud.Key { return crud.ServerKey(n.ID) }

// NotificationCenter holds the signed-in user's notifications and their
// per-type config. Poll is meant to be driven by a poll.Poller.
type NotificationCenter struct {
	Store   *crud.Store[models.Notification]
	Banners *crud.Banners

	backend  Backend
	userID   int64
	limit    int
	log      *zap.Logger
	fetching atomic.Bool

	mu     sync.Mutex
	config []models.NotificationConfig
}

func NewNotificationCenter(b Backend, userID int64, log *zap.Logger) *NotificationCenter {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationCenter{
		Store:   crud.NewStore(NotificationKey),
		Banners: &crud.Banners{},
		backend: b,
		userID:  userID,
		limit:   DefaultNotificationLimit,
		log:     log.With(zap.String("view", "notifications"), zap.Int64("user_id", userID)),
	}
}

// Poll refreshes the list. It returns crud.ErrBusy without calling the
// backend while a previous fetch is still running.
func (n *NotificationCenter) Poll(ctx context.Context) error {
	if !n.fetching.CompareAndSwap(false, true) {
		return crud.ErrBusy
	}
	defer n.fetching.Store(false)

	err := n.Store.Load(ctx, func(ctx context.Context) ([]models.Notification, error) {
		return n.backend.Notifications(ctx, n.userID, models.NotificationQuery{Limit: n.limit})
	})
	return n.fail("load", err)
}

func (n *NotificationCenter) fail(op string, err error) error {
	if err == nil || errors.Is(err, crud.ErrClosed) {
		return err
	}
	if n.Store.Closed() {
		return crud.ErrClosed
	}
	n.Banners.Push(op, err)
	n.log.Error("operation failed", zap.String("op", op), zap.Error(err))
	return err
}

// List returns the cached notifications, optionally only read or unread ones.
func (n *NotificationCenter) List(read *bool) []models.Notification {
	all := n.Store.All()
	if read == nil {
		return all
	}
	return crud.Apply(all, crud.Equal(read, func(x models.Notification) bool { return x.Read }))
}

func (n *NotificationCenter) Unread() int {
	unread := false
	return len(n.List(&unread))
}

func (n *NotificationCenter) MarkRead(ctx context.Context, id int64, read bool) (models.Notification, error) {
	updated, err := n.backend.MarkNotificationRead(ctx, id, read)
	if err != nil {
		if isGone(err) {
			n.Store.Remove(crud.ServerKey(id))
		}
		return updated, n.fail("read", err)
	}
	n.Store.Upsert(updated)
	return updated, nil
}

// MarkAllRead marks every cached unread notification as read, in parallel.
// Notifications marked before a failure stay marked.
func (n *NotificationCenter) MarkAllRead(ctx context.Context) (int, error) {
	unread := false
	pending := n.List(&unread)

	var marked atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, x := range pending {
		g.Go(func() error {
			updated, err := n.backend.MarkNotificationRead(gctx, x.ID, true)
			if err != nil {
				if isGone(err) {
					n.Store.Remove(crud.ServerKey(x.ID))
					return nil
				}
				return err
			}
			n.Store.Upsert(updated)
			marked.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(marked.Load()), n.fail("read-all", err)
}

func (n *NotificationCenter) Config(ctx context.Context) ([]models.NotificationConfig, error) {
	cfg, err := n.backend.NotificationConfig(ctx, n.userID)
	if err != nil {
		return nil, n.fail("config", err)
	}
	n.setConfig(cfg)
	return cfg, nil
}

func (n *NotificationCenter) UpdateConfig(ctx context.Context, cfg []models.NotificationConfig) ([]models.NotificationConfig, error) {
	saved, err := n.backend.UpdateNotificationConfig(ctx, n.userID, cfg)
	if err != nil {
		return nil, n.fail("config", err)
	}
	n.setConfig(saved)
	return saved, nil
}

func (n *NotificationCenter) setConfig(cfg []models.NotificationConfig) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.config = append([]models.NotificationConfig(nil), cfg...)
}

// Enabled reports whether a type is switched on. Types without a config
// row are on.
func (n *NotificationCenter) Enabled(typ string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.config {
		if c.Type == typ {
			return c.Enabled
		}
	}
	return true
}

func (n *NotificationCenter) Close() {
	n.Store.Close()
}
