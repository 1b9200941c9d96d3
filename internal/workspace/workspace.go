// Package workspace keeps the view state of every signed-in session.
package workspace

import (
	"context"
	"sync"
	"time"

	"dashkpis/internal/models"
	"dashkpis/internal/poll"
	"dashkpis/internal/views"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workspace is one session's set of mounted views. Views never share
// state with other workspaces; everything crosses over the backend.
type Workspace struct {
	ID       string
	User     models.User
	Dir      *views.Directory
	KPIs     *views.KPIView
	Projects *views.ProjectView
	Tasks    *views.TaskView
	Inbox    *views.NotificationCenter

	poller *poll.Poller

	mu       sync.Mutex
	lastSeen time.Time
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) LastSeen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// unmount stops polling and closes every view; late responses are dropped.
func (w *Workspace) unmount() {
	w.poller.Stop()
	w.KPIs.Unmount()
	w.Projects.Unmount()
	w.Tasks.Unmount()
	w.Inbox.Close()
}

type Registry struct {
	backend views.Backend
	notify  time.Duration
	log     *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	spaces map[string]*Workspace
}

func NewRegistry(b views.Backend, notifyInterval time.Duration, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		backend: b,
		notify:  notifyInterval,
		log:     log,
		now:     time.Now,
		spaces:  map[string]*Workspace{},
	}
}

// Mount builds a fresh workspace for u and starts its notification poller.
func (r *Registry) Mount(ctx context.Context, u models.User) *Workspace {
	id := uuid.NewString()
	log := r.log.With(zap.String("workspace", id), zap.Int64("user_id", u.ID))
	dir := &views.Directory{}
	w := &Workspace{
		ID:       id,
		User:     u,
		Dir:      dir,
		KPIs:     views.NewKPIView(r.backend, log),
		Projects: views.NewProjectView(r.backend, dir, log),
		Tasks:    views.NewTaskView(r.backend, dir, log),
		Inbox:    views.NewNotificationCenter(r.backend, u.ID, log),
		lastSeen: r.now(),
	}
	w.poller = poll.New(r.notify, w.Inbox.Poll, log.Named("poll"))
	// the poller outlives the request that mounted the workspace
	w.poller.Start(context.WithoutCancel(ctx))

	r.mu.Lock()
	r.spaces[id] = w
	r.mu.Unlock()
	log.Info("workspace mounted")
	return w
}

func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	w, ok := r.spaces[id]
	r.mu.Unlock()
	if ok {
		w.touch(r.now())
	}
	return w, ok
}

func (r *Registry) Unmount(id string) bool {
	r.mu.Lock()
	w, ok := r.spaces[id]
	delete(r.spaces, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	w.unmount()
	r.log.Info("workspace unmounted", zap.String("workspace", id))
	return true
}

// Sweep unmounts workspaces idle for longer than maxIdle.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	var stale []string
	r.mu.Lock()
	for id, w := range r.spaces {
		if w.LastSeen().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()

	n := 0
	for _, id := range stale {
		if r.Unmount(id) {
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}

// Close unmounts everything; used on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.spaces))
	for id := range r.spaces {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Unmount(id)
	}
}
