package views

import (
	"context"
	"sync"

	"dashkpis/internal/models"
)

// Directory caches the user list shared by the project and task views of
// one workspace (PM names, assignee names).
type Directory struct {
	mu    sync.RWMutex
	users []models.User
}

func (d *Directory) Load(ctx context.Context, b Backend) error {
	users, err := b.Users(ctx)
	if err != nil {
		return err
	}
	d.Set(users)
	return nil
}

func (d *Directory) Set(users []models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = append([]models.User(nil), users...)
}

func (d *Directory) Users() []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.User(nil), d.users...)
}

func (d *Directory) User(id int64) (models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

const Unassigned = "Sin asignar"

// Name is the display name for an optional user reference.
func (d *Directory) Name(id *int64) string {
	if id == nil {
		return Unassigned
	}
	u, ok := d.User(*id)
	if !ok {
		return Unassigned
	}
	return u.DisplayName()
}
