package crud

import (
	"sync"
	"time"
)

type Banner struct {
	ID      int       `json:"id"`
	Op      string    `json:"op"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Banners holds the dismissible error messages of one view.
type Banners struct {
	mu     sync.Mutex
	nextID int
	items  []Banner
}

func (b *Banners) Push(op string, err error) Banner {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	bn := Banner{ID: b.nextID, Op: op, Message: err.Error(), At: time.Now()}
	b.items = append(b.items, bn)
	return bn
}

func (b *Banners) Dismiss(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, bn := range b.items {
		if bn.ID == id {
			b.items = append(b.items[:i:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Banners) List() []Banner {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Banner{}, b.items...)
}
