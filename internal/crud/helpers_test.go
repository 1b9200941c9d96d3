package crud

import (
	"context"
	"errors"
	"sync"

	"dashkpis/internal/validation"
)

type item struct {
	ID   int64
	Tmp  Key
	Name string
	Desc string
	Cat  string
	Tags []string
}

func itemKey(it item) Key {
	if it.ID == 0 {
		return it.Tmp
	}
	return ServerKey(it.ID)
}

var errBackend = errors.New("backend unavailable")

var errGone = errors.New("404 gone")

type fakeGateway struct {
	mu      sync.Mutex
	nextID  int64
	items   []item
	failAll error
	// block, when set, holds every call until it is closed
	block   chan struct{}
	started chan struct{}
	creates int
	updates int
	deletes []int64
}

func (g *fakeGateway) wait() {
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
}

func (g *fakeGateway) List(ctx context.Context) ([]item, error) {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failAll != nil {
		return nil, g.failAll
	}
	return append([]item(nil), g.items...), nil
}

func (g *fakeGateway) Create(ctx context.Context, v item) (item, error) {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creates++
	if g.failAll != nil {
		return item{}, g.failAll
	}
	g.nextID++
	v.ID = g.nextID
	v.Tmp = Key{}
	g.items = append(g.items, v)
	return v, nil
}

func (g *fakeGateway) Update(ctx context.Context, id int64, v item) (item, error) {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updates++
	if g.failAll != nil {
		return item{}, g.failAll
	}
	for i := range g.items {
		if g.items[i].ID == id {
			v.ID = id
			g.items[i] = v
			return v, nil
		}
	}
	return item{}, errGone
}

func (g *fakeGateway) Delete(ctx context.Context, id int64) error {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletes = append(g.deletes, id)
	if g.failAll != nil {
		return g.failAll
	}
	for i := range g.items {
		if g.items[i].ID == id {
			g.items = append(g.items[:i], g.items[i+1:]...)
			return nil
		}
	}
	return errGone
}

type itemFilter struct {
	Query string
	Cat   *string
}

func newItemView(gw *fakeGateway) *View[item, itemFilter] {
	return NewView(Config[item, itemFilter]{
		Name:    "items",
		Key:     itemKey,
		Gateway: gw,
		Defaults: func() item {
			return item{Cat: "a"}
		},
		Validate: func(it *item) error {
			if it.Name == "" {
				return validationErr("nombre")
			}
			return nil
		},
		Clone: func(it item) item {
			it.Tags = append([]string(nil), it.Tags...)
			return it
		},
		Filter: func(items []item, f itemFilter) []item {
			return Apply(items,
				Text(f.Query, func(it item) []string { return []string{it.Name, it.Desc} }),
				Equal(f.Cat, func(it item) string { return it.Cat }),
			)
		},
		IsGone: func(err error) bool { return errors.Is(err, errGone) },
	})
}

func ptr[V any](v V) *V { return &v }

func validationErr(field string) error {
	return validation.FieldErrors{field: "es obligatorio"}
}
