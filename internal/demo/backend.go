// Package demo is an in-memory stand-in for the DashKPIs REST backend,
// used when no BACKEND_URL is configured and by tests.
package demo

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"dashkpis/internal/api"
	"dashkpis/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	user models.User
	hash []byte
}

type timeEntry struct {
	taskID int64
	log    models.TimeLog
}

// Backend mirrors the REST contract, errors included: unknown ids answer
// with a 404 *api.Error and bad credentials with a 401.
type Backend struct {
	mu       sync.Mutex
	now      func() time.Time
	seq      map[string]int64
	accounts []account
	kpis     []models.KPI
	projects []models.Project
	tasks    []models.Task
	times    []timeEntry
	notes    []models.Notification
	configs  []models.NotificationConfig
}

func New() *Backend {
	return &Backend{now: time.Now, seq: map[string]int64{}}
}

func (b *Backend) next(kind string) int64 {
	b.seq[kind]++
	return b.seq[kind]
}

func notFound(what string, id int64) error {
	return &api.Error{Status: http.StatusNotFound, Body: fmt.Sprintf(`{"detail":"%s %d no existe"}`, what, id)}
}

func badRequest(detail string) error {
	return &api.Error{Status: http.StatusBadRequest, Body: fmt.Sprintf(`{"detail":%q}`, detail)}
}

func (b *Backend) stamp() string {
	return b.now().UTC().Format(time.RFC3339)
}

func (b *Backend) Health(ctx context.Context) error { return nil }

//
// AUTH
//

func (b *Backend) Login(ctx context.Context, cred models.Credentials) (models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	unauthorized := &api.Error{Status: http.StatusUnauthorized, Body: `{"detail":"Credenciales inválidas"}`}
	for _, a := range b.accounts {
		if !strings.EqualFold(a.user.Email, cred.Email) || !a.user.Active {
			continue
		}
		if bcrypt.CompareHashAndPassword(a.hash, []byte(cred.Password)) != nil {
			return models.User{}, unauthorized
		}
		return a.user, nil
	}
	return models.User{}, unauthorized
}

func (b *Backend) Register(ctx context.Context, r models.Registration) (models.User, error) {
	if !r.Role.Valid() {
		return models.User{}, badRequest("rol inválido")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if strings.EqualFold(a.user.Email, r.Email) {
			return models.User{}, badRequest("El correo ya está registrado")
		}
	}
	u := models.User{
		ID:           b.next("user"),
		Email:        r.Email,
		Role:         r.Role,
		Name:         r.Name,
		RegisteredAt: b.stamp(),
		Active:       true,
	}
	b.accounts = append(b.accounts, account{user: u, hash: hash})
	return u, nil
}

// Users lists active users, deriving a display name when none was stored.
func (b *Backend) Users(ctx context.Context) ([]models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.User, 0, len(b.accounts))
	for _, a := range b.accounts {
		if !a.user.Active {
			continue
		}
		u := a.user
		u.Name = u.DisplayName()
		out = append(out, u)
	}
	return out, nil
}

//
// KPI
//

func (b *Backend) KPIs(ctx context.Context, projectID *int64) ([]models.KPI, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.KPI, 0, len(b.kpis))
	for _, k := range b.kpis {
		if projectID != nil && (k.ProjectID == nil || *k.ProjectID != *projectID) {
			continue
		}
		out = append(out, k)
	}
	// newest first, as the backend orders by -id_kpi
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (b *Backend) CreateKPI(ctx context.Context, k models.KPI) (models.KPI, error) {
	if strings.TrimSpace(k.Name) == "" {
		return models.KPI{}, badRequest("nombre es obligatorio")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	k.ID = b.next("kpi")
	k.CreatedAt = b.stamp()
	b.kpis = append(b.kpis, k)
	if k.ProjectID != nil {
		if p, ok := b.projectLocked(*k.ProjectID); ok && p.ManagerID != nil {
			b.notifyLocked(*p.ManagerID, "kpi_creada", "KPI creada: "+k.Name, k.Description, "/dashboard/kpi")
		}
	}
	return k, nil
}

func (b *Backend) UpdateKPI(ctx context.Context, id int64, k models.KPI) (models.KPI, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.kpis {
		if b.kpis[i].ID == id {
			k.ID = id
			k.CreatedAt = b.kpis[i].CreatedAt
			b.kpis[i] = k
			return k, nil
		}
	}
	return models.KPI{}, notFound("kpi", id)
}

func (b *Backend) DeleteKPI(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.kpis {
		if b.kpis[i].ID == id {
			b.kpis = append(b.kpis[:i], b.kpis[i+1:]...)
			return nil
		}
	}
	return notFound("kpi", id)
}

func (b *Backend) UpdateKPIProgress(ctx context.Context, id int64, current decimal.Decimal) (models.KPI, error) {
	if current.IsNegative() {
		return models.KPI{}, badRequest("valor_actual debe ser >= 0")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.kpis {
		if b.kpis[i].ID == id {
			b.kpis[i].Current = current
			return b.kpis[i], nil
		}
	}
	return models.KPI{}, notFound("kpi", id)
}

//
// PROYECTOS
//

func (b *Backend) projectLocked(id int64) (models.Project, bool) {
	for _, p := range b.projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

func (b *Backend) Projects(ctx context.Context) ([]models.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Project{}, b.projects...), nil
}

func (b *Backend) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return models.Project{}, badRequest("nombre es obligatorio")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p.ID = b.next("project")
	b.projects = append(b.projects, p)
	return p, nil
}

func (b *Backend) UpdateProject(ctx context.Context, id int64, p models.Project) (models.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.projects {
		if b.projects[i].ID == id {
			p.ID = id
			b.projects[i] = p
			return p, nil
		}
	}
	return models.Project{}, notFound("proyecto", id)
}

func (b *Backend) DeleteProject(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.projects {
		if b.projects[i].ID == id {
			b.projects = append(b.projects[:i], b.projects[i+1:]...)
			b.dropProjectTasksLocked(id)
			return nil
		}
	}
	return notFound("proyecto", id)
}

// dropProjectTasksLocked cascades a project delete to its tasks and their
// time entries, like the server's foreign keys do.
func (b *Backend) dropProjectTasksLocked(projectID int64) {
	gone := map[int64]bool{}
	tasks := b.tasks[:0]
	for _, t := range b.tasks {
		if t.ProjectID != nil && *t.ProjectID == projectID {
			gone[t.ID] = true
			continue
		}
		tasks = append(tasks, t)
	}
	b.tasks = tasks
	times := b.times[:0]
	for _, e := range b.times {
		if !gone[e.taskID] {
			times = append(times, e)
		}
	}
	b.times = times
}

//
// NOTIFICACIONES
//

// notifyLocked stores a notification unless the user switched the type off.
// A type without config row counts as enabled.
func (b *Backend) notifyLocked(userID int64, typ, title string, msg *string, link string) {
	for _, c := range b.configs {
		if c.UserID == userID && c.Type == typ && !c.Enabled {
			return
		}
	}
	b.notes = append(b.notes, models.Notification{
		ID:      b.next("notification"),
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: msg,
		Link:    &link,
		At:      b.now().UTC(),
	})
}

func (b *Backend) Notifications(ctx context.Context, userID int64, q models.NotificationQuery) ([]models.Notification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.Notification
	for _, n := range b.notes {
		if n.UserID != userID || (q.Read != nil && n.Read != *q.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (b *Backend) MarkNotificationRead(ctx context.Context, id int64, read bool) (models.Notification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.notes {
		if b.notes[i].ID == id {
			b.notes[i].Read = read
			return b.notes[i], nil
		}
	}
	return models.Notification{}, notFound("notificacion", id)
}

func (b *Backend) NotificationConfig(ctx context.Context, userID int64) ([]models.NotificationConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.configLocked(userID), nil
}

func (b *Backend) configLocked(userID int64) []models.NotificationConfig {
	out := []models.NotificationConfig{}
	for _, c := range b.configs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

// UpdateNotificationConfig upserts one row per type.
func (b *Backend) UpdateNotificationConfig(ctx context.Context, userID int64, cfg []models.NotificationConfig) ([]models.NotificationConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, in := range cfg {
		if in.Type == "" {
			return nil, badRequest("Cada item debe tener tipo (str) y activo (bool)")
		}
	}
next:
	for _, in := range cfg {
		for i := range b.configs {
			if b.configs[i].UserID == userID && b.configs[i].Type == in.Type {
				b.configs[i].Enabled = in.Enabled
				continue next
			}
		}
		b.configs = append(b.configs, models.NotificationConfig{UserID: userID, Type: in.Type, Enabled: in.Enabled})
	}
	return b.configLocked(userID), nil
}
