package demo

import (
	"fmt"
	"time"

	"dashkpis/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// SeedUser is a demo account whose password is known up front.
type SeedUser struct {
	Email    string
	Password string
	Role     models.UserRole
	Name     string
}

var SeedUsers = []SeedUser{
	{Email: "leidy@dashkpis.local", Password: "Leidy123!", Role: models.RolePM, Name: "Leidy"},
	{Email: "nicolas@dashkpis.local", Password: "Nicolas123!", Role: models.RoleContributor, Name: "Nicolás"},
	{Email: "carolina@dashkpis.local", Password: "Carolina123!", Role: models.RoleStakeholder, Name: "Carolina"},
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func str(s string) *string { return &s }

func ref(v int64) *int64 { return &v }

// Seeded returns a backend loaded with the demo projects, users, tasks and
// KPIs. Dates are relative to today so the phases stay meaningful.
func Seeded() (*Backend, error) {
	b := New()
	if err := b.Seed(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Backend) Seed() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range SeedUsers {
		// MinCost: the demo seeds on every start
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		b.accounts = append(b.accounts, account{
			user: models.User{
				ID:           b.next("user"),
				Email:        u.Email,
				Role:         u.Role,
				Name:         u.Name,
				RegisteredAt: b.stamp(),
				Active:       true,
			},
			hash: hash,
		})
	}
	pm := b.accounts[0].user.ID

	today := models.DateOf(b.now())
	day := func(offset int) *models.Date {
		return models.DatePtr(models.DateOf(today.AddDate(0, 0, offset)))
	}

	for _, p := range []models.Project{
		{Name: "Proyecto A", Description: str("Tablero de indicadores comerciales"), Start: day(-30), End: day(60), ManagerID: &pm},
		{Name: "Proyecto B", Description: str("Rediseño visual"), Start: day(-90), End: day(-10), ManagerID: &pm},
		{Name: "Proyecto C", Description: str("Exploración de nuevos mercados")},
	} {
		p.ID = b.next("project")
		b.projects = append(b.projects, p)
	}
	projA, projB := b.projects[0].ID, b.projects[1].ID

	tasks := []struct {
		task  models.Task
		hours []models.TimeLog
	}{
		{
			task: models.Task{
				Title: "Diseñar tablero principal", Description: str("Estructura inicial y componentes base"),
				Status: models.StatusInProgress, Priority: models.PriorityHigh, Progress: dec("45"),
				Due: day(3), AssigneeID: ref(1), ProjectID: &projA,
			},
			hours: []models.TimeLog{{UserID: 1, Hours: dec("2"), Note: "Wireframes"}},
		},
		{
			task: models.Task{
				Title: "Crear KPIs iniciales", Description: str("Ventas, Clientes y Tasa de conversión"),
				Status: models.StatusInProgress, Priority: models.PriorityMedium, Progress: dec("20"),
				Due: day(7), AssigneeID: ref(2), ProjectID: &projA,
			},
		},
		{
			task: models.Task{
				Title: "Refinar estilos y tipografías", Description: str("Alinear con guía visual"),
				Status: models.StatusCompleted, Priority: models.PriorityLow, Progress: dec("100"),
				Due: day(0), AssigneeID: ref(3), ProjectID: &projB,
			},
			hours: []models.TimeLog{{UserID: 3, Hours: dec("1.5")}},
		},
	}
	for _, s := range tasks {
		t := s.task
		t.ID = b.next("task")
		t.CreatedAt = b.stamp()
		b.tasks = append(b.tasks, t)
		for _, l := range s.hours {
			l.ID = b.next("time")
			l.LoggedAt = b.now().UTC().Add(-time.Hour)
			b.times = append(b.times, timeEntry{taskID: t.ID, log: l})
		}
	}

	for _, k := range []models.KPI{
		{Name: "Ventas", Description: str("Ventas mensuales"), Target: decPtr("100000"), Current: dec("64000"), Type: models.KPIFinancial, ProjectID: &projA},
		{Name: "Clientes", Description: str("Clientes activos"), Target: decPtr("500"), Current: dec("410"), Type: models.KPICustomer, ProjectID: &projA},
		{Name: "Tasa de conversión", Target: decPtr("5"), Current: dec("3.2"), Type: models.KPIMarketing, ProjectID: &projB},
		{Name: "Tiempo de respuesta", Description: str("Horas promedio de soporte"), Current: dec("12"), Type: models.KPIOperational},
	} {
		k.ID = b.next("kpi")
		k.CreatedAt = b.stamp()
		b.kpis = append(b.kpis, k)
	}

	b.notifyLocked(pm, "prueba", "Hola 👋", str("Notificación de prueba"), "/dashboard")
	return nil
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
