package views

import (
	"context"
	"strings"
	"sync"

	"dashkpis/internal/crud"
	"dashkpis/internal/models"
	"dashkpis/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type KPIFilter struct {
	Query   string          `form:"q"`
	Type    *models.KPIType `form:"tipo"`
	Project *int64          `form:"id_proyecto"`
}

func KPIKey(k models.KPI) crud.Key { return crud.ServerKey(k.ID) }

// KPIView is the KPI list with its form, detail panel and the inline
// "current value" edit that is saved through the progress endpoint.
type KPIView struct {
	*crud.View[models.KPI, KPIFilter]

	backend Backend
	mu      sync.Mutex
	scope   *int64
}

func NewKPIView(b Backend, log *zap.Logger) *KPIView {
	v := &KPIView{backend: b}
	v.View = crud.NewView(crud.Config[models.KPI, KPIFilter]{
		Name: "kpis",
		Key:  KPIKey,
		Gateway: gateway[models.KPI]{
			list: func(ctx context.Context) ([]models.KPI, error) {
				return b.KPIs(ctx, v.Scope())
			},
			create: b.CreateKPI,
			update: b.UpdateKPI,
			remove: b.DeleteKPI,
		},
		Defaults: func() models.KPI {
			return models.KPI{Type: models.KPIFinancial, Current: decimal.Zero, ProjectID: v.Scope()}
		},
		Validate: validateKPI,
		Clone:    cloneKPI,
		Filter:   FilterKPIs,
		IsGone:   isGone,
		Logger:   log,
	})
	return v
}

func validateKPI(k *models.KPI) error {
	k.Name = strings.TrimSpace(k.Name)
	return validation.Struct(k)
}

func cloneKPI(k models.KPI) models.KPI {
	if k.Target != nil {
		t := *k.Target
		k.Target = &t
	}
	if k.Description != nil {
		d := *k.Description
		k.Description = &d
	}
	if k.ProjectID != nil {
		p := *k.ProjectID
		k.ProjectID = &p
	}
	return k
}

// FilterKPIs matches name/description text, type and project, all at once.
func FilterKPIs(items []models.KPI, f KPIFilter) []models.KPI {
	return crud.Apply(items,
		crud.Text(f.Query, func(k models.KPI) []string {
			return []string{k.Name, crud.Deref(k.Description)}
		}),
		crud.Equal(f.Type, func(k models.KPI) models.KPIType { return k.Type }),
		crud.EqualOptional(f.Project, func(k models.KPI) *int64 { return k.ProjectID }),
	)
}

func (v *KPIView) Scope() *int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.scope == nil {
		return nil
	}
	p := *v.scope
	return &p
}

// SetScope limits the backend listing to one project; nil lists every KPI.
// Takes effect on the next Refresh.
func (v *KPIView) SetScope(projectID *int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scope = projectID
}

// SetCurrent is the inline edit of the detail panel. The store copy moves
// ahead of the server until SaveProgress.
func (v *KPIView) SetCurrent(k crud.Key, current decimal.Decimal) (models.KPI, error) {
	if current.IsNegative() {
		return models.KPI{}, validation.FieldErrors{"valor_actual": "debe ser >= 0"}
	}
	return v.Detail.Adjust(k, func(kpi *models.KPI) { kpi.Current = current })
}

func (v *KPIView) SaveProgress(ctx context.Context, k crud.Key) (models.KPI, error) {
	return v.Flush(ctx, "progress", k, func(ctx context.Context, id int64, kpi models.KPI) (models.KPI, error) {
		return v.backend.UpdateKPIProgress(ctx, id, kpi.Current)
	})
}
