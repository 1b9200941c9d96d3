package handlers

import (
	"context"
	"net/http"

	"dashkpis/internal/crud"
	"dashkpis/internal/database"
	"dashkpis/internal/models"
	"dashkpis/internal/views"
	"dashkpis/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type kpiRow struct {
	models.KPI
	Progress *decimal.Decimal `json:"progreso,omitempty"`
	Width    int              `json:"ancho"`
	Dirty    bool             `json:"sin_guardar,omitempty"`
}

func (h *Handler) kpiEntity() entity[models.KPI, views.KPIFilter] {
	return entity[models.KPI, views.KPIFilter]{
		name:    "kpi",
		view:    func(w *workspace.Workspace) *crud.View[models.KPI, views.KPIFilter] { return w.KPIs.View },
		refresh: func(ctx context.Context, w *workspace.Workspace) error { return w.KPIs.Refresh(ctx) },
		key:     views.KPIKey,
		label:   func(k models.KPI) string { return k.Name },
		row:     kpiRowOf,
		scope:   func(w *workspace.Workspace, p *int64) { w.KPIs.SetScope(p) },
	}
}

func kpiRowOf(w *workspace.Workspace, k models.KPI) any {
	row := kpiRow{KPI: k, Width: k.DisplayWidth(), Dirty: w.KPIs.Detail.Dirty(views.KPIKey(k))}
	if p, ok := k.Progress(); ok {
		p = p.Round(2)
		row.Progress = &p
	}
	return row
}

// KPIs: список, форма и детали KPI
func (h *Handler) KPIs() EntityRoutes {
	return entityRoutes(h, h.kpiEntity())
}

type currentBody struct {
	Current *decimal.Decimal `json:"valor_actual"`
}

// SetKPICurrent: правка текущего значения прямо в карточке, без сохранения
func (h *Handler) SetKPICurrent(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	k, ok := keyParam(c)
	if !ok {
		return
	}
	var body currentBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Current == nil {
		badRequest(c, "valor_actual es obligatorio")
		return
	}

	kpi, err := w.KPIs.SetCurrent(k, *body.Current)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.kpiEntity().respond(c, w, http.StatusOK, gin.H{"item": kpiRowOf(w, kpi)})
}

func (h *Handler) SaveKPIProgress(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	k, ok := keyParam(c)
	if !ok {
		return
	}

	kpi, err := w.KPIs.SaveProgress(c.Request.Context(), k)
	if err != nil {
		h.fail(c, err)
		return
	}
	database.CreateAuditLog(w.User.ID, "kpi", kpi.ID, "progress", "valor_actual="+kpi.Current.String())
	h.kpiEntity().respond(c, w, http.StatusOK, gin.H{"item": kpiRowOf(w, kpi)})
}
