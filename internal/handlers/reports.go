package handlers

import (
	"context"
	"net/http"

	"dashkpis/internal/models"
	"dashkpis/internal/report"
	"dashkpis/internal/workspace"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// ensureLoaded подгружает вью, которые ещё ни разу не грузились.
// Ошибки остаются баннерами во вью, отчёт строится по тому, что есть.
func ensureLoaded(ctx context.Context, w *workspace.Workspace) {
	var g errgroup.Group
	if !w.KPIs.Store.Loaded() {
		g.Go(func() error { _ = w.KPIs.Refresh(ctx); return nil })
	}
	if !w.Projects.Store.Loaded() {
		g.Go(func() error { _ = w.Projects.Refresh(ctx); return nil })
	}
	if !w.Tasks.Store.Loaded() {
		g.Go(func() error { _ = w.Tasks.Refresh(ctx); return nil })
	}
	_ = g.Wait()
}

func (h *Handler) Dashboard(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	ensureLoaded(c.Request.Context(), w)

	kpis := w.KPIs.Store.All()
	projects := w.Projects.Store.All()
	summary := report.Summarize(kpis, projects, w.Tasks.Store.All(), w.Inbox.Unread(), models.Today())

	render(c, http.StatusOK, gin.H{
		"resumen":   summary,
		"progreso":  report.ProgressByProject(kpis, projects),
		"kpis_tipo": report.CountByType(kpis),
	})
}

func (h *Handler) ProgressReport(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	ensureLoaded(c.Request.Context(), w)

	render(c, http.StatusOK, gin.H{
		"proyectos": report.ProgressByProject(w.KPIs.Store.All(), w.Projects.Store.All()),
	})
}
