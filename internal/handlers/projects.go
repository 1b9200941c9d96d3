package handlers

import (
	"context"

	"dashkpis/internal/crud"
	"dashkpis/internal/models"
	"dashkpis/internal/views"
	"dashkpis/internal/workspace"
)

type projectRow struct {
	models.Project
	Phase    models.ProjectPhase `json:"fase"`
	Manager  string              `json:"pm"`
	Duration *int                `json:"duracion_dias,omitempty"`
}

func projectRowOf(w *workspace.Workspace, p models.Project) any {
	row := projectRow{
		Project: p,
		Phase:   p.Phase(models.Today()),
		Manager: w.Projects.ManagerName(p),
	}
	if d, ok := p.DurationDays(); ok {
		row.Duration = &d
	}
	return row
}

// Projects: список, форма и детали проектов
func (h *Handler) Projects() EntityRoutes {
	return entityRoutes(h, entity[models.Project, views.ProjectFilter]{
		name:    "project",
		view:    func(w *workspace.Workspace) *crud.View[models.Project, views.ProjectFilter] { return w.Projects.View },
		refresh: func(ctx context.Context, w *workspace.Workspace) error { return w.Projects.Refresh(ctx) },
		key:     views.ProjectKey,
		label:   func(p models.Project) string { return p.Name },
		row:     projectRowOf,
		prepare: func(f *views.ProjectFilter) { f.Today = models.Today() },
	})
}
