package views

import (
	"context"
	"strings"

	"dashkpis/internal/crud"
	"dashkpis/internal/models"
	"dashkpis/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ProjectFilter struct {
	Query   string               `form:"q"`
	Manager *int64               `form:"id_pm"`
	Phase   *models.ProjectPhase `form:"fase"`
	// Today anchors the phase filter; zero means the current day.
	Today models.Date `form:"-"`
}

func ProjectKey(p models.Project) crud.Key { return crud.ServerKey(p.ID) }

type ProjectView struct {
	*crud.View[models.Project, ProjectFilter]

	backend Backend
	dir     *Directory
}

func NewProjectView(b Backend, dir *Directory, log *zap.Logger) *ProjectView {
	v := &ProjectView{backend: b, dir: dir}
	v.View = crud.NewView(crud.Config[models.Project, ProjectFilter]{
		Name: "projects",
		Key:  ProjectKey,
		Gateway: gateway[models.Project]{
			list:   b.Projects,
			create: b.CreateProject,
			update: b.UpdateProject,
			remove: b.DeleteProject,
		},
		Defaults: func() models.Project { return models.Project{} },
		Validate: validateProject,
		Clone:    cloneProject,
		Filter:   FilterProjects,
		IsGone:   isGone,
		Logger:   log,
	})
	return v
}

func validateProject(p *models.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := validation.Struct(p); err != nil {
		return err
	}
	if p.Start != nil && p.End != nil && p.End.Before(*p.Start) {
		return validation.FieldErrors{"fecha_fin": "debe ser igual o posterior a la fecha de inicio"}
	}
	return nil
}

func cloneProject(p models.Project) models.Project {
	if p.Description != nil {
		d := *p.Description
		p.Description = &d
	}
	if p.Start != nil {
		s := *p.Start
		p.Start = &s
	}
	if p.End != nil {
		e := *p.End
		p.End = &e
	}
	if p.ManagerID != nil {
		m := *p.ManagerID
		p.ManagerID = &m
	}
	return p
}

func FilterProjects(items []models.Project, f ProjectFilter) []models.Project {
	today := f.Today
	if today.IsZero() {
		today = models.Today()
	}
	return crud.Apply(items,
		crud.Text(f.Query, func(p models.Project) []string {
			return []string{p.Name, crud.Deref(p.Description)}
		}),
		crud.EqualOptional(f.Manager, func(p models.Project) *int64 { return p.ManagerID }),
		crud.Equal(f.Phase, func(p models.Project) models.ProjectPhase { return p.Phase(today) }),
	)
}

// Refresh loads projects and the user directory side by side; either
// failure keeps the previous list.
func (v *ProjectView) Refresh(ctx context.Context) error {
	return v.Load(ctx, func(ctx context.Context) ([]models.Project, error) {
		var projects []models.Project
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			projects, err = v.backend.Projects(gctx)
			return err
		})
		g.Go(func() error {
			return v.dir.Load(gctx, v.backend)
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return projects, nil
	})
}

func (v *ProjectView) ManagerName(p models.Project) string {
	return v.dir.Name(p.ManagerID)
}

func (v *ProjectView) Users() []models.User {
	return v.dir.Users()
}
