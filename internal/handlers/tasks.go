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

type taskRow struct {
	models.Task
	State    models.TaskState `json:"estado_tablero"`
	Overdue  bool             `json:"vencida"`
	Assignee string           `json:"asignado"`
	Dirty    bool             `json:"sin_guardar,omitempty"`
}

func taskRowOf(w *workspace.Workspace, t models.Task) any {
	return taskRow{
		Task:     t,
		State:    t.State(),
		Overdue:  t.Overdue(models.Today()),
		Assignee: w.Tasks.AssigneeName(t),
		Dirty:    w.Tasks.Detail.Dirty(views.TaskKey(t)),
	}
}

func (h *Handler) taskEntity() entity[models.Task, views.TaskFilter] {
	return entity[models.Task, views.TaskFilter]{
		name:    "task",
		view:    func(w *workspace.Workspace) *crud.View[models.Task, views.TaskFilter] { return w.Tasks.View },
		refresh: func(ctx context.Context, w *workspace.Workspace) error { return w.Tasks.Refresh(ctx) },
		key:     views.TaskKey,
		label:   func(t models.Task) string { return t.Title },
		row:     taskRowOf,
		scope:   func(w *workspace.Workspace, p *int64) { w.Tasks.SetScope(p) },
	}
}

// Tasks: доска задач
func (h *Handler) Tasks() EntityRoutes {
	return entityRoutes(h, h.taskEntity())
}

// taskAction разбирает ключ, вызывает действие и отвечает состоянием вью
func (h *Handler) taskAction(c *gin.Context, audit string, run func(ctx context.Context, w *workspace.Workspace, k crud.Key) (models.Task, error)) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	k, ok := keyParam(c)
	if !ok {
		return
	}

	t, err := run(c.Request.Context(), w, k)
	if err != nil {
		h.fail(c, err)
		return
	}
	if audit != "" {
		database.CreateAuditLog(w.User.ID, "task", t.ID, audit, t.Title)
	}
	h.taskEntity().respond(c, w, http.StatusOK, gin.H{"item": taskRowOf(w, t)})
}

type doneBody struct {
	Done *bool `json:"completada"`
}

func (h *Handler) ToggleTaskDone(c *gin.Context) {
	var body doneBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Done == nil {
		badRequest(c, "completada es obligatorio")
		return
	}
	action := "reopen"
	if *body.Done {
		action = "complete"
	}
	h.taskAction(c, action, func(ctx context.Context, w *workspace.Workspace, k crud.Key) (models.Task, error) {
		return w.Tasks.ToggleDone(ctx, k, *body.Done)
	})
}

type progressBody struct {
	Progress *decimal.Decimal `json:"progreso"`
}

// SetTaskProgress: движение слайдера, только локально
func (h *Handler) SetTaskProgress(c *gin.Context) {
	var body progressBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Progress == nil {
		badRequest(c, "progreso es obligatorio")
		return
	}
	h.taskAction(c, "", func(_ context.Context, w *workspace.Workspace, k crud.Key) (models.Task, error) {
		return w.Tasks.SetProgress(k, *body.Progress)
	})
}

func (h *Handler) SaveTaskProgress(c *gin.Context) {
	h.taskAction(c, "progress", func(ctx context.Context, w *workspace.Workspace, k crud.Key) (models.Task, error) {
		return w.Tasks.SaveProgress(ctx, k)
	})
}

type assignBody struct {
	AssigneeID *int64 `json:"id_usuario_asignado"`
}

func (h *Handler) AssignTask(c *gin.Context) {
	var body assignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "datos no válidos")
		return
	}
	h.taskAction(c, "assign", func(ctx context.Context, w *workspace.Workspace, k crud.Key) (models.Task, error) {
		return w.Tasks.Assign(ctx, k, body.AssigneeID)
	})
}

type dueBody struct {
	Due *models.Date `json:"fecha_vencimiento"`
}

func (h *Handler) ChangeTaskDue(c *gin.Context) {
	var body dueBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "fecha no válida")
		return
	}
	h.taskAction(c, "due", func(ctx context.Context, w *workspace.Workspace, k crud.Key) (models.Task, error) {
		return w.Tasks.ChangeDue(ctx, k, body.Due)
	})
}

type timeBody struct {
	Hours *decimal.Decimal `json:"horas"`
	Note  string           `json:"nota"`
}

// LogTaskTime записывает часы текущего пользователя
func (h *Handler) LogTaskTime(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	k, ok := keyParam(c)
	if !ok {
		return
	}
	var body timeBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Hours == nil {
		badRequest(c, "horas es obligatorio")
		return
	}

	total, err := w.Tasks.AddTime(c.Request.Context(), k, w.User.ID, *body.Hours, body.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	if id, ok := k.ID(); ok {
		database.CreateAuditLog(w.User.ID, "task", id, "time", "horas="+body.Hours.String())
	}
	render(c, http.StatusCreated, gin.H{"total_horas": total.TotalHours})
}

// TaskTimeLogs: ?fecha=yyyy-mm-dd или ?desde=&hasta=
func (h *Handler) TaskTimeLogs(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	k, ok := keyParam(c)
	if !ok {
		return
	}

	var r models.TimeRange
	for param, dst := range map[string]**models.Date{"fecha": &r.Day, "desde": &r.From, "hasta": &r.To} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		d, err := models.ParseDate(raw)
		if err != nil {
			badRequest(c, param+" no válida")
			return
		}
		*dst = &d
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		badRequest(c, "hasta debe ser igual o posterior a desde")
		return
	}

	logs, err := w.Tasks.TimeLogs(c.Request.Context(), k, r)
	if err != nil {
		h.fail(c, err)
		return
	}
	if logs == nil {
		logs = []models.TimeLog{}
	}
	render(c, http.StatusOK, gin.H{"registros": logs})
}
