package demo

import (
	"context"
	"strings"

	"dashkpis/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func (b *Backend) taskIndexLocked(id int64) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// taskLocked returns the stored task with its logged hours summed up.
func (b *Backend) taskLocked(i int) models.Task {
	t := b.tasks[i]
	t.TotalHours = decimal.Zero
	for _, e := range b.times {
		if e.taskID == t.ID {
			t.TotalHours = t.TotalHours.Add(e.log.Hours)
		}
	}
	t.TimeLogs = nil
	return t
}

func (b *Backend) ProjectTasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.Task
	for i, t := range b.tasks {
		if t.ProjectID != nil && *t.ProjectID == projectID {
			out = append(out, b.taskLocked(i))
		}
	}
	return out, nil
}

// checkProjectLocked mirrors the server: every task hangs off an existing
// project, otherwise it would never be listed again.
func (b *Backend) checkProjectLocked(id *int64) error {
	if id == nil {
		return badRequest("id_proyecto es obligatorio")
	}
	for _, p := range b.projects {
		if p.ID == *id {
			return nil
		}
	}
	return badRequest("Proyecto no existe")
}

func (b *Backend) notifyAssigneeLocked(t models.Task, title string) {
	if t.AssigneeID != nil {
		b.notifyLocked(*t.AssigneeID, "tarea_asignada", title, t.Description, "/dashboard/tarea")
	}
}

// CreateTask always starts the task at 0% and Pendiente, whatever the body says.
func (b *Backend) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return models.Task{}, badRequest("titulo es obligatorio")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := t.Payload()
	if err := b.checkProjectLocked(p.ProjectID); err != nil {
		return models.Task{}, err
	}
	n := models.Task{
		ID:          b.next("task"),
		ProjectID:   p.ProjectID,
		AssigneeID:  p.AssigneeID,
		Title:       p.Title,
		Description: p.Description,
		Due:         p.Due,
		Priority:    p.Priority,
		Status:      models.StatusPending,
		CreatedAt:   b.stamp(),
	}
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}
	b.tasks = append(b.tasks, n)
	b.notifyAssigneeLocked(n, "Tarea asignada: "+n.Title)
	return b.taskLocked(len(b.tasks) - 1), nil
}

// UpdateTask only touches the editable columns; progress and status have
// their own endpoints.
func (b *Backend) UpdateTask(ctx context.Context, id int64, t models.Task) (models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(id)
	if i < 0 {
		return models.Task{}, notFound("tarea", id)
	}
	p := t.Payload()
	if err := b.checkProjectLocked(p.ProjectID); err != nil {
		return models.Task{}, err
	}
	cur := &b.tasks[i]
	cur.ProjectID = p.ProjectID
	cur.Title = p.Title
	cur.Description = p.Description
	cur.Due = p.Due
	cur.AssigneeID = p.AssigneeID
	cur.Priority = p.Priority
	if cur.Priority == "" {
		cur.Priority = models.PriorityMedium
	}
	b.notifyAssigneeLocked(*cur, "Te asignaron una tarea: "+cur.Title)
	return b.taskLocked(i), nil
}

func (b *Backend) AssignTask(ctx context.Context, id int64, userID *int64) (models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(id)
	if i < 0 {
		return models.Task{}, notFound("tarea", id)
	}
	b.tasks[i].AssigneeID = userID
	b.notifyAssigneeLocked(b.tasks[i], "Te asignaron una tarea: "+b.tasks[i].Title)
	return b.taskLocked(i), nil
}

func (b *Backend) SetTaskDue(ctx context.Context, id int64, due *models.Date) (models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(id)
	if i < 0 {
		return models.Task{}, notFound("tarea", id)
	}
	b.tasks[i].Due = due
	return b.taskLocked(i), nil
}

func (b *Backend) LogTime(ctx context.Context, id int64, l models.TimeLog) (models.TimeLogTotal, error) {
	if !l.Hours.IsPositive() {
		return models.TimeLogTotal{}, badRequest("horas debe ser mayor que 0")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(id)
	if i < 0 {
		return models.TimeLogTotal{}, notFound("tarea", id)
	}
	l.ID = b.next("time")
	l.LoggedAt = b.now().UTC()
	b.times = append(b.times, timeEntry{taskID: id, log: l})
	return models.TimeLogTotal{OK: true, TotalHours: b.taskLocked(i).TotalHours}, nil
}

// TimeLogs lists entries newest first. Day wins over From/To.
func (b *Backend) TimeLogs(ctx context.Context, id int64, r models.TimeRange) ([]models.TimeLog, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.TimeLog{}
	for j := len(b.times) - 1; j >= 0; j-- {
		e := b.times[j]
		if e.taskID != id {
			continue
		}
		day := models.DateOf(e.log.LoggedAt)
		switch {
		case r.Day != nil:
			if !day.Equal(r.Day.Time) {
				continue
			}
		default:
			if r.From != nil && day.Before(*r.From) {
				continue
			}
			if r.To != nil && day.After(*r.To) {
				continue
			}
		}
		out = append(out, e.log)
	}
	return out, nil
}

func (b *Backend) CompleteTask(ctx context.Context, id int64) (models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(id)
	if i < 0 {
		return models.Task{}, notFound("tarea", id)
	}
	b.tasks[i].Status = models.StatusCompleted
	b.tasks[i].Progress = hundred
	return b.taskLocked(i), nil
}

func (b *Backend) DeleteTask(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(id)
	if i < 0 {
		return notFound("tarea", id)
	}
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	return nil
}

// UpdateTaskProgress stores progress as sent. Without a status the status
// is derived: 100 or more completes the task at exactly 100, 0 or less
// resets it to Pendiente at 0, anything else is En progreso.
func (b *Backend) UpdateTaskProgress(ctx context.Context, id int64, progress decimal.Decimal, status *models.TaskStatus) (models.Task, error) {
	if status != nil && !status.Valid() {
		return models.Task{}, badRequest("estado inválido")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.taskIndexLocked(id)
	if i < 0 {
		return models.Task{}, notFound("tarea", id)
	}
	var st models.TaskStatus
	if status != nil {
		st = *status
	} else {
		st, progress = DeriveStatus(progress)
	}
	b.tasks[i].Progress = progress
	b.tasks[i].Status = st
	return b.taskLocked(i), nil
}

func DeriveStatus(progress decimal.Decimal) (models.TaskStatus, decimal.Decimal) {
	switch {
	case progress.GreaterThanOrEqual(hundred):
		return models.StatusCompleted, hundred
	case !progress.IsPositive():
		return models.StatusPending, decimal.Zero
	default:
		return models.StatusInProgress, progress
	}
}
