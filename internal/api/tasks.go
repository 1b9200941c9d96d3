package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"dashkpis/internal/models"

	"github.com/shopspring/decimal"
)

func taskPath(id int64, action string) string {
	if action == "" {
		return fmt.Sprintf("/api/tareas/%d/", id)
	}
	return fmt.Sprintf("/api/tareas/%d/%s/", id, action)
}

func (c *Client) ProjectTasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	var out []models.Task
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/proyectos/%d/tareas/", projectID), nil, nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, http.MethodPost, "/api/tareas/", nil, t.Payload(), &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id int64, t models.Task) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, http.MethodPut, taskPath(id, ""), nil, t.Payload(), &out)
	return out, err
}

func (c *Client) AssignTask(ctx context.Context, id int64, userID *int64) (models.Task, error) {
	body := map[string]*int64{"id_usuario_asignado": userID}
	var out models.Task
	err := c.do(ctx, http.MethodPost, taskPath(id, "assign"), nil, body, &out)
	return out, err
}

func (c *Client) SetTaskDue(ctx context.Context, id int64, due *models.Date) (models.Task, error) {
	body := map[string]*models.Date{"fecha_vencimiento": due}
	var out models.Task
	err := c.do(ctx, http.MethodPost, taskPath(id, "duedate"), nil, body, &out)
	return out, err
}

type timeLogRequest struct {
	TaskID int64           `json:"id_tarea"`
	UserID int64           `json:"id_usuario"`
	Hours  decimal.Decimal `json:"horas"`
	Note   string          `json:"nota,omitempty"`
}

// LogTime records hours against a task and returns the new total.
func (c *Client) LogTime(ctx context.Context, id int64, l models.TimeLog) (models.TimeLogTotal, error) {
	body := timeLogRequest{TaskID: id, UserID: l.UserID, Hours: l.Hours, Note: l.Note}
	var out models.TimeLogTotal
	err := c.do(ctx, http.MethodPost, taskPath(id, "tiempo"), nil, body, &out)
	return out, err
}

func (c *Client) TimeLogs(ctx context.Context, id int64, r models.TimeRange) ([]models.TimeLog, error) {
	q := url.Values{}
	switch {
	case r.Day != nil:
		q.Set("fecha", r.Day.String())
	default:
		if r.From != nil {
			q.Set("desde", r.From.String())
		}
		if r.To != nil {
			q.Set("hasta", r.To.String())
		}
	}
	var out []models.TimeLog
	err := c.do(ctx, http.MethodGet, taskPath(id, "tiempo"), q, nil, &out)
	return out, err
}

func (c *Client) CompleteTask(ctx context.Context, id int64) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, http.MethodPost, taskPath(id, "complete"), nil, nil, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id, "delete"), nil, nil, nil)
}

type progressRequest struct {
	Progress decimal.Decimal    `json:"progreso"`
	Status   *models.TaskStatus `json:"estado,omitempty"`
}

// UpdateTaskProgress sets progress and, when status is nil, lets the
// backend derive the status from the progress value.
func (c *Client) UpdateTaskProgress(ctx context.Context, id int64, progress decimal.Decimal, status *models.TaskStatus) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, http.MethodPost, taskPath(id, "progress"), nil, progressRequest{progress, status}, &out)
	return out, err
}
