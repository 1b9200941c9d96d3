package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Priority string

const (
	PriorityHigh   Priority = "Alta"
	PriorityMedium Priority = "Media"
	PriorityLow    Priority = "Baja"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// TaskStatus is the backend's three-valued status column.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pendiente"
	StatusInProgress TaskStatus = "En progreso"
	StatusCompleted  TaskStatus = "Completada"
)

func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// TaskState is what the task views filter and display on.
type TaskState string

const (
	TaskActive    TaskState = "Activa"
	TaskCompleted TaskState = "Completada"
)

type Task struct {
	ID          int64           `json:"id_tarea,omitempty"`
	ProjectID   *int64          `json:"id_proyecto"`
	AssigneeID  *int64          `json:"id_usuario_asignado"`
	Title       string          `json:"titulo" validate:"required"`
	Description *string         `json:"descripcion"`
	CreatedAt   string          `json:"fecha_creacion,omitempty"`
	Due         *Date           `json:"fecha_vencimiento"`
	Priority    Priority        `json:"prioridad" validate:"required,oneof=Alta Media Baja"`
	Progress    decimal.Decimal `json:"progreso" validate:"min=0,max=100"`
	Status      TaskStatus      `json:"estado"`
	TotalHours  decimal.Decimal `json:"total_horas"`
	TimeLogs    []TimeLog       `json:"tiempo,omitempty"`
}

func (t Task) State() TaskState {
	if t.Status == StatusCompleted {
		return TaskCompleted
	}
	return TaskActive
}

func (t Task) Overdue(today Date) bool {
	return t.Due != nil && t.Due.Before(today) && t.State() != TaskCompleted
}

// Clone copies the time log slice so drafts never alias the stored task.
func (t Task) Clone() Task {
	if t.TimeLogs != nil {
		t.TimeLogs = append([]TimeLog(nil), t.TimeLogs...)
	}
	return t
}

type TaskPayload struct {
	ProjectID   *int64   `json:"id_proyecto"`
	Title       string   `json:"titulo"`
	Description *string  `json:"descripcion"`
	Due         *Date    `json:"fecha_vencimiento"`
	AssigneeID  *int64   `json:"id_usuario_asignado"`
	Priority    Priority `json:"prioridad,omitempty"`
}

func (t Task) Payload() TaskPayload {
	return TaskPayload{
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Due:         t.Due,
		AssigneeID:  t.AssigneeID,
		Priority:    t.Priority,
	}
}

type TimeLog struct {
	ID       int64           `json:"id_registro"`
	UserID   int64           `json:"id_usuario"`
	Hours    decimal.Decimal `json:"horas"`
	LoggedAt time.Time       `json:"fecha_registro"`
	Note     string          `json:"nota,omitempty"`
}

// TimeRange narrows a time log listing. Day wins over From/To.
type TimeRange struct {
	Day  *Date
	From *Date
	To   *Date
}

type TimeLogTotal struct {
	OK         bool            `json:"ok"`
	TotalHours decimal.Decimal `json:"total_horas"`
}
