package views

import (
	"context"

	"dashkpis/internal/models"

	"github.com/shopspring/decimal"
)

// Backend is everything the views need from the DashKPIs REST backend.
// *api.Client and *demo.Backend both satisfy it.
type Backend interface {
	Health(ctx context.Context) error

	Login(ctx context.Context, cred models.Credentials) (models.User, error)
	Register(ctx context.Context, r models.Registration) (models.User, error)
	Users(ctx context.Context) ([]models.User, error)

	KPIs(ctx context.Context, projectID *int64) ([]models.KPI, error)
	CreateKPI(ctx context.Context, k models.KPI) (models.KPI, error)
	UpdateKPI(ctx context.Context, id int64, k models.KPI) (models.KPI, error)
	DeleteKPI(ctx context.Context, id int64) error
	UpdateKPIProgress(ctx context.Context, id int64, current decimal.Decimal) (models.KPI, error)

	Projects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, p models.Project) (models.Project, error)
	UpdateProject(ctx context.Context, id int64, p models.Project) (models.Project, error)
	DeleteProject(ctx context.Context, id int64) error

	ProjectTasks(ctx context.Context, projectID int64) ([]models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, t models.Task) (models.Task, error)
	AssignTask(ctx context.Context, id int64, userID *int64) (models.Task, error)
	SetTaskDue(ctx context.Context, id int64, due *models.Date) (models.Task, error)
	LogTime(ctx context.Context, id int64, l models.TimeLog) (models.TimeLogTotal, error)
	TimeLogs(ctx context.Context, id int64, r models.TimeRange) ([]models.TimeLog, error)
	CompleteTask(ctx context.Context, id int64) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	UpdateTaskProgress(ctx context.Context, id int64, progress decimal.Decimal, status *models.TaskStatus) (models.Task, error)

	Notifications(ctx context.Context, userID int64, q models.NotificationQuery) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64, read bool) (models.Notification, error)
	NotificationConfig(ctx context.Context, userID int64) ([]models.NotificationConfig, error)
	UpdateNotificationConfig(ctx context.Context, userID int64, cfg []models.NotificationConfig) ([]models.NotificationConfig, error)
}
