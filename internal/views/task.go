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
	"golang.org/x/sync/errgroup"
)

type TaskFilter struct {
	Query    string            `form:"q"`
	State    *models.TaskState `form:"estado"`
	Priority *models.Priority  `form:"prioridad"`
	Project  *int64            `form:"id_proyecto"`
	Assignee *int64            `form:"id_usuario_asignado"`
}

func TaskKey(t models.Task) crud.Key { return crud.ServerKey(t.ID) }

// TaskView is the task board: the generic list/form/detail flows plus the
// task-only actions (done toggle, progress slider, assignment, due date,
// time logging).
type TaskView struct {
	*crud.View[models.Task, TaskFilter]

	backend Backend
	dir     *Directory
	mu      sync.Mutex
	scope   *int64
}

func NewTaskView(b Backend, dir *Directory, log *zap.Logger) *TaskView {
	v := &TaskView{backend: b, dir: dir}
	v.View = crud.NewView(crud.Config[models.Task, TaskFilter]{
		Name: "tasks",
		Key:  TaskKey,
		Gateway: gateway[models.Task]{
			list:   v.fetch,
			create: b.CreateTask,
			update: v.update,
			remove: b.DeleteTask,
		},
		Defaults: func() models.Task {
			return models.Task{
				Priority:  models.PriorityMedium,
				Progress:  decimal.Zero,
				Status:    models.StatusPending,
				ProjectID: v.Scope(),
			}
		},
		Validate: validateTask,
		Clone:    models.Task.Clone,
		Filter:   FilterTasks,
		IsGone:   isGone,
		Logger:   log,
	})
	return v
}

func validateTask(t *models.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	return validation.Struct(t)
}

func FilterTasks(items []models.Task, f TaskFilter) []models.Task {
	return crud.Apply(items,
		crud.Text(f.Query, func(t models.Task) []string {
			return []string{t.Title, crud.Deref(t.Description)}
		}),
		crud.Equal(f.State, models.Task.State),
		crud.Equal(f.Priority, func(t models.Task) models.Priority { return t.Priority }),
		crud.EqualOptional(f.Project, func(t models.Task) *int64 { return t.ProjectID }),
		crud.EqualOptional(f.Assignee, func(t models.Task) *int64 { return t.AssigneeID }),
	)
}

func (v *TaskView) Scope() *int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.scope == nil {
		return nil
	}
	p := *v.scope
	return &p
}

// SetScope limits loading to one project. Without a scope the tasks of
// every project are loaded.
func (v *TaskView) SetScope(projectID *int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scope = projectID
}

// fetch lists tasks per project, in parallel, and merges them in project
// order. The user directory is refreshed alongside for assignee names.
func (v *TaskView) fetch(ctx context.Context) ([]models.Task, error) {
	var projectIDs []int64
	if p := v.Scope(); p != nil {
		projectIDs = []int64{*p}
	} else {
		projects, err := v.backend.Projects(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range projects {
			projectIDs = append(projectIDs, p.ID)
		}
	}

	perProject := make([][]models.Task, len(projectIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	g.Go(func() error { return v.dir.Load(gctx, v.backend) })
	for i, id := range projectIDs {
		g.Go(func() error {
			tasks, err := v.backend.ProjectTasks(gctx, id)
			perProject[i] = tasks
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []models.Task
	for _, tasks := range perProject {
		out = append(out, tasks...)
	}
	return out, nil
}

// update keeps the time logs already fetched for the task; the backend
// never returns them with the task itself.
func (v *TaskView) update(ctx context.Context, id int64, t models.Task) (models.Task, error) {
	saved, err := v.backend.UpdateTask(ctx, id, t)
	if err != nil {
		return saved, err
	}
	if cur, ok := v.Store.Get(crud.ServerKey(id)); ok {
		saved.TimeLogs = cur.TimeLogs
	}
	return saved, nil
}

// action runs a task endpoint that answers with the updated task and
// reconciles that answer into the store.
func (v *TaskView) action(ctx context.Context, op string, k crud.Key, call func(ctx context.Context, id int64, local models.Task) (models.Task, error)) (models.Task, error) {
	return v.Flush(ctx, op, k, func(ctx context.Context, id int64, local models.Task) (models.Task, error) {
		saved, err := call(ctx, id, local)
		if err != nil {
			return saved, err
		}
		saved.TimeLogs = local.TimeLogs
		return saved, nil
	})
}

// ToggleDone completes a task through the complete endpoint, or reopens it
// through the progress endpoint with an explicit status so the backend
// does not derive one from the progress.
func (v *TaskView) ToggleDone(ctx context.Context, k crud.Key, done bool) (models.Task, error) {
	if done {
		return v.action(ctx, "complete", k, func(ctx context.Context, id int64, _ models.Task) (models.Task, error) {
			return v.backend.CompleteTask(ctx, id)
		})
	}
	return v.action(ctx, "reopen", k, func(ctx context.Context, id int64, t models.Task) (models.Task, error) {
		st := models.StatusInProgress
		if !t.Progress.IsPositive() {
			st = models.StatusPending
		}
		return v.backend.UpdateTaskProgress(ctx, id, t.Progress, &st)
	})
}

// SetProgress is the slider edit: local only, status untouched.
func (v *TaskView) SetProgress(k crud.Key, p decimal.Decimal) (models.Task, error) {
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
		return models.Task{}, validation.FieldErrors{"progreso": "debe estar entre 0 y 100"}
	}
	return v.Detail.Adjust(k, func(t *models.Task) { t.Progress = p })
}

// SaveProgress persists the slider value together with the current status.
func (v *TaskView) SaveProgress(ctx context.Context, k crud.Key) (models.Task, error) {
	return v.action(ctx, "progress", k, func(ctx context.Context, id int64, t models.Task) (models.Task, error) {
		st := t.Status
		if !st.Valid() {
			st = models.StatusPending
		}
		return v.backend.UpdateTaskProgress(ctx, id, t.Progress, &st)
	})
}

func (v *TaskView) Assign(ctx context.Context, k crud.Key, userID *int64) (models.Task, error) {
	return v.action(ctx, "assign", k, func(ctx context.Context, id int64, _ models.Task) (models.Task, error) {
		return v.backend.AssignTask(ctx, id, userID)
	})
}

func (v *TaskView) ChangeDue(ctx context.Context, k crud.Key, due *models.Date) (models.Task, error) {
	return v.action(ctx, "due", k, func(ctx context.Context, id int64, _ models.Task) (models.Task, error) {
		return v.backend.SetTaskDue(ctx, id, due)
	})
}

// AddTime logs hours for userID and refreshes the task's total.
func (v *TaskView) AddTime(ctx context.Context, k crud.Key, userID int64, hours decimal.Decimal, note string) (models.TimeLogTotal, error) {
	if !hours.IsPositive() {
		return models.TimeLogTotal{}, validation.FieldErrors{"horas": "debe ser mayor que 0"}
	}
	id, ok := k.ID()
	if !ok {
		return models.TimeLogTotal{}, crud.ErrNotPersisted
	}
	total, err := v.backend.LogTime(ctx, id, models.TimeLog{UserID: userID, Hours: hours, Note: strings.TrimSpace(note)})
	if err != nil {
		if isGone(err) {
			v.Store.Remove(k)
		}
		return total, v.Fail("time", err)
	}
	_ = v.Store.Modify(k, func(t *models.Task) { t.TotalHours = total.TotalHours })
	return total, nil
}

// TimeLogs fetches the task's time entries for r and caches them on the
// stored task.
func (v *TaskView) TimeLogs(ctx context.Context, k crud.Key, r models.TimeRange) ([]models.TimeLog, error) {
	id, ok := k.ID()
	if !ok {
		return nil, crud.ErrNotPersisted
	}
	logs, err := v.backend.TimeLogs(ctx, id, r)
	if err != nil {
		if isGone(err) {
			v.Store.Remove(k)
		}
		return nil, v.Fail("time", err)
	}
	_ = v.Store.Modify(k, func(t *models.Task) { t.TimeLogs = logs })
	return logs, nil
}

func (v *TaskView) AssigneeName(t models.Task) string {
	return v.dir.Name(t.AssigneeID)
}
