// Package report aggregates the loaded views into dashboard figures.
package report

import (
	"sort"

	"dashkpis/internal/models"

	"github.com/shopspring/decimal"
)

const NoProject = "Sin proyecto"

type ProjectProgress struct {
	ProjectID *int64          `json:"id_proyecto"`
	Name      string          `json:"nombre"`
	Progress  decimal.Decimal `json:"progreso"`
	Width     int             `json:"ancho"`
	KPIs      int             `json:"kpis"`
}

// ProgressByProject averages the progress of the KPIs of each project.
// KPIs without a defined progress are left out; projects left with no KPI
// are not listed. The result is sorted by progress descending, then by name.
func ProgressByProject(kpis []models.KPI, projects []models.Project) []ProjectProgress {
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	type acc struct {
		sum   decimal.Decimal
		count int
	}
	groups := map[int64]*acc{}
	var orphan acc
	for _, k := range kpis {
		p, ok := k.Progress()
		if !ok {
			continue
		}
		a := &orphan
		if k.ProjectID != nil {
			if _, known := names[*k.ProjectID]; known {
				if groups[*k.ProjectID] == nil {
					groups[*k.ProjectID] = &acc{}
				}
				a = groups[*k.ProjectID]
			}
		}
		a.sum = a.sum.Add(p)
		a.count++
	}

	out := make([]ProjectProgress, 0, len(groups)+1)
	for id, a := range groups {
		avg := a.sum.Div(decimal.NewFromInt(int64(a.count))).Round(2)
		out = append(out, ProjectProgress{
			ProjectID: &id,
			Name:      names[id],
			Progress:  avg,
			Width:     models.ClampPercent(avg),
			KPIs:      a.count,
		})
	}
	if orphan.count > 0 {
		avg := orphan.sum.Div(decimal.NewFromInt(int64(orphan.count))).Round(2)
		out = append(out, ProjectProgress{Name: NoProject, Progress: avg, Width: models.ClampPercent(avg), KPIs: orphan.count})
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Progress.Cmp(out[j].Progress); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func CountByType(kpis []models.KPI) map[models.KPIType]int {
	out := make(map[models.KPIType]int, len(models.KPITypes))
	for _, t := range models.KPITypes {
		out[t] = 0
	}
	for _, k := range kpis {
		out[k.Type]++
	}
	return out
}

type Summary struct {
	KPIs           int                    `json:"kpis"`
	KPIsByType     map[models.KPIType]int `json:"kpis_por_tipo"`
	KPIsOnTarget   int                    `json:"kpis_en_meta"`
	Projects       int                    `json:"proyectos"`
	ActiveProjects int                    `json:"proyectos_activos"`
	Tasks          int                    `json:"tareas"`
	ActiveTasks    int                    `json:"tareas_activas"`
	CompletedTasks int                    `json:"tareas_completadas"`
	OverdueTasks   int                    `json:"tareas_vencidas"`
	LoggedHours    decimal.Decimal        `json:"horas_registradas"`
	Unread         int                    `json:"no_leidas"`
}

func Summarize(kpis []models.KPI, projects []models.Project, tasks []models.Task, unread int, today models.Date) Summary {
	s := Summary{
		KPIs:       len(kpis),
		KPIsByType: CountByType(kpis),
		Projects:   len(projects),
		Tasks:      len(tasks),
		Unread:     unread,
	}
	hundred := decimal.NewFromInt(100)
	for _, k := range kpis {
		if p, ok := k.Progress(); ok && p.GreaterThanOrEqual(hundred) {
			s.KPIsOnTarget++
		}
	}
	for _, p := range projects {
		if p.Active(today) {
			s.ActiveProjects++
		}
	}
	for _, t := range tasks {
		if t.State() == models.TaskCompleted {
			s.CompletedTasks++
		} else {
			s.ActiveTasks++
		}
		if t.Overdue(today) {
			s.OverdueTasks++
		}
		s.LoggedHours = s.LoggedHours.Add(t.TotalHours)
	}
	return s
}
