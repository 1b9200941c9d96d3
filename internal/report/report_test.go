package report

import (
	"testing"
	"time"

	"dashkpis/internal/models"

	"github.com/shopspring/decimal"
)

func kpi(project *int64, target, current string) models.KPI {
	k := models.KPI{Current: decimal.RequireFromString(current), Type: models.KPIFinancial, ProjectID: project}
	if target != "" {
		t := decimal.RequireFromString(target)
		k.Target = &t
	}
	return k
}

func ref(v int64) *int64 { return &v }

func TestProgressByProject(t *testing.T) {
	projects := []models.Project{{ID: 1, Name: "Beta"}, {ID: 2, Name: "Alfa"}, {ID: 3, Name: "Gamma"}}
	kpis := []models.KPI{
		kpi(ref(1), "100", "40"),
		kpi(ref(1), "100", "60"),
		kpi(ref(2), "10", "5"),
		kpi(ref(3), "0", "5"), // undefined progress
		kpi(nil, "50", "100"),
		kpi(ref(9), "100", "100"), // unknown project
	}

	got := ProgressByProject(kpis, projects)
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %+v", got)
	}
	if got[0].Name != NoProject || !got[0].Progress.Equal(decimal.NewFromInt(150)) || got[0].Width != 100 || got[0].KPIs != 2 {
		t.Errorf("first = %+v", got[0])
	}
	// ties on 50 are ordered by name
	if got[1].Name != "Alfa" || got[2].Name != "Beta" {
		t.Errorf("tie order: %s, %s", got[1].Name, got[2].Name)
	}
	if *got[2].ProjectID != 1 || got[2].KPIs != 2 {
		t.Errorf("beta = %+v", got[2])
	}
}

func TestSummarize(t *testing.T) {
	today := models.NewDate(2025, time.June, 15)
	past := models.DatePtr(models.NewDate(2025, time.June, 1))
	projects := []models.Project{
		{ID: 1, Start: past},
		{ID: 2},
	}
	tasks := []models.Task{
		{Status: models.StatusPending, Due: past, TotalHours: decimal.RequireFromString("1.5")},
		{Status: models.StatusCompleted, Due: past, TotalHours: decimal.RequireFromString("2")},
		{Status: models.StatusInProgress},
	}
	kpis := []models.KPI{kpi(nil, "10", "10"), kpi(nil, "10", "5"), kpi(nil, "", "5")}

	s := Summarize(kpis, projects, tasks, 4, today)
	if s.KPIs != 3 || s.KPIsOnTarget != 1 || s.KPIsByType[models.KPIFinancial] != 3 || s.KPIsByType[models.KPIMarketing] != 0 {
		t.Errorf("kpi figures: %+v", s)
	}
	if s.ActiveProjects != 1 || s.Projects != 2 {
		t.Errorf("project figures: %+v", s)
	}
	if s.ActiveTasks != 2 || s.CompletedTasks != 1 || s.OverdueTasks != 1 {
		t.Errorf("task figures: %+v", s)
	}
	if !s.LoggedHours.Equal(decimal.RequireFromString("3.5")) || s.Unread != 4 {
		t.Errorf("hours=%s unread=%d", s.LoggedHours, s.Unread)
	}
}
