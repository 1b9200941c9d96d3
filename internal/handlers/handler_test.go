package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dashkpis/internal/api"
	"dashkpis/internal/crud"
	"dashkpis/internal/models"
	"dashkpis/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestFailStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(nil, nil, zap.NewNop())

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", validation.FieldErrors{"titulo": "es obligatorio"}, http.StatusBadRequest},
		{"busy", crud.ErrBusy, http.StatusConflict},
		{"nothing pending", crud.ErrNothingPending, http.StatusConflict},
		{"placeholder", fmt.Errorf("tmp-x: %w", crud.ErrNotPersisted), http.StatusConflict},
		{"stale", fmt.Errorf("7: %w", crud.ErrNotFound), http.StatusNotFound},
		{"unmounted", crud.ErrClosed, http.StatusGone},
		{"backend 401", &api.Error{Status: http.StatusUnauthorized}, http.StatusUnauthorized},
		{"backend 500", &api.Error{Status: http.StatusInternalServerError, Body: "boom"}, http.StatusBadGateway},
		{"canceled", context.Canceled, 499},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			h.fail(c, tc.err)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestMergeJSONKeepsAbsentFields(t *testing.T) {
	desc := "Estructura inicial"
	pid := int64(1)
	task := models.Task{
		Title:       "Diseñar tablero",
		Description: &desc,
		ProjectID:   &pid,
		Priority:    models.PriorityHigh,
		Progress:    decimal.NewFromInt(45),
	}

	if err := mergeJSON(&task, []byte(`{"titulo":"Design board","id_proyecto":null}`)); err != nil {
		t.Fatal(err)
	}
	if task.Title != "Design board" || task.ProjectID != nil {
		t.Errorf("patched fields not applied: %+v", task)
	}
	if task.Description == nil || *task.Description != "Estructura inicial" || task.Priority != models.PriorityHigh {
		t.Errorf("absent fields changed: %+v", task)
	}
	if pid != 1 {
		t.Error("patch wrote through the old pointer")
	}
}

func TestMergeJSONRejectsBadBody(t *testing.T) {
	kpi := models.KPI{Name: "Ventas"}
	if err := mergeJSON(&kpi, []byte(`{"valor_actual":"abc"}`)); err == nil {
		t.Fatal("expected decode error")
	}
	if kpi.Name != "Ventas" {
		t.Errorf("draft changed on failed merge: %+v", kpi)
	}
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"leidy@dashkpis.local": "le***@dashkpis.local",
		"ab@x.com":             "ab***@x.com",
		"nope":                 "***",
	}
	for in, want := range cases {
		if got := maskEmail(in); got != want {
			t.Errorf("maskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
