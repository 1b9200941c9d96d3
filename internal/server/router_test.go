package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dashkpis/internal/config"
	"dashkpis/internal/demo"
	"dashkpis/internal/handlers"
	"dashkpis/internal/workspace"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type testApp struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	spaces *workspace.Registry
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b, err := demo.Seeded()
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{SessionSecret: "test-secret", Environment: "development"}
	spaces := workspace.NewRegistry(b, time.Hour, zap.NewNop())
	r := NewRouter(cfg, handlers.New(b, spaces, zap.NewNop()), spaces, zap.NewNop())

	srv := httptest.NewServer(r)
	jar, _ := cookiejar.New(nil)
	t.Cleanup(func() {
		srv.Close()
		spaces.Close()
	})
	return &testApp{t: t, srv: srv, client: &http.Client{Jar: jar}, spaces: spaces}
}

func (a *testApp) do(method, path string, body any) (int, map[string]any) {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	if err != nil {
		a.t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.client.Do(req)
	if err != nil {
		a.t.Fatal(err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out
}

func (a *testApp) login(email, password string) {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/login", map[string]any{"email": email, "password": password, "remember": true})
	if status != http.StatusOK {
		a.t.Fatalf("login %s: %d %v", email, status, body)
	}
}

func items(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()
	raw, ok := body["items"].([]any)
	if !ok {
		t.Fatalf("no items in %v", body)
	}
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		out = append(out, it.(map[string]any))
	}
	return out
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, body := app.do(http.MethodGet, "/health", nil)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", status, body)
	}
}

func TestRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	status, _ := app.do(http.MethodGet, "/kpis", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d", status)
	}
}

func TestFailedLoginWritesNothing(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.do(http.MethodPost, "/login", map[string]any{"email": "leidy@dashkpis.local", "password": "wrong", "remember": true})
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d", status)
	}
	_, body := app.do(http.MethodGet, "/session", nil)
	if body["usuario"] != nil || body["email_recordado"] != "" {
		t.Errorf("session after failed login: %v", body)
	}
	if app.spaces.Len() != 0 {
		t.Errorf("workspace mounted for failed login")
	}
}

func TestLoginRemembersEmailAcrossLogout(t *testing.T) {
	app := newTestApp(t)
	app.login("leidy@dashkpis.local", "Leidy123!")

	_, body := app.do(http.MethodGet, "/session", nil)
	user, ok := body["usuario"].(map[string]any)
	if !ok || user["email"] != "leidy@dashkpis.local" {
		t.Fatalf("session = %v", body)
	}

	app.do(http.MethodPost, "/logout", nil)
	_, body = app.do(http.MethodGet, "/session", nil)
	if body["usuario"] != nil || body["email_recordado"] != "leidy@dashkpis.local" {
		t.Errorf("session after logout = %v", body)
	}
	if app.spaces.Len() != 0 {
		t.Error("workspace not unmounted on logout")
	}
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(http.MethodPost, "/register", map[string]any{
		"nombre": "Ana", "username": "ana", "email": "ana@x.com",
		"password": "weak", "confirm_password": "weak", "rol": "PM",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d %v", status, body)
	}
	if _, ok := body["campos"].(map[string]any)["password"]; !ok {
		t.Errorf("expected password field error, got %v", body)
	}

	status, _ = app.do(http.MethodPost, "/register", map[string]any{
		"nombre": "Ana", "username": "ana", "email": "ana@x.com",
		"password": "Segura123!", "confirm_password": "Segura123!", "rol": "Colaborador",
	})
	if status != http.StatusCreated {
		t.Fatalf("register status = %d", status)
	}
	app.login("ana@x.com", "Segura123!")
}

func TestTaskCreateEditDeleteFlow(t *testing.T) {
	app := newTestApp(t)
	app.login("leidy@dashkpis.local", "Leidy123!")

	status, body := app.do(http.MethodGet, "/tasks", nil)
	if status != http.StatusOK || len(items(t, body)) != 3 {
		t.Fatalf("initial list = %d %v", status, body)
	}

	app.do(http.MethodPost, "/tasks/new", nil)
	status, body = app.do(http.MethodPost, "/tasks/draft/save", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("empty title saved: %d %v", status, body)
	}

	app.do(http.MethodPatch, "/tasks/draft", map[string]any{"titulo": "Design board", "id_proyecto": 1})
	status, body = app.do(http.MethodPost, "/tasks/draft/save", nil)
	if status != http.StatusCreated {
		t.Fatalf("save = %d %v", status, body)
	}
	created := body["item"].(map[string]any)
	if created["id_tarea"] != float64(4) || created["estado"] != "Pendiente" {
		t.Fatalf("created = %v", created)
	}
	if body["vista"].(map[string]any)["form_state"] != "closed" {
		t.Errorf("form not closed: %v", body["vista"])
	}

	status, body = app.do(http.MethodGet, "/tasks?q=design", nil)
	if status != http.StatusOK || len(items(t, body)) != 1 {
		t.Fatalf("filtered = %v", body)
	}

	app.do(http.MethodPost, "/tasks/4/detail", nil)
	status, _ = app.do(http.MethodPost, "/tasks/4/delete", nil)
	if status != http.StatusOK {
		t.Fatalf("request delete = %d", status)
	}
	status, body = app.do(http.MethodPost, "/tasks/delete/confirm", nil)
	if status != http.StatusOK {
		t.Fatalf("confirm = %d %v", status, body)
	}
	if _, open := body["vista"].(map[string]any)["detail"]; open {
		t.Error("detail still open after delete")
	}

	status, _ = app.do(http.MethodPost, "/tasks/delete/confirm", nil)
	if status != http.StatusConflict {
		t.Errorf("second confirm = %d", status)
	}
}

func TestTaskActions(t *testing.T) {
	app := newTestApp(t)
	app.login("nicolas@dashkpis.local", "Nicolas123!")
	app.do(http.MethodGet, "/tasks", nil)

	status, body := app.do(http.MethodPatch, "/tasks/2/progress", map[string]any{"progreso": 60})
	if status != http.StatusOK || body["item"].(map[string]any)["sin_guardar"] != true {
		t.Fatalf("slider = %d %v", status, body)
	}
	status, body = app.do(http.MethodPost, "/tasks/2/progress", nil)
	if status != http.StatusOK || body["item"].(map[string]any)["sin_guardar"] != nil {
		t.Fatalf("save progress = %d %v", status, body)
	}

	status, body = app.do(http.MethodPost, "/tasks/2/done", map[string]any{"completada": true})
	if status != http.StatusOK || body["item"].(map[string]any)["estado_tablero"] != "Completada" {
		t.Fatalf("done = %d %v", status, body)
	}

	status, body = app.do(http.MethodPost, "/tasks/2/time", map[string]any{"horas": "1.5", "nota": "revisión"})
	if status != http.StatusCreated {
		t.Fatalf("time = %d %v", status, body)
	}
	status, body = app.do(http.MethodGet, "/tasks/2/time", nil)
	if status != http.StatusOK || len(body["registros"].([]any)) != 1 {
		t.Fatalf("time logs = %d %v", status, body)
	}

	status, _ = app.do(http.MethodPost, "/tasks/2/time", map[string]any{"horas": 0})
	if status != http.StatusBadRequest {
		t.Errorf("zero hours = %d", status)
	}
	status, _ = app.do(http.MethodGet, "/tasks/2/time?desde=2026-02-10&hasta=2026-02-01", nil)
	if status != http.StatusBadRequest {
		t.Errorf("inverted range = %d", status)
	}
}

func TestKPIInlineEditAndProgress(t *testing.T) {
	app := newTestApp(t)
	app.login("leidy@dashkpis.local", "Leidy123!")

	status, body := app.do(http.MethodGet, "/kpis?tipo=Financiero&id_proyecto=1", nil)
	if status != http.StatusOK || len(items(t, body)) != 1 {
		t.Fatalf("filtered kpis = %d %v", status, body)
	}

	status, body = app.do(http.MethodPatch, "/kpis/1/current", map[string]any{"valor_actual": "80000"})
	if status != http.StatusOK {
		t.Fatalf("current = %d %v", status, body)
	}
	if w := body["item"].(map[string]any)["ancho"]; w != float64(80) {
		t.Errorf("width = %v", w)
	}
	status, _ = app.do(http.MethodPatch, "/kpis/1/current", map[string]any{"valor_actual": "-1"})
	if status != http.StatusBadRequest {
		t.Errorf("negative current = %d", status)
	}
	status, body = app.do(http.MethodPost, "/kpis/1/progress", nil)
	if status != http.StatusOK || body["item"].(map[string]any)["sin_guardar"] != nil {
		t.Fatalf("progress = %d %v", status, body)
	}

	status, _ = app.do(http.MethodPost, "/kpis/99/detail", nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown detail = %d", status)
	}
	status, _ = app.do(http.MethodPost, "/kpis/abc/detail", nil)
	if status != http.StatusBadRequest {
		t.Errorf("bad key = %d", status)
	}
}

func TestProjectPhaseAndRefreshScope(t *testing.T) {
	app := newTestApp(t)
	app.login("leidy@dashkpis.local", "Leidy123!")

	status, body := app.do(http.MethodGet, "/projects?fase=Finalizados", nil)
	if status != http.StatusOK {
		t.Fatalf("projects = %d", status)
	}
	got := items(t, body)
	if len(got) != 1 || got[0]["pm"] != "Leidy" {
		t.Errorf("finished projects = %v", got)
	}

	status, body = app.do(http.MethodPost, "/kpis/refresh?id_proyecto=2", nil)
	if status != http.StatusOK || len(items(t, body)) != 1 {
		t.Errorf("scoped refresh = %d %v", status, body)
	}
	status, _ = app.do(http.MethodPost, "/kpis/refresh?id_proyecto=x", nil)
	if status != http.StatusBadRequest {
		t.Errorf("bad scope = %d", status)
	}
}

func TestNotificationsAndDashboard(t *testing.T) {
	app := newTestApp(t)
	app.login("leidy@dashkpis.local", "Leidy123!")

	// поллер workspace может быть посреди запроса: тогда отдаётся кэшированный список
	var body map[string]any
	deadline := time.Now().Add(2 * time.Second)
	for {
		var status int
		status, body = app.do(http.MethodGet, "/notifications?refrescar=1", nil)
		if status == http.StatusOK && body["no_leidas"] == float64(1) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("notifications = %d %v", status, body)
		}
		time.Sleep(20 * time.Millisecond)
	}
	status, body := app.do(http.MethodPost, "/notifications/read-all", nil)
	if status != http.StatusOK || body["marcadas"] != float64(1) || body["no_leidas"] != float64(0) {
		t.Fatalf("read-all = %d %v", status, body)
	}

	status, body = app.do(http.MethodGet, "/dashboard", nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard = %d", status)
	}
	summary := body["resumen"].(map[string]any)
	if summary["kpis"] != float64(4) || summary["tareas"] != float64(3) {
		t.Errorf("summary = %v", summary)
	}
}

func TestAuditIsPMOnly(t *testing.T) {
	app := newTestApp(t)
	app.login("carolina@dashkpis.local", "Carolina123!")
	status, _ := app.do(http.MethodGet, "/audit", nil)
	if status != http.StatusForbidden {
		t.Fatalf("stakeholder audit = %d", status)
	}

	pm := newTestApp(t)
	pm.login("leidy@dashkpis.local", "Leidy123!")
	status, body := pm.do(http.MethodGet, "/audit", nil)
	if status != http.StatusOK || body["activo"] != false {
		t.Fatalf("pm audit = %d %v", status, body)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	app := newTestApp(t)
	req, _ := http.NewRequest(http.MethodGet, app.srv.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := app.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); !strings.EqualFold(got, "abc-123") {
		t.Errorf("request id = %q", got)
	}
}
