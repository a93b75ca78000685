package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ivankrstev/NojectServer-sub000/internal/config"
	"github.com/ivankrstev/NojectServer-sub000/internal/outline"
	"github.com/ivankrstev/NojectServer-sub000/internal/serverapp"
)

type testApp struct {
	handler http.Handler
	userID  string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	app, err := serverapp.New(serverapp.Options{
		Config: cfg,
		Store:  outline.NewMemoryStore(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("serverapp.New: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	return &testApp{handler: app.Handler, userID: "alice"}
}

func (a *testApp) json(method, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	return a.request(method, path, bytes.NewReader(b), "application/json")
}

func (a *testApp) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if a.userID != "" {
		req.Header.Set("X-User-Id", a.userID)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBodyMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode json body failed: %v body=%s", err, rec.Body.String())
	}
	return out
}

func (a *testApp) createProject(t *testing.T, name string) string {
	t.Helper()
	res := a.json(http.MethodPost, "/api/projects", map[string]any{"name": name})
	if res.Code != http.StatusCreated {
		t.Fatalf("create project expected 201, got %d body=%s", res.Code, res.Body.String())
	}
	id, _ := decodeBodyMap(t, res)["id"].(string)
	if id == "" {
		t.Fatalf("create project returned no id, body=%s", res.Body.String())
	}
	return id
}

func (a *testApp) listTasks(t *testing.T, projectID string) []map[string]any {
	t.Helper()
	res := a.request(http.MethodGet, "/api/projects/"+projectID+"/tasks", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("list tasks expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	var out struct {
		Tasks []map[string]any `json:"tasks"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode tasks failed: %v body=%s", err, res.Body.String())
	}
	return out.Tasks
}

func TestServer_HealthAndReadinessExposeRequestID(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		res := app.request(http.MethodGet, path, nil, "")
		if res.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d body=%s", path, res.Code, res.Body.String())
		}
		if rid := strings.TrimSpace(res.Header().Get("X-Request-Id")); rid == "" {
			t.Fatalf("%s missing X-Request-Id header", path)
		}
	}
}

func TestServer_ProjectLifecycle(t *testing.T) {
	app := newTestApp(t)

	id := app.createProject(t, "errands")

	res := app.request(http.MethodGet, "/api/projects/"+id, nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("get project expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	if name, _ := decodeBodyMap(t, res)["name"].(string); name != "errands" {
		t.Fatalf("expected project name errands, body=%s", res.Body.String())
	}

	listRes := app.request(http.MethodGet, "/api/projects", nil, "")
	if listRes.Code != http.StatusOK {
		t.Fatalf("list projects expected 200, got %d body=%s", listRes.Code, listRes.Body.String())
	}
	if !strings.Contains(listRes.Body.String(), id) {
		t.Fatalf("expected project list to include %s, body=%s", id, listRes.Body.String())
	}

	delRes := app.request(http.MethodDelete, "/api/projects/"+id, nil, "")
	if delRes.Code != http.StatusOK {
		t.Fatalf("delete project expected 200, got %d body=%s", delRes.Code, delRes.Body.String())
	}

	res = app.request(http.MethodGet, "/api/projects/"+id, nil, "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("get deleted project expected 404, got %d", res.Code)
	}
}

func TestServer_OutlineRoundTrip(t *testing.T) {
	app := newTestApp(t)
	id := app.createProject(t, "trip")

	// Two top-level tasks.
	for i := 0; i < 2; i++ {
		res := app.json(http.MethodPost, "/api/projects/"+id+"/tasks", map[string]any{})
		if res.Code != http.StatusCreated {
			t.Fatalf("add task expected 201, got %d body=%s", res.Code, res.Body.String())
		}
	}

	// Name them and nest the second under the first.
	for taskID, value := range map[int]string{1: "book flights", 2: "compare fares"} {
		res := app.json(http.MethodPut, fmt.Sprintf("/api/projects/%s/tasks/%d", id, taskID), map[string]any{"value": value})
		if res.Code != http.StatusOK {
			t.Fatalf("change value expected 200, got %d body=%s", res.Code, res.Body.String())
		}
	}
	if res := app.request(http.MethodPost, "/api/projects/"+id+"/tasks/2/indent", nil, ""); res.Code != http.StatusOK {
		t.Fatalf("indent expected 200, got %d body=%s", res.Code, res.Body.String())
	}

	// Completing the only child completes the parent.
	if res := app.request(http.MethodPost, "/api/projects/"+id+"/tasks/2/complete", nil, ""); res.Code != http.StatusOK {
		t.Fatalf("complete expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	tasks := app.listTasks(t, id)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if done, _ := task["completed"].(bool); !done {
			t.Fatalf("expected every task completed after cascade, task=%v", task)
		}
		if by, _ := task["completedBy"].(string); by != "alice" {
			t.Fatalf("expected completedBy alice, task=%v", task)
		}
	}

	// Adding under a completed parent clears it again.
	addRes := app.json(http.MethodPost, "/api/projects/"+id+"/tasks", map[string]any{"prevTaskId": 1})
	if addRes.Code != http.StatusCreated {
		t.Fatalf("nested add expected 201, got %d body=%s", addRes.Code, addRes.Body.String())
	}
	tasks = app.listTasks(t, id)
	if done, _ := tasks[0]["completed"].(bool); done {
		t.Fatalf("expected parent uncompleted after nested add, task=%v", tasks[0])
	}

	// Deleting the parent promotes its subtree.
	if res := app.request(http.MethodDelete, "/api/projects/"+id+"/tasks/1", nil, ""); res.Code != http.StatusOK {
		t.Fatalf("delete task expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	tasks = app.listTasks(t, id)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks after delete, got %d", len(tasks))
	}
	for _, task := range tasks {
		if lvl, _ := task["level"].(float64); lvl != 0 {
			t.Fatalf("expected promoted task at level 0, task=%v", task)
		}
	}
}

func TestServer_ErrorMapping(t *testing.T) {
	app := newTestApp(t)
	id := app.createProject(t, "solo")

	if res := app.json(http.MethodPost, "/api/projects/"+id+"/tasks", map[string]any{}); res.Code != http.StatusCreated {
		t.Fatalf("add task expected 201, got %d body=%s", res.Code, res.Body.String())
	}

	if res := app.request(http.MethodPost, "/api/projects/"+id+"/tasks/1/indent", nil, ""); res.Code != http.StatusConflict {
		t.Fatalf("indent of first task expected 409, got %d", res.Code)
	}
	if res := app.request(http.MethodDelete, "/api/projects/"+id+"/tasks/42", nil, ""); res.Code != http.StatusNotFound {
		t.Fatalf("delete of unknown task expected 404, got %d", res.Code)
	}
	if res := app.request(http.MethodGet, "/api/projects/ghost/tasks", nil, ""); res.Code != http.StatusNotFound {
		t.Fatalf("tasks of unknown project expected 404, got %d", res.Code)
	}
}
