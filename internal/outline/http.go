package outline

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ivankrstev/NojectServer-sub000/internal/httpmw"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// writeEngineErr maps engine errors onto status codes: absent rows are 404,
// indent/outdent boundaries 409, anything else is a persistence failure.
func writeEngineErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrTaskNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrMaxLevel), errors.Is(err, ErrMinLevel):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// Tasks handles /api/projects/{projectID}/tasks and everything below it:
//
//	GET    .../tasks                      ordered outline (no lock)
//	POST   .../tasks                      add task {prevTaskId?}
//	PUT    .../tasks/{taskID}             change value {value}
//	DELETE .../tasks/{taskID}             delete task
//	POST   .../tasks/{taskID}/indent      increase level
//	POST   .../tasks/{taskID}/outdent     decrease level
//	POST   .../tasks/{taskID}/complete    complete subtree
//	POST   .../tasks/{taskID}/uncomplete  uncomplete subtree
func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/projects/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) < 2 || parts[1] != "tasks" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	projectID := parts[0]

	switch len(parts) {
	case 2:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r, projectID)
		case http.MethodPost:
			h.add(w, r, projectID)
		default:
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return

	case 3, 4:
		taskID, err := strconv.Atoi(parts[2])
		if err != nil || taskID <= 0 {
			writeErr(w, http.StatusBadRequest, "invalid task id")
			return
		}
		if len(parts) == 3 {
			switch r.Method {
			case http.MethodPut:
				h.changeValue(w, r, projectID, taskID)
			case http.MethodDelete:
				h.delete(w, r, projectID, taskID)
			default:
				writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			}
			return
		}
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.action(w, r, projectID, taskID, parts[3])
		return

	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, projectID string) {
	tasks, err := h.engine.GetOrderedTasks(r.Context(), projectID)
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request, projectID string) {
	var req struct {
		PrevTaskID *int `json:"prevTaskId"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid body")
			return
		}
	}
	task, err := h.engine.AddTask(r.Context(), projectID, httpmw.UserFromContext(r.Context()), req.PrevTaskID)
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) changeValue(w http.ResponseWriter, r *http.Request, projectID string, taskID int) {
	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	task, err := h.engine.ChangeValue(r.Context(), projectID, taskID, req.Value)
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, projectID string, taskID int) {
	if err := h.engine.DeleteTask(r.Context(), projectID, taskID); err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": taskID})
}

func (h *Handler) action(w http.ResponseWriter, r *http.Request, projectID string, taskID int, action string) {
	var err error
	switch action {
	case "indent":
		err = h.engine.IncreaseLevel(r.Context(), projectID, taskID)
	case "outdent":
		err = h.engine.DecreaseLevel(r.Context(), projectID, taskID)
	case "complete":
		err = h.engine.CompleteTask(r.Context(), projectID, taskID, httpmw.UserFromContext(r.Context()))
	case "uncomplete":
		err = h.engine.UncompleteTask(r.Context(), projectID, taskID)
	default:
		writeErr(w, http.StatusNotFound, "unknown action: "+action)
		return
	}
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
