package project

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ivankrstev/NojectServer-sub000/internal/httpmw"
	"github.com/ivankrstev/NojectServer-sub000/internal/outline"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// Root handles /api/projects: GET lists the caller's projects, POST
// creates one.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		owner := httpmw.UserFromContext(r.Context())
		if owner == "anonymous" {
			owner = ""
		}
		projects, err := h.svc.List(r.Context(), owner)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"projects": projects})

	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeErr(w, http.StatusBadRequest, "name is required")
			return
		}
		p, err := h.svc.Create(r.Context(), strings.TrimSpace(req.Name), httpmw.UserFromContext(r.Context()))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, p)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Sub handles /api/projects/{id}: GET fetches, DELETE drops the project
// together with its outline.
func (h *Handler) Sub(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/projects/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, outline.ErrProjectNotFound) {
				writeErr(w, http.StatusNotFound, "project not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodDelete:
		if err := h.svc.Delete(r.Context(), id); err != nil {
			if errors.Is(err, outline.ErrProjectNotFound) {
				writeErr(w, http.StatusNotFound, "project not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
