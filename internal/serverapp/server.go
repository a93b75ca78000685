package serverapp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ivankrstev/NojectServer-sub000/internal/config"
	"github.com/ivankrstev/NojectServer-sub000/internal/httpmw"
	"github.com/ivankrstev/NojectServer-sub000/internal/outline"
	"github.com/ivankrstev/NojectServer-sub000/internal/project"
	"github.com/ivankrstev/NojectServer-sub000/internal/realtime"
)

type Options struct {
	Config *config.Config

	// Store overrides the badger store built from Config. Tests inject a
	// MemoryStore here.
	Store outline.Store

	Logger *slog.Logger
}

// App bundles the wired service: HTTP handler, engine, hub and store.
type App struct {
	Handler http.Handler
	Engine  *outline.Engine
	Hub     *realtime.Hub

	store outline.Store
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = outline.OpenBadger(outline.BadgerConfig{
			Path:       opts.Config.Storage.DataDir,
			InMemory:   opts.Config.Storage.InMemory,
			SyncWrites: opts.Config.Storage.SyncWrites,
		})
		if err != nil {
			return nil, err
		}
	}

	engine := outline.NewEngine(store, opts.Logger)
	hub := realtime.NewHub(opts.Logger)
	engine.SetBroadcaster(hub)

	projectSvc := project.NewService(store, engine.Gate(), opts.Logger)
	projectHandler := project.NewHandler(projectSvc)
	outlineHandler := outline.NewHandler(engine)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "noject",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		tx, err := store.Begin(r.Context())
		if err == nil {
			_, err = tx.Projects()
			_ = tx.Rollback()
		}
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "noject",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/api/projects", projectHandler.Root)
	mux.HandleFunc("/api/projects/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/projects/")
		parts := strings.Split(strings.Trim(rest, "/"), "/")
		switch {
		case len(parts) >= 2 && parts[1] == "tasks":
			outlineHandler.Tasks(w, r)
		case len(parts) == 2 && parts[1] == "ws":
			hub.Serve(w, r, parts[0])
		case len(parts) == 1 && parts[0] != "":
			projectHandler.Sub(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	handler := httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithUser,
		httpmw.WithRecover(opts.Logger),
	)

	return &App{
		Handler: handler,
		Engine:  engine,
		Hub:     hub,
		store:   store,
	}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
