package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/ivankrstev/NojectServer-sub000/internal/config"
	"github.com/ivankrstev/NojectServer-sub000/internal/serverapp"
)

func main() {
	configPath := flag.String("config", "noject.yml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	app, err := serverapp.New(serverapp.Options{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	logger.Info("noject listening", "addr", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, app.Handler); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
