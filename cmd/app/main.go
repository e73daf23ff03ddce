package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"baseserver/internal/app"
	"baseserver/internal/config"
	"baseserver/internal/http/server"
)

const (
	envDev   = "dev"
	envProd  = "prod"
	envLocal = "local"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting application", "env", cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application := app.NewApp(log, cfg)
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("failed to close app", slog.String("error", err.Error()))
		}
	}()

	err := server.StartServer(ctx, &cfg.HTTPServer, cfg.Uploads, log,
		application.TableService,
		application.AuthService,
		application.UserService,
		application.FileService,
	)
	if err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
