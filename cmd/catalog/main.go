package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"game_catalog/internal/clients/feeds"
	"game_catalog/internal/config"
	"game_catalog/internal/routes"
	"game_catalog/internal/scheduler"
	"game_catalog/internal/services"
	"game_catalog/internal/storage/sqlstore"
	"game_catalog/internal/storage/static"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env, cfg.Log)

	log.Info("starting game catalog",
		slog.String("env", cfg.Env),
		slog.String("driver", cfg.Database.Driver))

	storage, err := sqlstore.New(cfg.Database, log)
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := storage.Close(); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if err := storage.Migrate(); err != nil {
		log.Error("migration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("database init")

	assets, err := static.New(cfg.StaticPath)
	if err != nil {
		log.Error("failed to prepare static folder", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gameService := services.NewGameService(storage, log)
	feedClient := feeds.New(log, cfg.Import.Timeout, cfg.Import.UserAgent)
	importer := services.NewImporter(feedClient, gameService, cfg.Import, log)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sched, err := scheduler.New(importer, cfg.Import.Interval, log)
	if err != nil {
		log.Error("failed to create scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := sched.Start(ctx); err != nil {
		log.Error("failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := routes.SetupRouter(log, storage, gameService, importer, assets, cfg.Cors)

	log.Info("routes init")

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("listening", slog.String("address", cfg.Address))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		log.Error("server error", slog.String("error", err.Error()))

	case sig := <-shutdown:
		log.Info("shutting down", slog.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown error", slog.String("error", err.Error()))
			if err := server.Close(); err != nil {
				log.Error("force shutdown error", slog.String("error", err.Error()))
			}
		}
	}

	stop()
	if err := sched.Shutdown(); err != nil {
		log.Error("scheduler shutdown error", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

func setupLogger(env string, cfg config.Log) *slog.Logger {
	var w io.Writer = os.Stdout
	if strings.TrimSpace(cfg.File) != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	}

	var log *slog.Logger
	switch env {
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
	return log
}

// @title Game Catalog API
// @version 1.0
// @description CRUD and bulk import for the mobile games catalog

// @host localhost:3000
// @BasePath /api
