package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/autosave"
	"inkwell/internal/config"
	"inkwell/internal/http"
	"inkwell/internal/service"
	"inkwell/internal/storage"
	"inkwell/internal/templates"
)

// shutdownTimeout bounds in-flight requests and the final draft flush.
const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	catalog, err := templates.LoadFile(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load template catalog: %v", err)
	}
	slog.Info("Template catalog loaded", "templates", catalog.Len(), "path", cfg.TemplatesPath)

	// Create repository instances
	projectRepo := storage.NewProjectRepo(db)
	itemRepo := storage.NewItemRepo(db)
	uow := storage.NewUnitOfWork(db)

	projectService := service.NewProjectService(projectRepo, catalog)
	itemService := service.NewItemService(itemRepo, projectRepo, uow)
	templateService := service.NewTemplateService(uow, catalog)

	saver := autosave.New(itemService, cfg.AutosaveDelay, logger)

	router := http.NewRouter(&http.Deps{
		Projects:          projectService,
		Items:             itemService,
		Templates:         templateService,
		Drafts:            saver,
		DB:                db,
		AutoApplyTemplate: cfg.AutoApplyTemplate,
	})

	addr := ":" + cfg.APIPort
	srv := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Starting API server", "addr", addr, "autosave_delay", cfg.AutosaveDelay)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	// Drafts still waiting on their debounce timer are written before the database closes.
	if err := saver.Close(shutdownCtx); err != nil {
		slog.Error("Failed to save pending drafts", "error", err)
	}
}
