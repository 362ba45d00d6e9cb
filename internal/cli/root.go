// Package cli implements the inkwell command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"inkwell/internal/config"
	"inkwell/internal/service"
	"inkwell/internal/storage"
	"inkwell/internal/templates"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DBPath        string
	TemplatesPath string
	Format        string // "json" | "text"
	Verbose       bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the inkwell CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "inkwell",
		Short: "Inkwell - story projects from the command line",
		Long:  "Inspect and script writing projects: their item trees, story templates and word counts.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(cmd, opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database path (defaults to DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.TemplatesPath, "templates", "", "template catalog file (defaults to TEMPLATES_PATH or the built-in catalog)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(NewProjectCommand(opts))
	cmd.AddCommand(NewTemplateCommand(opts))
	cmd.AddCommand(NewTreeCommand(opts))
	cmd.AddCommand(NewLsCommand(opts))

	return cmd
}

// setupLogging keeps stdout free for command output.
func setupLogging(cmd *cobra.Command, verbose bool) {
	if !verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// app bundles the services a command works with.
type app struct {
	close     func() error
	projects  service.ProjectService
	items     service.ItemService
	templates service.TemplateService
}

// openApp opens the database and wires the services. Unset flags fall back to
// the environment configuration.
func openApp(opts *RootOptions) (*app, error) {
	dbPath, templatesPath := opts.DBPath, opts.TemplatesPath
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		dbPath = cfg.DBPath
		if templatesPath == "" {
			templatesPath = cfg.TemplatesPath
		}
	}

	catalog, err := templates.LoadFile(templatesPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := storage.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	projectRepo := storage.NewProjectRepo(db)
	itemRepo := storage.NewItemRepo(db)
	uow := storage.NewUnitOfWork(db)

	return &app{
		close:     db.Close,
		projects:  service.NewProjectService(projectRepo, catalog),
		items:     service.NewItemService(itemRepo, projectRepo, uow),
		templates: service.NewTemplateService(uow, catalog),
	}, nil
}

// withApp opens the services for the duration of fn.
func withApp(opts *RootOptions, fn func(*app) error) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.close()
	}()
	return fn(a)
}
