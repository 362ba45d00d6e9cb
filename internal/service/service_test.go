package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"inkwell/internal/service"
	"inkwell/internal/storage"
	"inkwell/internal/templates"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// testContext returns a context for testing.
// The default logger is already set to discard in init().
func testContext() context.Context {
	return context.Background()
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// testEnv wires the services over a migrated temp-dir database.
type testEnv struct {
	db        *sql.DB
	items     *storage.ItemRepo
	projects  *storage.ProjectRepo
	uow       *storage.UnitOfWork
	Projects  service.ProjectService
	Items     service.ItemService
	Templates service.TemplateService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "inkwell.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	env := &testEnv{
		db:       db,
		items:    storage.NewItemRepo(db),
		projects: storage.NewProjectRepo(db),
		uow:      storage.NewUnitOfWork(db),
	}
	env.Projects = service.NewProjectService(env.projects, templates.Default())
	env.Items = service.NewItemService(env.items, env.projects, env.uow)
	env.Templates = service.NewTemplateService(env.uow, templates.Default())
	return env
}

// newProject creates a project and fails the test on error.
func (e *testEnv) newProject(t *testing.T, title string) *storage.Project {
	t.Helper()
	project, err := e.Projects.Create(testContext(), service.CreateProjectRequest{Title: title})
	if err != nil {
		t.Fatalf("Projects.Create() error = %v", err)
	}
	return project
}

// newItem creates an item and fails the test on error.
func (e *testEnv) newItem(t *testing.T, req service.CreateItemRequest) *storage.Item {
	t.Helper()
	item, err := e.Items.Create(testContext(), req)
	if err != nil {
		t.Fatalf("Items.Create(%q) error = %v", req.Name, err)
	}
	return item
}

// listItems returns the project's stored items.
func (e *testEnv) listItems(t *testing.T, projectID int64) []storage.Item {
	t.Helper()
	items, err := e.items.ListByProject(testContext(), projectID)
	if err != nil {
		t.Fatalf("ListByProject() error = %v", err)
	}
	return items
}
