package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_project_service.go -package=mocks -mock_names=ProjectService=MockProjectService inkwell/internal/service ProjectService

import (
	"context"
	"strings"

	"inkwell/internal/contextutil"
	"inkwell/internal/storage"
	"inkwell/internal/templates"
)

// CreateProjectRequest represents a project creation request in the domain layer.
type CreateProjectRequest struct {
	Title           string
	Genre           string
	TargetWordCount int
	WritingTemplate string // Template id applied on first open, optional
}

// UpdateProjectRequest holds the project fields to change. Nil fields are left untouched.
type UpdateProjectRequest struct {
	Title           *string
	Status          *string
	Genre           *string
	TargetWordCount *int
	WritingTemplate *string
}

// ProjectService manages writing projects.
type ProjectService interface {
	// Create creates a new project.
	Create(ctx context.Context, req CreateProjectRequest) (*storage.Project, error)
	// Get returns a project by ID.
	Get(ctx context.Context, id int64) (*storage.Project, error)
	// List returns all projects, most recently updated first.
	List(ctx context.Context) ([]storage.Project, error)
	// Update changes project fields and returns the updated project.
	Update(ctx context.Context, id int64, req UpdateProjectRequest) (*storage.Project, error)
	// Delete removes a project and all of its items.
	Delete(ctx context.Context, id int64) error
	// Stats computes aggregate figures for a project.
	Stats(ctx context.Context, id int64) (*storage.ProjectStats, error)
}

var projectStatuses = map[string]bool{
	"draft":     true,
	"active":    true,
	"revising":  true,
	"completed": true,
	"archived":  true,
}

// projectService implements ProjectService.
type projectService struct {
	projects storage.ProjectStore
	catalog  *templates.Catalog
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects storage.ProjectStore, catalog *templates.Catalog) ProjectService {
	return &projectService{
		projects: projects,
		catalog:  catalog,
	}
}

// Create validates and stores a new project.
func (s *projectService) Create(ctx context.Context, req CreateProjectRequest) (*storage.Project, error) {
	logger := contextutil.LoggerFromContext(ctx)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if req.TargetWordCount < 0 {
		return nil, &ValidationError{Field: "target_word_count", Message: "cannot be negative"}
	}
	if err := s.checkTemplate(req.WritingTemplate); err != nil {
		return nil, err
	}

	project := &storage.Project{
		Title:           title,
		Genre:           strings.TrimSpace(req.Genre),
		TargetWordCount: req.TargetWordCount,
		WritingTemplate: req.WritingTemplate,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		logger.ErrorContext(ctx, "failed to create project", "error", err)
		return nil, WrapError(err, "failed to create project")
	}

	logger.InfoContext(ctx, "project created", "project_id", project.ID, "template", project.WritingTemplate)
	return project, nil
}

// Get returns a project by ID.
func (s *projectService) Get(ctx context.Context, id int64) (*storage.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to get project")
	}
	return project, nil
}

// List returns all projects.
func (s *projectService) List(ctx context.Context) ([]storage.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list projects", "error", err)
		return nil, WrapError(err, "failed to list projects")
	}
	return projects, nil
}

// Update validates and applies a partial project update.
func (s *projectService) Update(ctx context.Context, id int64, req UpdateProjectRequest) (*storage.Project, error) {
	logger := contextutil.LoggerFromContext(ctx)

	patch := storage.ProjectPatch{
		Genre:           req.Genre,
		TargetWordCount: req.TargetWordCount,
		WritingTemplate: req.WritingTemplate,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, &ValidationError{Field: "title", Message: "cannot be empty"}
		}
		patch.Title = &title
	}
	if req.Status != nil {
		if !projectStatuses[*req.Status] {
			return nil, &ValidationError{Field: "status", Message: "unknown status " + *req.Status}
		}
		patch.Status = req.Status
	}
	if req.TargetWordCount != nil && *req.TargetWordCount < 0 {
		return nil, &ValidationError{Field: "target_word_count", Message: "cannot be negative"}
	}
	if req.WritingTemplate != nil {
		if err := s.checkTemplate(*req.WritingTemplate); err != nil {
			return nil, err
		}
	}

	if err := s.projects.Update(ctx, id, patch); err != nil {
		if !isNotFound(err) {
			logger.ErrorContext(ctx, "failed to update project", "project_id", id, "error", err)
		}
		return nil, storeError(err, "failed to update project")
	}

	return s.Get(ctx, id)
}

// Delete removes a project and all of its items.
func (s *projectService) Delete(ctx context.Context, id int64) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.projects.Delete(ctx, id); err != nil {
		if !isNotFound(err) {
			logger.ErrorContext(ctx, "failed to delete project", "project_id", id, "error", err)
		}
		return storeError(err, "failed to delete project")
	}

	logger.InfoContext(ctx, "project deleted", "project_id", id)
	return nil
}

// Stats computes aggregate figures for a project.
func (s *projectService) Stats(ctx context.Context, id int64) (*storage.ProjectStats, error) {
	stats, err := s.projects.Stats(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to compute project stats")
	}
	return stats, nil
}

func (s *projectService) checkTemplate(id string) error {
	if id == "" {
		return nil
	}
	if _, ok := s.catalog.Get(id); !ok {
		return &ValidationError{Field: "writing_template", Message: "unknown template " + id}
	}
	return nil
}
