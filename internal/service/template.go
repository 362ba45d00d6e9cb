package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_template_service.go -package=mocks -mock_names=TemplateService=MockTemplateService inkwell/internal/service TemplateService

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/contextutil"
	"inkwell/internal/storage"
	"inkwell/internal/templates"
)

// ApplyTemplateRequest represents a template application request in the domain layer.
type ApplyTemplateRequest struct {
	ProjectID     int64
	TemplateID    string
	ClearExisting bool // Delete every item of the project first
}

// ApplyResult reports what a template application changed.
type ApplyResult struct {
	TemplateID       string
	FoldersCreated   int
	DocumentsCreated int
	ItemsRemoved     int64
}

// TemplateService lists story templates and materializes them into projects.
type TemplateService interface {
	// List returns summaries of every available template.
	List() []templates.Summary
	// Get returns a template by ID.
	Get(id string) (*templates.Template, error)
	// Apply creates the template's folders and documents in a project. All of the
	// changes are made in one transaction; on error the project is left as it was.
	// Applying twice without ClearExisting duplicates the structure.
	Apply(ctx context.Context, req ApplyTemplateRequest) (*ApplyResult, error)
	// EnsureApplied applies the project's writing template if it has one, has
	// never been applied and the project holds no items. It reports whether
	// anything was created.
	EnsureApplied(ctx context.Context, projectID int64) (bool, error)
}

// templateService implements TemplateService.
type templateService struct {
	tx      storage.TxRunner
	catalog *templates.Catalog
	now     func() time.Time
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(tx storage.TxRunner, catalog *templates.Catalog) TemplateService {
	return &templateService{
		tx:      tx,
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// List returns the catalog summaries.
func (s *templateService) List() []templates.Summary {
	return s.catalog.List()
}

// Get returns a template by ID.
func (s *templateService) Get(id string) (*templates.Template, error) {
	tmpl, ok := s.catalog.Get(id)
	if !ok {
		return nil, fmt.Errorf("template %q: %w", id, ErrNotFound)
	}
	return tmpl, nil
}

// Apply materializes a template into a project.
func (s *templateService) Apply(ctx context.Context, req ApplyTemplateRequest) (*ApplyResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.TemplateID == "" {
		return nil, &ValidationError{Field: "template_id", Message: "cannot be empty"}
	}
	tmpl, err := s.Get(req.TemplateID)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{TemplateID: tmpl.ID}
	err = s.tx.RunInTx(ctx, func(st storage.Stores) error {
		if _, err := st.Projects.Get(ctx, req.ProjectID); err != nil {
			return storeError(err, "project")
		}
		if req.ClearExisting {
			removed, err := st.Items.DeleteByProject(ctx, req.ProjectID)
			if err != nil {
				return fmt.Errorf("failed to clear project items: %w", err)
			}
			result.ItemsRemoved = removed
		}
		return s.instantiate(ctx, st, req.ProjectID, tmpl, result)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		logger.ErrorContext(ctx, "failed to apply template, changes rolled back",
			"project_id", req.ProjectID, "template", tmpl.ID, "error", err)
		return nil, WrapError(err, "failed to apply template")
	}

	logger.InfoContext(ctx, "template applied",
		"project_id", req.ProjectID,
		"template", tmpl.ID,
		"folders", result.FoldersCreated,
		"documents", result.DocumentsCreated,
		"removed", result.ItemsRemoved,
	)
	return result, nil
}

// EnsureApplied applies a project's writing template on first open.
func (s *templateService) EnsureApplied(ctx context.Context, projectID int64) (bool, error) {
	logger := contextutil.LoggerFromContext(ctx)

	applied := false
	var templateID string
	err := s.tx.RunInTx(ctx, func(st storage.Stores) error {
		project, err := st.Projects.Get(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		if project.WritingTemplate == "" || project.TemplateAppliedAt != nil {
			return nil
		}
		templateID = project.WritingTemplate

		tmpl, ok := s.catalog.Get(templateID)
		if !ok {
			logger.WarnContext(ctx, "project references unknown template, skipping",
				"project_id", projectID, "template", templateID)
			return nil
		}

		existing, err := st.Items.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		applied = true
		return s.instantiate(ctx, st, projectID, tmpl, &ApplyResult{TemplateID: tmpl.ID})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, err
		}
		logger.ErrorContext(ctx, "failed to auto-apply template", "project_id", projectID, "error", err)
		return false, WrapError(err, "failed to apply template")
	}

	if applied {
		logger.InfoContext(ctx, "writing template auto-applied", "project_id", projectID, "template", templateID)
	}
	return applied, nil
}

// instantiate creates one folder per group with a document per beat, and a
// top-level document per standalone beat. Top-level order follows the template;
// documents inside a folder are numbered from 0. Guidance text is copied
// verbatim and does not count towards the project's words.
func (s *templateService) instantiate(ctx context.Context, st storage.Stores, projectID int64, tmpl *templates.Template, result *ApplyResult) error {
	for i, entry := range tmpl.Entries {
		if !entry.IsGroup() {
			doc := &storage.Item{
				ProjectID:  projectID,
				ItemType:   storage.ItemDocument,
				Name:       entry.Name,
				Content:    entry.Content,
				OrderIndex: i,
			}
			if err := st.Items.Create(ctx, doc); err != nil {
				return fmt.Errorf("failed to create document %q: %w", entry.Name, err)
			}
			result.DocumentsCreated++
			continue
		}

		folder := &storage.Item{
			ProjectID:  projectID,
			ItemType:   storage.ItemFolder,
			Name:       entry.Name,
			OrderIndex: i,
			Color:      entry.Color,
			Icon:       entry.Icon,
		}
		if err := st.Items.Create(ctx, folder); err != nil {
			return fmt.Errorf("failed to create folder %q: %w", entry.Name, err)
		}
		result.FoldersCreated++

		for j, beat := range entry.Beats {
			parentID := folder.ID
			doc := &storage.Item{
				ProjectID:    projectID,
				ParentItemID: &parentID,
				ItemType:     storage.ItemDocument,
				Name:         beat.Name,
				Content:      beat.Content,
				OrderIndex:   j,
				DepthLevel:   1,
			}
			if err := st.Items.Create(ctx, doc); err != nil {
				return fmt.Errorf("failed to create document %q: %w", beat.Name, err)
			}
			result.DocumentsCreated++
		}
	}

	if err := st.Projects.MarkTemplateApplied(ctx, projectID, tmpl.ID, s.now()); err != nil {
		return fmt.Errorf("failed to record template: %w", err)
	}
	return nil
}
