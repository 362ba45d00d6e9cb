package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_project_store.go -package=mocks inkwell/internal/storage ProjectStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProjectStore defines the interface for project storage operations.
type ProjectStore interface {
	// Create inserts a new project and sets its ID.
	Create(ctx context.Context, project *Project) error
	// Get gets a project by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id int64) (*Project, error)
	// List returns all projects, most recently updated first.
	List(ctx context.Context) ([]Project, error)
	// Update applies a partial update. Returns ErrNotFound if the project does not exist.
	Update(ctx context.Context, id int64, patch ProjectPatch) error
	// Delete removes a project and all of its items.
	Delete(ctx context.Context, id int64) error
	// MarkTemplateApplied records that templateID was materialized into the project.
	MarkTemplateApplied(ctx context.Context, id int64, templateID string, at time.Time) error
	// Stats computes aggregate figures for a project.
	Stats(ctx context.Context, id int64) (*ProjectStats, error)
}

// ProjectRepo provides methods for project operations.
type ProjectRepo struct {
	db DBTX
}

// NewProjectRepo creates a new ProjectRepo.
func NewProjectRepo(db DBTX) *ProjectRepo {
	return &ProjectRepo{db: db}
}

const projectColumns = "id, title, status, genre, target_word_count, writing_template, template_applied_at, created_at, updated_at"

// Create inserts a new project.
func (r *ProjectRepo) Create(ctx context.Context, project *Project) error {
	if project.Status == "" {
		project.Status = "draft"
	}
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (title, status, genre, target_word_count, writing_template, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.Title, project.Status, project.Genre, project.TargetWordCount, project.WritingTemplate, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read project id: %w", err)
	}
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now

	return nil
}

// Get gets a project by ID.
func (r *ProjectRepo) Get(ctx context.Context, id int64) (*Project, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	return project, nil
}

// List returns all projects ordered by last update.
func (r *ProjectRepo) List(ctx context.Context) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects ORDER BY updated_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

// Update applies a partial update to a project.
func (r *ProjectRepo) Update(ctx context.Context, id int64, patch ProjectPatch) error {
	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Genre != nil {
		sets = append(sets, "genre = ?")
		args = append(args, *patch.Genre)
	}
	if patch.TargetWordCount != nil {
		sets = append(sets, "target_word_count = ?")
		args = append(args, *patch.TargetWordCount)
	}
	if patch.WritingTemplate != nil {
		sets = append(sets, "writing_template = ?")
		args = append(args, *patch.WritingTemplate)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	return r.exec(ctx, "UPDATE projects SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
}

// Delete removes a project. Items go with it through the foreign key cascade.
func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete project items: %w", err)
	}
	return r.exec(ctx, "DELETE FROM projects WHERE id = ?", id)
}

// MarkTemplateApplied sets the project's template and the applied timestamp.
func (r *ProjectRepo) MarkTemplateApplied(ctx context.Context, id int64, templateID string, at time.Time) error {
	return r.exec(ctx,
		"UPDATE projects SET writing_template = ?, template_applied_at = ?, updated_at = ? WHERE id = ?",
		templateID, at.UTC(), time.Now().UTC(), id,
	)
}

// Stats aggregates item counts and word totals for a project.
// Nothing is cached: every call reads the current table state.
func (r *ProjectRepo) Stats(ctx context.Context, id int64) (*ProjectStats, error) {
	project, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &ProjectStats{
		ProjectID:       id,
		ItemsByType:     make(map[ItemType]int),
		TargetWordCount: project.TargetWordCount,
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT item_type, COUNT(*), COALESCE(SUM(word_count), 0)
		 FROM items WHERE project_id = ? GROUP BY item_type`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query project stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemType string
		var count, words int
		if err := rows.Scan(&itemType, &count, &words); err != nil {
			return nil, fmt.Errorf("failed to scan project stats: %w", err)
		}
		stats.ItemsByType[ItemType(itemType)] = count
		stats.TotalItems += count
		if ItemType(itemType) == ItemDocument {
			stats.TotalWords += words
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TargetWordCount > 0 {
		stats.Progress = float64(stats.TotalWords) / float64(stats.TargetWordCount)
	}

	return stats, nil
}

func (r *ProjectRepo) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read project write result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProject(row rowScanner) (*Project, error) {
	var (
		project              Project
		appliedAt            sql.NullString
		createdAt, updatedAt string
	)

	if err := row.Scan(
		&project.ID, &project.Title, &project.Status, &project.Genre, &project.TargetWordCount,
		&project.WritingTemplate, &appliedAt, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if appliedAt.Valid && appliedAt.String != "" {
		t, err := parseTimestamp(appliedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template_applied_at timestamp: %w", err)
		}
		project.TemplateAppliedAt = &t
	}
	if project.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	if project.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return &project, nil
}
