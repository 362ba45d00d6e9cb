package handlers

import (
	"net/http"
	"time"

	"inkwell/internal/contextutil"
	"inkwell/internal/service"
	"inkwell/internal/storage"
)

// ProjectHandler handles HTTP requests for projects.
type ProjectHandler struct {
	projects service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// CreateProjectRequest represents the HTTP request payload for creating a project.
type CreateProjectRequest struct {
	Title           string `json:"title"`
	Genre           string `json:"genre"`
	TargetWordCount int    `json:"target_word_count"`
	WritingTemplate string `json:"writing_template"`
}

// UpdateProjectRequest represents the HTTP request payload for updating a project.
// Omitted fields are left untouched.
type UpdateProjectRequest struct {
	Title           *string `json:"title"`
	Status          *string `json:"status"`
	Genre           *string `json:"genre"`
	TargetWordCount *int    `json:"target_word_count"`
	WritingTemplate *string `json:"writing_template"`
}

// ProjectResponse is the JSON form of a project.
type ProjectResponse struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Status            string     `json:"status"`
	Genre             string     `json:"genre,omitempty"`
	TargetWordCount   int        `json:"target_word_count"`
	WritingTemplate   string     `json:"writing_template,omitempty"`
	TemplateAppliedAt *time.Time `json:"template_applied_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// StatsResponse is the JSON form of project statistics.
type StatsResponse struct {
	ProjectID       int64          `json:"project_id"`
	TotalItems      int            `json:"total_items"`
	ItemsByType     map[string]int `json:"items_by_type"`
	TotalWords      int            `json:"total_words"`
	TargetWordCount int            `json:"target_word_count"`
	Progress        float64        `json:"progress"`
}

func toProjectResponse(p *storage.Project) ProjectResponse {
	return ProjectResponse{
		ID:                p.ID,
		Title:             p.Title,
		Status:            p.Status,
		Genre:             p.Genre,
		TargetWordCount:   p.TargetWordCount,
		WritingTemplate:   p.WritingTemplate,
		TemplateAppliedAt: p.TemplateAppliedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, err := h.projects.List(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list projects")
		return
	}

	resp := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		resp = append(resp, toProjectResponse(&projects[i]))
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projects.Create(ctx, service.CreateProjectRequest{
		Title:           req.Title,
		Genre:           req.Genre,
		TargetWordCount: req.TargetWordCount,
		WritingTemplate: req.WritingTemplate,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to create project")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, toProjectResponse(project))
}

// Get handles GET /api/projects/{projectID}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := projectIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	project, err := h.projects.Get(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get project")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toProjectResponse(project))
}

// Update handles PATCH /api/projects/{projectID}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := projectIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	var req UpdateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projects.Update(ctx, id, service.UpdateProjectRequest{
		Title:           req.Title,
		Status:          req.Status,
		Genre:           req.Genre,
		TargetWordCount: req.TargetWordCount,
		WritingTemplate: req.WritingTemplate,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update project")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toProjectResponse(project))
}

// Delete handles DELETE /api/projects/{projectID}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := projectIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	if err := h.projects.Delete(ctx, id); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/projects/{projectID}/stats.
func (h *ProjectHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := projectIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	stats, err := h.projects.Stats(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to compute project stats")
		return
	}

	byType := make(map[string]int, len(stats.ItemsByType))
	for k, v := range stats.ItemsByType {
		byType[string(k)] = v
	}
	writeJSON(ctx, w, http.StatusOK, StatsResponse{
		ProjectID:       stats.ProjectID,
		TotalItems:      stats.TotalItems,
		ItemsByType:     byType,
		TotalWords:      stats.TotalWords,
		TargetWordCount: stats.TargetWordCount,
		Progress:        stats.Progress,
	})
}
