package handlers

import (
	"context"
	"net/http"

	"inkwell/internal/service"
)

// TreeHandler serves a project's item hierarchy. When autoApply is set, opening
// a project that has a writing template but no items first materializes the
// template.
type TreeHandler struct {
	items     service.ItemService
	templates service.TemplateService
	autoApply bool
}

// NewTreeHandler creates a new TreeHandler.
func NewTreeHandler(items service.ItemService, templates service.TemplateService, autoApply bool) *TreeHandler {
	return &TreeHandler{
		items:     items,
		templates: templates,
		autoApply: autoApply,
	}
}

// TreeResponse is the full item forest of a project.
type TreeResponse struct {
	ProjectID int64          `json:"project_id"`
	Count     int            `json:"count"`
	Roots     []NodeResponse `json:"roots"`
}

// CrumbResponse is one breadcrumb entry.
type CrumbResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FolderResponse is the content of one folder with the path leading to it.
type FolderResponse struct {
	ProjectID   int64           `json:"project_id"`
	FolderID    string          `json:"folder_id"`
	Breadcrumbs []CrumbResponse `json:"breadcrumbs"`
	Items       []NodeResponse  `json:"items"`
}

// Tree handles GET /api/projects/{projectID}/tree.
func (h *TreeHandler) Tree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, err := projectIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}
	if err := h.ensureTemplate(ctx, projectID); err != nil {
		handleServiceError(ctx, w, err, "Failed to load project tree")
		return
	}

	forest, err := h.items.Tree(ctx, projectID)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load project tree")
		return
	}

	writeJSON(ctx, w, http.StatusOK, TreeResponse{
		ProjectID: projectID,
		Count:     forest.Len(),
		Roots:     toNodeResponses(forest),
	})
}

// Folder handles GET /api/projects/{projectID}/folder?id=... An omitted id shows
// the top level.
func (h *TreeHandler) Folder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, err := projectIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}
	if err := h.ensureTemplate(ctx, projectID); err != nil {
		handleServiceError(ctx, w, err, "Failed to load folder")
		return
	}

	view, err := h.items.Folder(ctx, projectID, r.URL.Query().Get("id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load folder")
		return
	}

	crumbs := make([]CrumbResponse, 0, len(view.Breadcrumbs))
	for _, c := range view.Breadcrumbs {
		crumbs = append(crumbs, CrumbResponse{ID: c.ID, Name: c.Name})
	}
	writeJSON(ctx, w, http.StatusOK, FolderResponse{
		ProjectID:   projectID,
		FolderID:    view.FolderID,
		Breadcrumbs: crumbs,
		Items:       toNodeResponses(view.Items),
	})
}

func (h *TreeHandler) ensureTemplate(ctx context.Context, projectID int64) error {
	if !h.autoApply {
		return nil
	}
	_, err := h.templates.EnsureApplied(ctx, projectID)
	return err
}
