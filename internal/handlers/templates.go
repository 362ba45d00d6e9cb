package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/contextutil"
	"inkwell/internal/service"
)

// TemplateHandler handles HTTP requests for story templates.
type TemplateHandler struct {
	templates service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templates service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// TemplateSummaryResponse describes a template in a selection list.
type TemplateSummaryResponse struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Items       int    `json:"items"`
}

// BeatResponse is one beat of a template.
type BeatResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// EntryResponse is a top-level template entry. Groups carry beats.
type EntryResponse struct {
	Name    string         `json:"name"`
	Content string         `json:"content,omitempty"`
	Color   string         `json:"color,omitempty"`
	Icon    string         `json:"icon,omitempty"`
	Beats   []BeatResponse `json:"beats,omitempty"`
}

// TemplateResponse is the full outline of a template.
type TemplateResponse struct {
	TemplateSummaryResponse
	Entries []EntryResponse `json:"entries"`
}

// ApplyTemplateRequest represents the HTTP request payload for applying a template.
type ApplyTemplateRequest struct {
	TemplateID    string `json:"template_id"`
	ClearExisting bool   `json:"clear_existing"`
}

// ApplyTemplateResponse reports what a template application changed.
type ApplyTemplateResponse struct {
	TemplateID       string `json:"template_id"`
	FoldersCreated   int    `json:"folders_created"`
	DocumentsCreated int    `json:"documents_created"`
	ItemsRemoved     int64  `json:"items_removed"`
}

// List handles GET /api/templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries := h.templates.List()

	resp := make([]TemplateSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, TemplateSummaryResponse{
			ID:          s.ID,
			Label:       s.Label,
			Description: s.Description,
			Icon:        s.Icon,
			Items:       s.Items,
		})
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Get handles GET /api/templates/{templateID}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tmpl, err := h.templates.Get(chi.URLParam(r, "templateID"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get template")
		return
	}

	resp := TemplateResponse{
		TemplateSummaryResponse: TemplateSummaryResponse{
			ID:          tmpl.ID,
			Label:       tmpl.Label,
			Description: tmpl.Description,
			Icon:        tmpl.Icon,
			Items:       tmpl.ItemCount(),
		},
		Entries: make([]EntryResponse, 0, len(tmpl.Entries)),
	}
	for _, e := range tmpl.Entries {
		entry := EntryResponse{Name: e.Name, Content: e.Content, Color: e.Color, Icon: e.Icon}
		for _, b := range e.Beats {
			entry.Beats = append(entry.Beats, BeatResponse{Name: b.Name, Content: b.Content})
		}
		resp.Entries = append(resp.Entries, entry)
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// Apply handles POST /api/projects/{projectID}/template.
func (h *TemplateHandler) Apply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	projectID, err := projectIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	var req ApplyTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.templates.Apply(ctx, service.ApplyTemplateRequest{
		ProjectID:     projectID,
		TemplateID:    req.TemplateID,
		ClearExisting: req.ClearExisting,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to apply template")
		return
	}

	writeJSON(ctx, w, http.StatusOK, ApplyTemplateResponse{
		TemplateID:       result.TemplateID,
		FoldersCreated:   result.FoldersCreated,
		DocumentsCreated: result.DocumentsCreated,
		ItemsRemoved:     result.ItemsRemoved,
	})
}
