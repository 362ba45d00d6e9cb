package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/autosave"
	"inkwell/internal/contextutil"
	"inkwell/internal/service"
)

// Drafts buffers editor content until it is written.
type Drafts interface {
	Schedule(id, content string) error
	Flush(ctx context.Context) error
	Pending() int
}

// DraftHandler accepts editor drafts and hands them to the auto-saver.
type DraftHandler struct {
	items  service.ItemService
	drafts Drafts
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(items service.ItemService, drafts Drafts) *DraftHandler {
	return &DraftHandler{items: items, drafts: drafts}
}

// DraftRequest represents the HTTP request payload for a draft.
type DraftRequest struct {
	Content string `json:"content"`
}

// DraftResponse reports the auto-saver state after a request.
type DraftResponse struct {
	ItemID  string `json:"item_id,omitempty"`
	Pending int    `json:"pending"`
}

// Put handles PUT /api/items/{itemID}/draft. The content is saved once the item
// has been quiet for the auto-save delay.
func (h *DraftHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	id := chi.URLParam(r, "itemID")

	var req DraftRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.items.Get(ctx, id); err != nil {
		handleServiceError(ctx, w, err, "Failed to save draft")
		return
	}

	if err := h.drafts.Schedule(id, req.Content); err != nil {
		if errors.Is(err, autosave.ErrClosed) {
			writeError(w, http.StatusServiceUnavailable, "Server is shutting down")
			return
		}
		logger.ErrorContext(ctx, "failed to schedule draft", "item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save draft")
		return
	}

	writeJSON(ctx, w, http.StatusAccepted, DraftResponse{ItemID: id, Pending: h.drafts.Pending()})
}

// Flush handles POST /api/drafts/flush and writes every pending draft now.
func (h *DraftHandler) Flush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.drafts.Flush(ctx); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to flush drafts", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to flush drafts")
		return
	}

	writeJSON(ctx, w, http.StatusOK, DraftResponse{Pending: h.drafts.Pending()})
}
