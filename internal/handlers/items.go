package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/contextutil"
	"inkwell/internal/service"
	"inkwell/internal/storage"
)

// ItemHandler handles HTTP requests for individual items.
type ItemHandler struct {
	items service.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(items service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// CreateItemRequest represents the HTTP request payload for creating an item.
type CreateItemRequest struct {
	ParentItemID string         `json:"parent_item_id"`
	ItemType     string         `json:"item_type"`
	Name         string         `json:"name"`
	Content      string         `json:"content"`
	Metadata     map[string]any `json:"metadata"`
	OrderIndex   *int           `json:"order_index"`
	Color        string         `json:"color"`
	Icon         string         `json:"icon"`
}

// UpdateItemRequest represents the HTTP request payload for updating an item.
// Omitted fields are left untouched; "parent_item_id": "" moves the item to the top level.
type UpdateItemRequest struct {
	ParentItemID *string        `json:"parent_item_id"`
	Name         *string        `json:"name"`
	Content      *string        `json:"content"`
	Metadata     map[string]any `json:"metadata"`
	OrderIndex   *int           `json:"order_index"`
	Color        *string        `json:"color"`
	Icon         *string        `json:"icon"`
}

// DeleteItemResponse reports how many items a delete removed.
type DeleteItemResponse struct {
	Removed int64 `json:"removed"`
}

// Create handles POST /api/projects/{projectID}/items.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	projectID, err := projectIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	var req CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.items.Create(ctx, service.CreateItemRequest{
		ProjectID:    projectID,
		ParentItemID: req.ParentItemID,
		ItemType:     storage.ItemType(req.ItemType),
		Name:         req.Name,
		Content:      req.Content,
		Metadata:     req.Metadata,
		OrderIndex:   req.OrderIndex,
		Color:        req.Color,
		Icon:         req.Icon,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to create item")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, toItemResponse(item))
}

// Get handles GET /api/items/{itemID}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	item, err := h.items.Get(ctx, chi.URLParam(r, "itemID"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get item")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toItemResponse(item))
}

// Update handles PATCH /api/items/{itemID}.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.items.Update(ctx, chi.URLParam(r, "itemID"), service.UpdateItemRequest{
		ParentItemID: req.ParentItemID,
		Name:         req.Name,
		Content:      req.Content,
		Metadata:     req.Metadata,
		OrderIndex:   req.OrderIndex,
		Color:        req.Color,
		Icon:         req.Icon,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update item")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toItemResponse(item))
}

// Delete handles DELETE /api/items/{itemID}. The item's whole subtree goes with it.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	removed, err := h.items.Delete(ctx, chi.URLParam(r, "itemID"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to delete item")
		return
	}

	writeJSON(ctx, w, http.StatusOK, DeleteItemResponse{Removed: removed})
}
