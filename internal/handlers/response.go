package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"inkwell/internal/contextutil"
	"inkwell/internal/service"
	"inkwell/internal/storage"
	"inkwell/internal/tree"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ItemResponse is the JSON form of an item.
type ItemResponse struct {
	ID           string         `json:"id"`
	ProjectID    int64          `json:"project_id"`
	ParentItemID *string        `json:"parent_item_id"`
	ItemType     string         `json:"item_type"`
	Name         string         `json:"name"`
	Content      string         `json:"content,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	OrderIndex   int            `json:"order_index"`
	DepthLevel   int            `json:"depth_level"`
	WordCount    int            `json:"word_count"`
	Color        string         `json:"color,omitempty"`
	Icon         string         `json:"icon"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NodeResponse is an item with its children. Content is left out of tree listings.
type NodeResponse struct {
	ItemResponse
	Children []NodeResponse `json:"children"`
}

func toItemResponse(item *storage.Item) ItemResponse {
	icon := item.Icon
	if icon == "" {
		icon = item.ItemType.DefaultIcon()
	}
	return ItemResponse{
		ID:           item.ID,
		ProjectID:    item.ProjectID,
		ParentItemID: item.ParentItemID,
		ItemType:     string(item.ItemType),
		Name:         item.Name,
		Content:      item.Content,
		Metadata:     item.Metadata,
		OrderIndex:   item.OrderIndex,
		DepthLevel:   item.DepthLevel,
		WordCount:    item.WordCount,
		Color:        item.Color,
		Icon:         icon,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

func toNodeResponses(nodes []*tree.Node) []NodeResponse {
	out := make([]NodeResponse, 0, len(nodes))
	for _, n := range nodes {
		item := toItemResponse(&n.Item)
		item.Content = ""
		out = append(out, NodeResponse{
			ItemResponse: item,
			Children:     toNodeResponses(n.Children),
		})
	}
	return out
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// handleServiceError maps service errors to HTTP status codes. Clients get a
// generic message; the cause is only logged.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "validation failed", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message))
		return
	}

	if errors.Is(err, service.ErrInvalidInput) {
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if errors.Is(err, service.ErrNotFound) {
		logger.InfoContext(ctx, "resource not found", "error", err)
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	if errors.Is(err, service.ErrCycle) {
		logger.WarnContext(ctx, "rejected move", "error", err)
		writeError(w, http.StatusConflict, "An item cannot be moved inside itself")
		return
	}

	logger.ErrorContext(ctx, "service error", "error", err)
	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// decodeJSON reads a JSON request body into v. Unknown fields are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// projectIDParam parses the {projectID} path parameter.
func projectIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "projectID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid project id %q", raw)
	}
	return id, nil
}
