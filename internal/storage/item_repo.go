package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_item_store.go -package=mocks inkwell/internal/storage ItemStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ItemStore defines the interface for item storage operations.
type ItemStore interface {
	// Create inserts a new item. A UUID is assigned when item.ID is empty.
	Create(ctx context.Context, item *Item) error
	// Get gets an item by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*Item, error)
	// Update applies a partial update. Returns ErrNotFound if the item does not exist.
	Update(ctx context.Context, id string, patch ItemPatch) error
	// Delete removes the item and every descendant. Returns the number of items removed.
	Delete(ctx context.Context, id string) (int64, error)
	// ListByProject returns all items of a project as a flat list.
	ListByProject(ctx context.Context, projectID int64) ([]Item, error)
	// DeleteByProject removes every item of a project.
	DeleteByProject(ctx context.Context, projectID int64) (int64, error)
}

// ItemRepo provides methods for item operations.
// It implements the ItemStore interface.
type ItemRepo struct {
	db DBTX
}

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(db DBTX) *ItemRepo {
	return &ItemRepo{db: db}
}

const itemColumns = "id, project_id, parent_item_id, item_type, name, content, metadata, order_index, depth_level, word_count, color, icon, created_at, updated_at"

// subtreeCTE selects the id of an item and all its descendants. UNION (not UNION ALL)
// keeps the recursion finite on a corrupt cyclic chain.
const subtreeCTE = `WITH RECURSIVE subtree(id) AS (
	SELECT id FROM items WHERE id = ?
	UNION
	SELECT i.id FROM items i JOIN subtree s ON i.parent_item_id = s.id
)`

// Create inserts a new item.
func (r *ItemRepo) Create(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	metadata, err := marshalMetadata(item.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode item metadata: %w", err)
	}

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.ProjectID, item.ParentItemID, string(item.ItemType), item.Name,
		nullString(item.Content), metadata, item.OrderIndex, item.DepthLevel, item.WordCount,
		nullString(item.Color), nullString(item.Icon), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	return nil
}

// Get gets an item by ID.
func (r *ItemRepo) Get(ctx context.Context, id string) (*Item, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item: %w", err)
	}
	return item, nil
}

// Update applies a partial update to an item.
func (r *ItemRepo) Update(ctx context.Context, id string, patch ItemPatch) error {
	if patch.Empty() {
		// Nothing to write, but a missing id is still an error.
		_, err := r.Get(ctx, id)
		return err
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	switch {
	case patch.ClearParent:
		set("parent_item_id", nil)
	case patch.ParentItemID != nil:
		set("parent_item_id", *patch.ParentItemID)
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Content != nil {
		set("content", nullString(*patch.Content))
	}
	if patch.Metadata != nil {
		metadata, err := marshalMetadata(patch.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode item metadata: %w", err)
		}
		set("metadata", metadata)
	}
	if patch.OrderIndex != nil {
		set("order_index", *patch.OrderIndex)
	}
	if patch.DepthLevel != nil {
		set("depth_level", *patch.DepthLevel)
	}
	if patch.WordCount != nil {
		set("word_count", *patch.WordCount)
	}
	if patch.Color != nil {
		set("color", nullString(*patch.Color))
	}
	if patch.Icon != nil {
		set("icon", nullString(*patch.Icon))
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id)

	result, err := r.db.ExecContext(ctx,
		"UPDATE items SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an item and its whole subtree.
// The subtree is counted first: rows removed by the foreign key cascade are not
// reported in RowsAffected.
func (r *ItemRepo) Delete(ctx context.Context, id string) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx,
		subtreeCTE+" SELECT COUNT(*) FROM subtree", id,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count item subtree: %w", err)
	}
	if count == 0 {
		return 0, ErrNotFound
	}

	if _, err := r.db.ExecContext(ctx,
		subtreeCTE+" DELETE FROM items WHERE id IN (SELECT id FROM subtree)", id,
	); err != nil {
		return 0, fmt.Errorf("failed to delete item subtree: %w", err)
	}

	return count, nil
}

// ListByProject returns all items of a project in insertion order.
func (r *ItemRepo) ListByProject(ctx context.Context, projectID int64) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE project_id = ? ORDER BY rowid",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// DeleteByProject removes every item of a project.
func (r *ItemRepo) DeleteByProject(ctx context.Context, projectID int64) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM items WHERE project_id = ?", projectID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count project items: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE project_id = ?", projectID); err != nil {
		return 0, fmt.Errorf("failed to delete project items: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item                 Item
		parent               sql.NullString
		itemType             string
		content, metadata    sql.NullString
		color, icon          sql.NullString
		createdAt, updatedAt string
	)

	if err := row.Scan(
		&item.ID, &item.ProjectID, &parent, &itemType, &item.Name, &content, &metadata,
		&item.OrderIndex, &item.DepthLevel, &item.WordCount, &color, &icon,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	if parent.Valid {
		p := parent.String
		item.ParentItemID = &p
	}
	item.ItemType = ItemType(itemType)
	item.Content = content.String
	item.Color = color.String
	item.Icon = icon.String

	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &item.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode item metadata: %w", err)
		}
	}

	var err error
	if item.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	if item.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return &item, nil
}

func marshalMetadata(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
