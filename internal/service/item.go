package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_item_service.go -package=mocks -mock_names=ItemService=MockItemService inkwell/internal/service ItemService

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/contextutil"
	"inkwell/internal/storage"
	"inkwell/internal/tree"
	"inkwell/internal/wordcount"
)

// DefaultItemName is used when an item is created or renamed with a blank name.
const DefaultItemName = "Untitled"

// CreateItemRequest represents an item creation request in the domain layer.
type CreateItemRequest struct {
	ProjectID    int64
	ParentItemID string // Empty for a top-level item
	ItemType     storage.ItemType
	Name         string
	Content      string
	Metadata     map[string]any
	OrderIndex   *int // Nil places the item after its last sibling
	Color        string
	Icon         string
}

// UpdateItemRequest holds the item fields to change. Nil fields are left untouched.
type UpdateItemRequest struct {
	ParentItemID *string // Pointer to "" moves the item to the top level
	Name         *string
	Content      *string
	Metadata     map[string]any
	OrderIndex   *int
	Color        *string
	Icon         *string
}

// FolderView is what a folder screen shows: the folder's ordered children and
// the breadcrumb path that leads to it.
type FolderView struct {
	FolderID    string
	Items       []*tree.Node
	Breadcrumbs []tree.Crumb
}

// ItemService manages the items of a project's content tree.
type ItemService interface {
	// Create validates and stores a new item.
	Create(ctx context.Context, req CreateItemRequest) (*storage.Item, error)
	// Get returns an item by ID.
	Get(ctx context.Context, id string) (*storage.Item, error)
	// Update applies a partial update. Moving an item under itself or one of its
	// descendants fails with ErrCycle.
	Update(ctx context.Context, id string, req UpdateItemRequest) (*storage.Item, error)
	// SaveContent stores edited content and refreshes the cached word count.
	SaveContent(ctx context.Context, id, content string) (*storage.Item, error)
	// Delete removes an item with its whole subtree and returns how many items were removed.
	Delete(ctx context.Context, id string) (int64, error)
	// Tree returns the project's items as an ordered forest.
	Tree(ctx context.Context, projectID int64) (tree.Forest, error)
	// Folder returns the contents of one folder, or of the top level when folderID is empty.
	Folder(ctx context.Context, projectID int64, folderID string) (*FolderView, error)
}

// itemService implements ItemService.
type itemService struct {
	items    storage.ItemStore
	projects storage.ProjectStore
	tx       storage.TxRunner
}

// NewItemService creates a new ItemService. Reads go through the stores directly;
// writes that check the tree before changing it run inside tx.
func NewItemService(items storage.ItemStore, projects storage.ProjectStore, tx storage.TxRunner) ItemService {
	return &itemService{
		items:    items,
		projects: projects,
		tx:       tx,
	}
}

// Create validates and stores a new item.
func (s *itemService) Create(ctx context.Context, req CreateItemRequest) (*storage.Item, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.ItemType == "" {
		req.ItemType = storage.ItemDocument
	}
	if !req.ItemType.Valid() {
		return nil, &ValidationError{Field: "item_type", Message: fmt.Sprintf("unknown item type %q", req.ItemType)}
	}
	if req.OrderIndex != nil && *req.OrderIndex < 0 {
		return nil, &ValidationError{Field: "order_index", Message: "cannot be negative"}
	}

	item := &storage.Item{
		ProjectID: req.ProjectID,
		ItemType:  req.ItemType,
		Name:      itemName(req.Name),
		Content:   req.Content,
		Metadata:  req.Metadata,
		WordCount: wordcount.Markdown(req.Content),
		Color:     req.Color,
		Icon:      req.Icon,
	}
	if req.ParentItemID != "" {
		parentID := req.ParentItemID
		item.ParentItemID = &parentID
	}

	err := s.tx.RunInTx(ctx, func(st storage.Stores) error {
		if _, err := st.Projects.Get(ctx, req.ProjectID); err != nil {
			return storeError(err, "project")
		}

		if item.ParentItemID != nil {
			depth, err := s.parentDepth(ctx, st.Items, req.ProjectID, *item.ParentItemID)
			if err != nil {
				return err
			}
			item.DepthLevel = depth + 1
		}

		if req.OrderIndex != nil {
			item.OrderIndex = *req.OrderIndex
		} else {
			next, err := nextOrderIndex(ctx, st.Items, req.ProjectID, item.ParentID())
			if err != nil {
				return err
			}
			item.OrderIndex = next
		}

		return st.Items.Create(ctx, item)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		logger.ErrorContext(ctx, "failed to create item", "project_id", req.ProjectID, "error", err)
		return nil, WrapError(err, "failed to create item")
	}

	logger.InfoContext(ctx, "item created", "item_id", item.ID, "project_id", item.ProjectID, "item_type", item.ItemType)
	return item, nil
}

// Get returns an item by ID.
func (s *itemService) Get(ctx context.Context, id string) (*storage.Item, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to get item")
	}
	return item, nil
}

// Update applies a partial update to an item.
func (s *itemService) Update(ctx context.Context, id string, req UpdateItemRequest) (*storage.Item, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.OrderIndex != nil && *req.OrderIndex < 0 {
		return nil, &ValidationError{Field: "order_index", Message: "cannot be negative"}
	}

	var updated *storage.Item
	err := s.tx.RunInTx(ctx, func(st storage.Stores) error {
		current, err := st.Items.Get(ctx, id)
		if err != nil {
			return storeError(err, "item")
		}

		patch := storage.ItemPatch{
			Metadata:   req.Metadata,
			OrderIndex: req.OrderIndex,
			Color:      req.Color,
			Icon:       req.Icon,
		}
		if req.Name != nil {
			name := itemName(*req.Name)
			patch.Name = &name
		}
		if req.Content != nil {
			words := wordcount.Markdown(*req.Content)
			patch.Content = req.Content
			patch.WordCount = &words
		}

		moved := false
		if req.ParentItemID != nil && *req.ParentItemID != current.ParentID() {
			depth := 0
			if newParent := *req.ParentItemID; newParent == "" {
				patch.ClearParent = true
			} else {
				if err := s.checkMove(ctx, st.Items, current, newParent); err != nil {
					return err
				}
				parentDepth, err := s.parentDepth(ctx, st.Items, current.ProjectID, newParent)
				if err != nil {
					return err
				}
				depth = parentDepth + 1
				patch.ParentItemID = &newParent
			}
			patch.DepthLevel = &depth
			moved = true
		}

		if patch.Empty() {
			updated = current
			return nil
		}
		if err := st.Items.Update(ctx, id, patch); err != nil {
			return storeError(err, "item")
		}
		if moved {
			if err := refreshDepths(ctx, st.Items, current.ProjectID, id, *patch.DepthLevel); err != nil {
				return err
			}
		}

		updated, err = st.Items.Get(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrCycle) {
			return nil, err
		}
		logger.ErrorContext(ctx, "failed to update item", "item_id", id, "error", err)
		return nil, WrapError(err, "failed to update item")
	}

	return updated, nil
}

// SaveContent stores edited content.
func (s *itemService) SaveContent(ctx context.Context, id, content string) (*storage.Item, error) {
	return s.Update(ctx, id, UpdateItemRequest{Content: &content})
}

// Delete removes an item and its descendants.
func (s *itemService) Delete(ctx context.Context, id string) (int64, error) {
	logger := contextutil.LoggerFromContext(ctx)

	removed, err := s.items.Delete(ctx, id)
	if err != nil {
		if !isNotFound(err) {
			logger.ErrorContext(ctx, "failed to delete item", "item_id", id, "error", err)
		}
		return 0, storeError(err, "failed to delete item")
	}

	logger.InfoContext(ctx, "item deleted", "item_id", id, "removed", removed)
	return removed, nil
}

// Tree returns the project's item forest.
func (s *itemService) Tree(ctx context.Context, projectID int64) (tree.Forest, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, storeError(err, "failed to get project")
	}

	items, err := s.items.ListByProject(ctx, projectID)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list items", "project_id", projectID, "error", err)
		return nil, WrapError(err, "failed to list items")
	}

	return tree.Build(ctx, items), nil
}

// Folder returns the contents of a folder. An unknown folder shows as empty.
func (s *itemService) Folder(ctx context.Context, projectID int64, folderID string) (*FolderView, error) {
	forest, err := s.Tree(ctx, projectID)
	if err != nil {
		return nil, err
	}

	crumbs := tree.BreadcrumbsFor(forest, folderID)
	return &FolderView{
		FolderID:    folderID,
		Items:       tree.CurrentItems(forest, folderID),
		Breadcrumbs: crumbs.Entries(),
	}, nil
}

func itemName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultItemName
	}
	return name
}

// parentDepth checks that parentID names an item of the project and returns the
// number of ancestors above it.
func (s *itemService) parentDepth(ctx context.Context, items storage.ItemStore, projectID int64, parentID string) (int, error) {
	parent, err := items.Get(ctx, parentID)
	if isNotFound(err) {
		return 0, &ValidationError{Field: "parent_item_id", Message: "parent item does not exist"}
	}
	if err != nil {
		return 0, err
	}
	if parent.ProjectID != projectID {
		return 0, &ValidationError{Field: "parent_item_id", Message: "parent item belongs to another project"}
	}

	chain, err := ancestors(ctx, items, parent)
	if err != nil {
		return 0, err
	}
	return len(chain), nil
}

// checkMove rejects a new parent that is the item itself or one of its descendants.
func (s *itemService) checkMove(ctx context.Context, items storage.ItemStore, item *storage.Item, parentID string) error {
	if parentID == item.ID {
		return fmt.Errorf("item %s under itself: %w", item.ID, ErrCycle)
	}

	parent, err := items.Get(ctx, parentID)
	if isNotFound(err) {
		return &ValidationError{Field: "parent_item_id", Message: "parent item does not exist"}
	}
	if err != nil {
		return err
	}
	chain, err := ancestors(ctx, items, parent)
	if err != nil {
		return err
	}
	for _, id := range chain {
		if id == item.ID {
			return fmt.Errorf("item %s under descendant %s: %w", item.ID, parentID, ErrCycle)
		}
	}
	return nil
}

// ancestors returns the ids above item, nearest first. A chain that loops back on
// itself or leaves the table ends where it breaks.
func ancestors(ctx context.Context, items storage.ItemStore, item *storage.Item) ([]string, error) {
	var chain []string
	seen := map[string]bool{item.ID: true}
	next := item.ParentID()
	for next != "" && !seen[next] {
		parent, err := items.Get(ctx, next)
		if isNotFound(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		seen[next] = true
		chain = append(chain, next)
		next = parent.ParentID()
	}
	return chain, nil
}

func nextOrderIndex(ctx context.Context, items storage.ItemStore, projectID int64, parentID string) (int, error) {
	all, err := items.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	next := 0
	for _, it := range all {
		if it.ParentID() == parentID && it.OrderIndex >= next {
			next = it.OrderIndex + 1
		}
	}
	return next, nil
}

// refreshDepths rewrites the cached depth of every descendant of a moved item.
func refreshDepths(ctx context.Context, items storage.ItemStore, projectID int64, movedID string, depth int) error {
	all, err := items.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	node := tree.Find(tree.Build(ctx, all), movedID)
	if node == nil {
		return nil
	}

	var updateErr error
	tree.Walk(node.Children, func(n *tree.Node, d int) {
		want := depth + 1 + d
		if updateErr != nil || n.DepthLevel == want {
			return
		}
		updateErr = items.Update(ctx, n.ID, storage.ItemPatch{DepthLevel: &want})
	})
	return updateErr
}
