package service_test

import (
	"errors"
	"testing"

	"inkwell/internal/service"
	"inkwell/internal/storage"
	"inkwell/internal/storage/mocks"

	"go.uber.org/mock/gomock"
)

func TestItemService_CreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	project := env.newProject(t, "Novel")

	first := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, Name: "   "})
	if first.Name != service.DefaultItemName {
		t.Errorf("Name = %q, want %q", first.Name, service.DefaultItemName)
	}
	if first.ItemType != storage.ItemDocument {
		t.Errorf("ItemType = %q, want document", first.ItemType)
	}
	if first.OrderIndex != 0 || first.DepthLevel != 0 {
		t.Errorf("OrderIndex/DepthLevel = %d/%d, want 0/0", first.OrderIndex, first.DepthLevel)
	}

	folder := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ItemType: storage.ItemFolder, Name: "Part One"})
	if folder.OrderIndex != 1 {
		t.Errorf("second root OrderIndex = %d, want 1", folder.OrderIndex)
	}

	child := env.newItem(t, service.CreateItemRequest{
		ProjectID:    project.ID,
		ParentItemID: folder.ID,
		Name:         "Opening",
		Content:      "# Opening\n\nThe *storm* broke at dawn.",
	})
	if child.DepthLevel != 1 || child.OrderIndex != 0 {
		t.Errorf("child DepthLevel/OrderIndex = %d/%d, want 1/0", child.DepthLevel, child.OrderIndex)
	}
	if child.WordCount != 6 {
		t.Errorf("child WordCount = %d, want 6", child.WordCount)
	}

	grandchild := env.newItem(t, service.CreateItemRequest{
		ProjectID:    project.ID,
		ParentItemID: child.ID,
		ItemType:     storage.ItemNote,
		OrderIndex:   intPtr(5),
	})
	if grandchild.DepthLevel != 2 || grandchild.OrderIndex != 5 {
		t.Errorf("grandchild DepthLevel/OrderIndex = %d/%d, want 2/5", grandchild.DepthLevel, grandchild.OrderIndex)
	}
}

func TestItemService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	project := env.newProject(t, "Mine")
	other := env.newProject(t, "Theirs")
	foreign := env.newItem(t, service.CreateItemRequest{ProjectID: other.ID, ItemType: storage.ItemFolder, Name: "Elsewhere"})

	tests := []struct {
		name      string
		req       service.CreateItemRequest
		wantErr   error
		wantField string
	}{
		{
			name:      "unknown item type",
			req:       service.CreateItemRequest{ProjectID: project.ID, ItemType: "spreadsheet"},
			wantErr:   service.ErrInvalidInput,
			wantField: "item_type",
		},
		{
			name:      "negative order",
			req:       service.CreateItemRequest{ProjectID: project.ID, OrderIndex: intPtr(-1)},
			wantErr:   service.ErrInvalidInput,
			wantField: "order_index",
		},
		{
			name:      "missing parent",
			req:       service.CreateItemRequest{ProjectID: project.ID, ParentItemID: "no-such-item"},
			wantErr:   service.ErrInvalidInput,
			wantField: "parent_item_id",
		},
		{
			name:      "parent in another project",
			req:       service.CreateItemRequest{ProjectID: project.ID, ParentItemID: foreign.ID},
			wantErr:   service.ErrInvalidInput,
			wantField: "parent_item_id",
		},
		{
			name:    "missing project",
			req:     service.CreateItemRequest{ProjectID: 4242, Name: "Orphan"},
			wantErr: service.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Items.Create(testContext(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantField != "" {
				var validationErr *service.ValidationError
				if !errors.As(err, &validationErr) || validationErr.Field != tt.wantField {
					t.Errorf("Create() error = %v, want validation error on %s", err, tt.wantField)
				}
			}
		})
	}

	if got := env.listItems(t, project.ID); len(got) != 0 {
		t.Errorf("project holds %d items after failed creates, want 0", len(got))
	}
}

func TestItemService_UpdateRejectsCycles(t *testing.T) {
	env := newTestEnv(t)
	ctx := testContext()
	project := env.newProject(t, "Cycles")

	a := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ItemType: storage.ItemFolder, Name: "A"})
	b := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ParentItemID: a.ID, ItemType: storage.ItemFolder, Name: "B"})
	c := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ParentItemID: b.ID, Name: "C"})

	tests := []struct {
		name   string
		id     string
		parent string
	}{
		{name: "under itself", id: a.ID, parent: a.ID},
		{name: "under child", id: a.ID, parent: b.ID},
		{name: "under grandchild", id: a.ID, parent: c.ID},
		{name: "middle under its child", id: b.ID, parent: c.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Items.Update(ctx, tt.id, service.UpdateItemRequest{ParentItemID: strPtr(tt.parent)})
			if !errors.Is(err, service.ErrCycle) {
				t.Errorf("Update() error = %v, want ErrCycle", err)
			}
		})
	}

	got, err := env.Items.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ParentItemID != nil {
		t.Errorf("A parent = %v after rejected moves, want root", *got.ParentItemID)
	}
}

func TestItemService_MoveRefreshesDepths(t *testing.T) {
	env := newTestEnv(t)
	ctx := testContext()
	project := env.newProject(t, "Moves")

	root := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ItemType: storage.ItemFolder, Name: "Root"})
	part := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ParentItemID: root.ID, ItemType: storage.ItemFolder, Name: "Part"})
	scene := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ParentItemID: part.ID, Name: "Scene"})
	other := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ItemType: storage.ItemFolder, Name: "Other"})
	deep := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ParentItemID: other.ID, ItemType: storage.ItemFolder, Name: "Deep"})

	depths := func() (int, int) {
		t.Helper()
		p, err := env.Items.Get(ctx, part.ID)
		if err != nil {
			t.Fatalf("Get(part) error = %v", err)
		}
		s, err := env.Items.Get(ctx, scene.ID)
		if err != nil {
			t.Fatalf("Get(scene) error = %v", err)
		}
		return p.DepthLevel, s.DepthLevel
	}

	if _, err := env.Items.Update(ctx, part.ID, service.UpdateItemRequest{ParentItemID: strPtr("")}); err != nil {
		t.Fatalf("Update() to root error = %v", err)
	}
	if p, s := depths(); p != 0 || s != 1 {
		t.Errorf("after move to root depths = %d/%d, want 0/1", p, s)
	}

	moved, err := env.Items.Update(ctx, part.ID, service.UpdateItemRequest{ParentItemID: strPtr(deep.ID)})
	if err != nil {
		t.Fatalf("Update() under deep error = %v", err)
	}
	if moved.ParentID() != deep.ID {
		t.Errorf("parent = %q, want %q", moved.ParentID(), deep.ID)
	}
	if p, s := depths(); p != 2 || s != 3 {
		t.Errorf("after move under deep depths = %d/%d, want 2/3", p, s)
	}
}

func TestItemService_UpdateFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := testContext()
	project := env.newProject(t, "Fields")
	item := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, Name: "Draft"})

	updated, err := env.Items.Update(ctx, item.ID, service.UpdateItemRequest{
		Name:       strPtr(""),
		Color:      strPtr("#123456"),
		OrderIndex: intPtr(3),
		Metadata:   map[string]any{"pov": "Mara"},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != service.DefaultItemName {
		t.Errorf("Name = %q, want %q", updated.Name, service.DefaultItemName)
	}
	if updated.Color != "#123456" || updated.OrderIndex != 3 {
		t.Errorf("Color/OrderIndex = %q/%d, want #123456/3", updated.Color, updated.OrderIndex)
	}
	if updated.Metadata["pov"] != "Mara" {
		t.Errorf("Metadata = %v, want pov=Mara", updated.Metadata)
	}

	same, err := env.Items.Update(ctx, item.ID, service.UpdateItemRequest{})
	if err != nil {
		t.Fatalf("empty Update() error = %v", err)
	}
	if same.ID != item.ID {
		t.Errorf("empty Update() returned %q, want %q", same.ID, item.ID)
	}

	if _, err := env.Items.Update(ctx, "missing", service.UpdateItemRequest{Name: strPtr("x")}); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Update() of missing item error = %v, want ErrNotFound", err)
	}
}

func TestItemService_SaveContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := testContext()
	project := env.newProject(t, "Words")
	item := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, Name: "Chapter"})

	saved, err := env.Items.SaveContent(ctx, item.ID, "It was a **dark** and [stormy](https://example.com) night.")
	if err != nil {
		t.Fatalf("SaveContent() error = %v", err)
	}
	if saved.WordCount != 7 {
		t.Errorf("WordCount = %d, want 7", saved.WordCount)
	}

	stats, err := env.Projects.Stats(ctx, project.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalWords != 7 {
		t.Errorf("Stats().TotalWords = %d, want 7", stats.TotalWords)
	}

	cleared, err := env.Items.SaveContent(ctx, item.ID, "")
	if err != nil {
		t.Fatalf("SaveContent() error = %v", err)
	}
	if cleared.WordCount != 0 || cleared.Content != "" {
		t.Errorf("cleared item = %q/%d, want empty/0", cleared.Content, cleared.WordCount)
	}
}

func TestItemService_DeleteSubtree(t *testing.T) {
	env := newTestEnv(t)
	ctx := testContext()
	project := env.newProject(t, "Delete")

	folder := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ItemType: storage.ItemFolder, Name: "Act I"})
	sub := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ParentItemID: folder.ID, ItemType: storage.ItemFolder, Name: "Sequence"})
	env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ParentItemID: sub.ID, Name: "Beat"})
	keep := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, Name: "Notes"})

	removed, err := env.Items.Delete(ctx, folder.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Delete() removed %d, want 3", removed)
	}

	left := env.listItems(t, project.ID)
	if len(left) != 1 || left[0].ID != keep.ID {
		t.Errorf("remaining items = %v, want only %q", left, keep.ID)
	}

	if _, err := env.Items.Delete(ctx, folder.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestItemService_TreeAndFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := testContext()
	project := env.newProject(t, "Navigation")

	part := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ItemType: storage.ItemFolder, Name: "Part One", OrderIndex: intPtr(1)})
	env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, Name: "Prologue", OrderIndex: intPtr(0)})
	chapter := env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ParentItemID: part.ID, ItemType: storage.ItemFolder, Name: "Chapter 1"})
	env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ParentItemID: chapter.ID, Name: "Scene B", OrderIndex: intPtr(2)})
	env.newItem(t, service.CreateItemRequest{ProjectID: project.ID, ParentItemID: chapter.ID, Name: "Scene A", OrderIndex: intPtr(1)})

	forest, err := env.Items.Tree(ctx, project.ID)
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}
	if forest.Len() != 5 {
		t.Errorf("Tree().Len() = %d, want 5", forest.Len())
	}
	if len(forest) != 2 || forest[0].Name != "Prologue" || forest[1].Name != "Part One" {
		t.Errorf("roots = %v, want Prologue, Part One", forest)
	}

	view, err := env.Items.Folder(ctx, project.ID, chapter.ID)
	if err != nil {
		t.Fatalf("Folder() error = %v", err)
	}
	if len(view.Items) != 2 || view.Items[0].Name != "Scene A" || view.Items[1].Name != "Scene B" {
		t.Errorf("Folder() items = %v, want Scene A, Scene B", view.Items)
	}
	if len(view.Breadcrumbs) != 2 || view.Breadcrumbs[0].Name != "Part One" || view.Breadcrumbs[1].Name != "Chapter 1" {
		t.Errorf("Folder() breadcrumbs = %v, want Part One > Chapter 1", view.Breadcrumbs)
	}

	unknown, err := env.Items.Folder(ctx, project.ID, "not-a-folder")
	if err != nil {
		t.Fatalf("Folder() of unknown id error = %v", err)
	}
	if len(unknown.Items) != 0 || len(unknown.Breadcrumbs) != 0 {
		t.Errorf("Folder() of unknown id = %+v, want empty", unknown)
	}

	if _, err := env.Items.Tree(ctx, 999); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Tree() of missing project error = %v, want ErrNotFound", err)
	}
}

func TestItemService_CreateStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockItems := mocks.NewMockItemStore(ctrl)
	mockProjects := mocks.NewMockProjectStore(ctrl)
	mockTx := mocks.NewMockTxRunner(ctrl)
	svc := service.NewItemService(mockItems, mockProjects, mockTx)

	mockTx.EXPECT().
		RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, fn func(storage.Stores) error) error {
			return fn(storage.Stores{Items: mockItems, Projects: mockProjects})
		})
	mockProjects.EXPECT().Get(gomock.Any(), int64(1)).Return(&storage.Project{ID: 1, Title: "P"}, nil)
	mockItems.EXPECT().ListByProject(gomock.Any(), int64(1)).Return([]storage.Item{}, nil)
	mockItems.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := svc.Create(testContext(), service.CreateItemRequest{ProjectID: 1, Name: "Doomed"})
	if err == nil {
		t.Fatal("Create() expected error, got nil")
	}
	if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrNotFound) {
		t.Errorf("Create() error = %v, want an internal error", err)
	}
}
