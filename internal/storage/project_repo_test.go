package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestProjectRepo_CreateAndGet(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	project := &Project{
		Title:           "The Long Road",
		Genre:           "fantasy",
		TargetWordCount: 90000,
		WritingTemplate: "heros-journey",
	}
	if err := repo.Create(ctx, project); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if project.ID == 0 {
		t.Fatal("Create() should set the project ID")
	}

	got, err := repo.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "The Long Road" || got.Status != "draft" || got.Genre != "fantasy" {
		t.Errorf("Get() = %+v", got)
	}
	if got.WritingTemplate != "heros-journey" {
		t.Errorf("Get() WritingTemplate = %q, want heros-journey", got.WritingTemplate)
	}
	if got.TemplateAppliedAt != nil {
		t.Errorf("Get() TemplateAppliedAt = %v, want nil for a fresh project", got.TemplateAppliedAt)
	}
	if time.Since(got.CreatedAt) > time.Minute {
		t.Error("CreatedAt should be recent")
	}

	if _, err := repo.Get(ctx, 4242); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing error = %v, want ErrNotFound", err)
	}
}

func TestProjectRepo_Update(t *testing.T) {
	db, project := openTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	status := "revising"
	target := 50000
	if err := repo.Update(ctx, project.ID, ProjectPatch{Status: &status, TargetWordCount: &target}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != "revising" || got.TargetWordCount != 50000 || got.Title != "Test Novel" {
		t.Errorf("Update() result = %+v", got)
	}

	if err := repo.Update(ctx, 4242, ProjectPatch{Status: &status}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() missing error = %v, want ErrNotFound", err)
	}
}

func TestProjectRepo_List(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &Project{Title: "Second"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	projects, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("List() returned %d projects, want 2", len(projects))
	}
	if projects[0].Title != "Second" {
		t.Errorf("List()[0] = %q, want most recent project first", projects[0].Title)
	}
}

func TestProjectRepo_MarkTemplateApplied(t *testing.T) {
	db, project := openTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	if err := repo.MarkTemplateApplied(ctx, project.ID, "seven-point", at); err != nil {
		t.Fatalf("MarkTemplateApplied() error = %v", err)
	}

	got, err := repo.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.WritingTemplate != "seven-point" {
		t.Errorf("WritingTemplate = %q, want seven-point", got.WritingTemplate)
	}
	if got.TemplateAppliedAt == nil || !got.TemplateAppliedAt.Equal(at) {
		t.Errorf("TemplateAppliedAt = %v, want %v", got.TemplateAppliedAt, at)
	}

	if err := repo.MarkTemplateApplied(ctx, 4242, "seven-point", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkTemplateApplied() missing error = %v, want ErrNotFound", err)
	}
}

func TestProjectRepo_Delete_RemovesItems(t *testing.T) {
	db, project := openTestDB(t)
	repo := NewProjectRepo(db)
	items := NewItemRepo(db)
	ctx := context.Background()

	folder := mustCreate(t, items, &Item{ProjectID: project.ID, ItemType: ItemFolder, Name: "Act I"})
	mustCreate(t, items, &Item{ProjectID: project.ID, ParentItemID: &folder.ID, ItemType: ItemDocument, Name: "Beat"})

	if err := repo.Delete(ctx, project.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 0 {
		t.Errorf("Delete() left %d items behind", count)
	}

	if err := repo.Delete(ctx, project.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestProjectRepo_Stats(t *testing.T) {
	db, project := openTestDB(t)
	repo := NewProjectRepo(db)
	items := NewItemRepo(db)
	ctx := context.Background()

	target := 1000
	if err := repo.Update(ctx, project.ID, ProjectPatch{TargetWordCount: &target}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stats, err := repo.Stats(ctx, project.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalItems != 0 || stats.TotalWords != 0 || stats.Progress != 0 {
		t.Errorf("Stats() of empty project = %+v", stats)
	}

	folder := mustCreate(t, items, &Item{ProjectID: project.ID, ItemType: ItemFolder, Name: "Act I"})
	mustCreate(t, items, &Item{ProjectID: project.ID, ParentItemID: &folder.ID, ItemType: ItemDocument, Name: "One", WordCount: 150})
	mustCreate(t, items, &Item{ProjectID: project.ID, ParentItemID: &folder.ID, ItemType: ItemDocument, Name: "Two", WordCount: 100})
	mustCreate(t, items, &Item{ProjectID: project.ID, ItemType: ItemCharacter, Name: "Elena", WordCount: 40})

	// Stats are recomputed on every call, so new items show up immediately.
	stats, err = repo.Stats(ctx, project.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalItems != 4 {
		t.Errorf("TotalItems = %d, want 4", stats.TotalItems)
	}
	if stats.ItemsByType[ItemDocument] != 2 || stats.ItemsByType[ItemFolder] != 1 {
		t.Errorf("ItemsByType = %v", stats.ItemsByType)
	}
	if stats.TotalWords != 250 {
		t.Errorf("TotalWords = %d, want 250 (documents only)", stats.TotalWords)
	}
	if stats.Progress != 0.25 {
		t.Errorf("Progress = %v, want 0.25", stats.Progress)
	}

	if _, err := repo.Stats(ctx, 4242); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stats() missing error = %v, want ErrNotFound", err)
	}
}
