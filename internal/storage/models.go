package storage

import "time"

// ItemType is the kind of a project item.
type ItemType string

const (
	ItemFolder    ItemType = "folder"
	ItemDocument  ItemType = "document"
	ItemCharacter ItemType = "character"
	ItemLocation  ItemType = "location"
	ItemNote      ItemType = "note"
	ItemResearch  ItemType = "research"

	// Legacy kinds, kept so older projects still resolve an icon.
	ItemChapter ItemType = "chapter"
	ItemScene   ItemType = "scene"
)

var defaultIcons = map[ItemType]string{
	ItemFolder:    "folder",
	ItemDocument:  "document-text",
	ItemCharacter: "person",
	ItemLocation:  "location",
	ItemNote:      "create",
	ItemResearch:  "library",
	ItemChapter:   "book",
	ItemScene:     "film",
}

// Valid reports whether t is a known item kind.
func (t ItemType) Valid() bool {
	_, ok := defaultIcons[t]
	return ok
}

// IsContainer reports whether items of this kind can be opened in navigation.
func (t ItemType) IsContainer() bool {
	return t == ItemFolder || t == ItemChapter
}

// DefaultIcon returns the icon shown for the kind when an item has none.
func (t ItemType) DefaultIcon() string {
	if icon, ok := defaultIcons[t]; ok {
		return icon
	}
	return "document"
}

// Project represents a writing project in the database.
type Project struct {
	ID                int64
	Title             string
	Status            string
	Genre             string
	TargetWordCount   int
	WritingTemplate   string     // Template id, empty when none assigned
	TemplateAppliedAt *time.Time // Set once a template has been materialized
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProjectPatch holds the fields to change on a project. Nil fields are left untouched.
type ProjectPatch struct {
	Title           *string
	Status          *string
	Genre           *string
	TargetWordCount *int
	WritingTemplate *string
}

// Item represents a node of a project's content tree.
type Item struct {
	ID           string  // UUID
	ProjectID    int64   // Foreign key to projects.id
	ParentItemID *string // Nil for forest roots
	ItemType     ItemType
	Name         string
	Content      string
	Metadata     map[string]any
	OrderIndex   int
	DepthLevel   int // Informational; the parent chain is authoritative
	WordCount    int
	Color        string
	Icon         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ParentID returns the parent id, or "" for a root item.
func (i *Item) ParentID() string {
	if i.ParentItemID == nil {
		return ""
	}
	return *i.ParentItemID
}

// ItemPatch holds the fields to change on an item. Nil fields are left untouched.
// ClearParent moves the item to the top level and wins over ParentItemID.
type ItemPatch struct {
	ParentItemID *string
	ClearParent  bool
	Name         *string
	Content      *string
	Metadata     map[string]any
	OrderIndex   *int
	DepthLevel   *int
	WordCount    *int
	Color        *string
	Icon         *string
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.ParentItemID == nil && !p.ClearParent && p.Name == nil && p.Content == nil &&
		p.Metadata == nil && p.OrderIndex == nil && p.DepthLevel == nil &&
		p.WordCount == nil && p.Color == nil && p.Icon == nil
}

// ProjectStats holds aggregate figures for a project, computed on demand.
type ProjectStats struct {
	ProjectID       int64
	TotalItems      int
	ItemsByType     map[ItemType]int
	TotalWords      int
	TargetWordCount int
	Progress        float64 // TotalWords / TargetWordCount, 0 when no target
}
