package tree

import "slices"

// CurrentItems returns what a folder view shows. With an empty folderID it is the
// forest's root list; otherwise the children of that node. An unknown folder
// yields an empty list, never an error.
func CurrentItems(forest Forest, folderID string) []*Node {
	if folderID == "" {
		if len(forest) == 0 {
			return []*Node{}
		}
		return slices.Clone([]*Node(forest))
	}
	node := Find(forest, folderID)
	if node == nil || len(node.Children) == 0 {
		return []*Node{}
	}
	return slices.Clone(node.Children)
}

// PathTo returns the nodes from a root down to the node with the given id,
// inclusive. It returns nil when the id is not in the forest.
func PathTo(forest Forest, id string) []*Node {
	var path []*Node
	var search func(nodes []*Node) bool
	search = func(nodes []*Node) bool {
		for _, n := range nodes {
			path = append(path, n)
			if n.ID == id || search(n.Children) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if id == "" || !search(forest) {
		return nil
	}
	return path
}

// Crumb is one entry of a breadcrumb path.
type Crumb struct {
	ID   string
	Name string
}

// Breadcrumbs is the ordered sequence of folders visited to reach the current one.
// The zero value is positioned at the root.
type Breadcrumbs struct {
	crumbs []Crumb
}

// BreadcrumbsFor builds the breadcrumb path leading to folderID.
// An unknown folder yields a path positioned at the root.
func BreadcrumbsFor(forest Forest, folderID string) Breadcrumbs {
	var b Breadcrumbs
	for _, n := range PathTo(forest, folderID) {
		b.crumbs = append(b.crumbs, Crumb{ID: n.ID, Name: n.Name})
	}
	return b
}

// Enter appends a folder to the path. Nodes that cannot be opened in navigation
// are ignored and Enter reports false.
func (b *Breadcrumbs) Enter(n *Node) bool {
	if n == nil || !n.ItemType.IsContainer() {
		return false
	}
	b.crumbs = append(b.crumbs, Crumb{ID: n.ID, Name: n.Name})
	return true
}

// JumpTo truncates the path so that entry i is the last one and returns the new
// current folder id. A negative index returns to the root.
func (b *Breadcrumbs) JumpTo(i int) string {
	if i < 0 {
		b.crumbs = b.crumbs[:0]
		return ""
	}
	if i < len(b.crumbs) {
		b.crumbs = b.crumbs[:i+1]
	}
	return b.Current()
}

// Current returns the id of the folder being shown, "" at the root.
func (b *Breadcrumbs) Current() string {
	if len(b.crumbs) == 0 {
		return ""
	}
	return b.crumbs[len(b.crumbs)-1].ID
}

// Entries returns a copy of the path, root-most first.
func (b *Breadcrumbs) Entries() []Crumb {
	return slices.Clone(b.crumbs)
}

// Len returns the number of entries.
func (b *Breadcrumbs) Len() int {
	return len(b.crumbs)
}
