// Package tree rebuilds a project's item forest from the flat item table and
// answers navigation queries over it.
//
// A Forest is a read-only view. After any mutation, rebuild it from the store
// instead of patching nodes in place.
package tree

import (
	"cmp"
	"context"
	"slices"

	"inkwell/internal/contextutil"
	"inkwell/internal/storage"
)

// Node is an item together with its ordered children.
type Node struct {
	storage.Item
	Children []*Node
}

// Forest is the ordered list of root nodes.
type Forest []*Node

// Build converts a flat item list into a forest. Children are attached to their
// parent and every sibling list is stably sorted by OrderIndex, so ties keep the
// order in which items arrived.
//
// An item whose parent is not in the list becomes a root. A parent cycle is cut
// at the first of its members reached when walking items in input order, and
// that member becomes a root. No item is ever dropped.
func Build(ctx context.Context, items []storage.Item) Forest {
	logger := contextutil.LoggerFromContext(ctx)

	lookup := make(map[string]*Node, len(items))
	for i := range items {
		lookup[items[i].ID] = &Node{Item: items[i], Children: []*Node{}}
	}

	parents := resolveParents(items, lookup)

	roots := Forest{}
	for i := range items {
		node := lookup[items[i].ID]
		parentID := parents[node.ID]
		if parentID == "" {
			if declared := node.ParentID(); declared != "" {
				if _, ok := lookup[declared]; ok {
					logger.WarnContext(ctx, "item parent chain forms a cycle, treating as root",
						"item_id", node.ID, "parent_item_id", declared)
				} else {
					logger.WarnContext(ctx, "item references missing parent, treating as root",
						"item_id", node.ID, "parent_item_id", declared)
				}
			}
			roots = append(roots, node)
			continue
		}
		parent := lookup[parentID]
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	return roots
}

// resolveParents returns the effective parent of every item: its declared parent
// when that parent exists and does not close a cycle, "" otherwise.
func resolveParents(items []storage.Item, lookup map[string]*Node) map[string]string {
	const (
		unvisited = iota
		visiting
		done
	)

	effective := make(map[string]string, len(items))
	state := make(map[string]int, len(items))

	for i := range items {
		var path []string
		cur := items[i].ID
		for state[cur] == unvisited {
			state[cur] = visiting
			path = append(path, cur)

			parentID := lookup[cur].ParentID()
			if _, ok := lookup[parentID]; !ok {
				effective[cur] = ""
				break
			}
			effective[cur] = parentID
			cur = parentID
		}
		if state[cur] == visiting && len(path) > 0 && effective[path[len(path)-1]] == cur {
			// The walk came back to a node on the current path: cut the cycle there.
			effective[cur] = ""
		}
		for _, id := range path {
			state[id] = done
		}
	}

	return effective
}

func sortNodes(nodes []*Node) {
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// Len returns the number of nodes in the forest.
func (f Forest) Len() int {
	n := 0
	Walk(f, func(*Node, int) { n++ })
	return n
}

// Walk visits every node depth-first in display order. depth is 0 for roots.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(*Node, int)) {
	for _, n := range nodes {
		fn(n, depth)
		walk(n.Children, depth+1, fn)
	}
}

// Find returns the node with the given id, or nil.
func Find(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := Find(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}
