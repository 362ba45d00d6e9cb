package tree

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"inkwell/internal/storage"
)

func init() {
	// Dangling-parent warnings would otherwise clutter test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func item(id, parent string, order int, kind storage.ItemType) storage.Item {
	it := storage.Item{ID: id, ProjectID: 1, ItemType: kind, Name: id, OrderIndex: order}
	if parent != "" {
		it.ParentItemID = &parent
	}
	return it
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		items     []storage.Item
		wantRoots []string
		children  map[string][]string
	}{
		{
			name:      "empty",
			items:     nil,
			wantRoots: []string{},
		},
		{
			name: "children ordered by order index",
			items: []storage.Item{
				item("A", "", 0, storage.ItemFolder),
				item("B", "A", 1, storage.ItemDocument),
				item("C", "A", 0, storage.ItemDocument),
			},
			wantRoots: []string{"A"},
			children:  map[string][]string{"A": {"C", "B"}},
		},
		{
			name: "roots sorted and nested levels sorted",
			items: []storage.Item{
				item("act2", "", 1, storage.ItemFolder),
				item("act1", "", 0, storage.ItemFolder),
				item("s3", "act1", 2, storage.ItemDocument),
				item("s1", "act1", 0, storage.ItemDocument),
				item("s2", "act1", 1, storage.ItemFolder),
				item("s2b", "s2", 5, storage.ItemDocument),
				item("s2a", "s2", 4, storage.ItemDocument),
			},
			wantRoots: []string{"act1", "act2"},
			children: map[string][]string{
				"act1": {"s1", "s2", "s3"},
				"s2":   {"s2a", "s2b"},
				"act2": {},
			},
		},
		{
			name: "ties keep arrival order",
			items: []storage.Item{
				item("x", "", 1, storage.ItemDocument),
				item("y", "", 0, storage.ItemDocument),
				item("z", "", 1, storage.ItemDocument),
				item("w", "", 0, storage.ItemDocument),
			},
			wantRoots: []string{"y", "w", "x", "z"},
		},
		{
			name: "dangling parent becomes root",
			items: []storage.Item{
				item("A", "", 1, storage.ItemFolder),
				item("lost", "deleted-folder", 0, storage.ItemDocument),
				item("B", "A", 0, storage.ItemDocument),
			},
			wantRoots: []string{"lost", "A"},
			children:  map[string][]string{"A": {"B"}, "lost": {}},
		},
		{
			name: "two-node cycle is cut",
			items: []storage.Item{
				item("X", "Y", 0, storage.ItemFolder),
				item("Y", "X", 0, storage.ItemFolder),
			},
			wantRoots: []string{"X"},
			children:  map[string][]string{"X": {"Y"}},
		},
		{
			name: "self parent is cut",
			items: []storage.Item{
				item("S", "S", 0, storage.ItemFolder),
				item("T", "S", 0, storage.ItemDocument),
			},
			wantRoots: []string{"S"},
			children:  map[string][]string{"S": {"T"}},
		},
		{
			name: "cycle reached through a tail",
			items: []storage.Item{
				item("tail", "P", 0, storage.ItemDocument),
				item("Q", "P", 0, storage.ItemFolder),
				item("P", "Q", 0, storage.ItemFolder),
			},
			wantRoots: []string{"P"},
			children:  map[string][]string{"P": {"tail", "Q"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := Build(context.Background(), tt.items)

			if forest == nil {
				t.Fatal("Build() returned nil forest")
			}
			if got := ids(forest); !equal(got, tt.wantRoots) {
				t.Errorf("Build() roots = %v, want %v", got, tt.wantRoots)
			}
			if got := forest.Len(); got != len(tt.items) {
				t.Errorf("Build() Len() = %d, want %d", got, len(tt.items))
			}
			for id, want := range tt.children {
				node := Find(forest, id)
				if node == nil {
					t.Fatalf("Find(%q) = nil", id)
				}
				if got := ids(node.Children); !equal(got, want) {
					t.Errorf("children of %s = %v, want %v", id, got, want)
				}
			}
		})
	}
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	items := []storage.Item{item("A", "", 0, storage.ItemFolder)}
	forest := Build(context.Background(), items)

	forest[0].Name = "changed"
	if items[0].Name != "A" {
		t.Error("Build() nodes should be copies of the input items")
	}
}

func TestWalk(t *testing.T) {
	forest := Build(context.Background(), []storage.Item{
		item("A", "", 0, storage.ItemFolder),
		item("A1", "A", 0, storage.ItemFolder),
		item("A1a", "A1", 0, storage.ItemDocument),
		item("B", "", 1, storage.ItemDocument),
	})

	var visited []string
	var depths []int
	Walk(forest, func(n *Node, depth int) {
		visited = append(visited, n.ID)
		depths = append(depths, depth)
	})

	if !equal(visited, []string{"A", "A1", "A1a", "B"}) {
		t.Errorf("Walk() order = %v", visited)
	}
	wantDepths := []int{0, 1, 2, 0}
	for i := range wantDepths {
		if depths[i] != wantDepths[i] {
			t.Errorf("Walk() depth[%d] = %d, want %d", i, depths[i], wantDepths[i])
		}
	}
}
