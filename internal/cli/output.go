package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"inkwell/internal/storage"
	"inkwell/internal/tree"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// Success writes data as indented JSON, or calls text for human-readable output.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	text(f.Writer)
	return nil
}

// TreeNode is the JSON shape of an item in tree output.
type TreeNode struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Name      string     `json:"name"`
	WordCount int        `json:"word_count"`
	Children  []TreeNode `json:"children"`
}

func toTreeNodes(nodes []*tree.Node) []TreeNode {
	out := make([]TreeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, TreeNode{
			ID:        n.ID,
			Type:      string(n.ItemType),
			Name:      n.Name,
			WordCount: n.WordCount,
			Children:  toTreeNodes(n.Children),
		})
	}
	return out
}

// RenderTree writes the forest as an indented outline. Containers are marked
// with "+", everything else with "-".
func RenderTree(w io.Writer, forest tree.Forest) {
	if len(forest) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	tree.Walk(forest, func(n *tree.Node, depth int) {
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), marker(n.ItemType), describe(&n.Item))
	})
}

func marker(t storage.ItemType) string {
	if t.IsContainer() {
		return "+"
	}
	return "-"
}

// describe is the item name followed by its kind, unless that is implied, and
// its word count.
func describe(item *storage.Item) string {
	var b strings.Builder
	b.WriteString(item.Name)
	if item.ItemType != storage.ItemFolder && item.ItemType != storage.ItemDocument {
		b.WriteString(" [" + string(item.ItemType) + "]")
	}
	switch {
	case item.WordCount == 1:
		b.WriteString(" (1 word)")
	case item.WordCount > 1:
		b.WriteString(" (" + strconv.Itoa(item.WordCount) + " words)")
	}
	return b.String()
}
