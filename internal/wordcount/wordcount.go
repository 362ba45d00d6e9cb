// Package wordcount computes the cached word totals stored on documents.
package wordcount

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Footnote,
	),
)

// Count returns the number of whitespace-separated tokens in s.
func Count(s string) int {
	return len(strings.Fields(s))
}

// Markdown returns the number of words a reader sees in stored content, which
// may be markdown, rich-text HTML or plain text. Markup such as heading markers,
// emphasis, link targets and HTML tags is not counted.
func Markdown(src string) int {
	if strings.TrimSpace(src) == "" {
		return 0
	}
	return Count(PlainText(src))
}

// StripTags replaces HTML tags with spaces and decodes entities.
func StripTags(s string) string {
	return html.UnescapeString(htmlTag.ReplaceAllString(s, " "))
}

// PlainText returns the visible text of markdown source with blocks separated by
// whitespace. Text inside HTML is kept with its tags removed.
func PlainText(src string) string {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.HTMLBlock:
			var raw bytes.Buffer
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				raw.Write(line.Value(source))
			}
			if node.HasClosure() {
				raw.Write(node.ClosureLine.Value(source))
			}
			buf.WriteString(StripTags(raw.String()))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			buf.WriteByte(' ')
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.AutoLink:
			buf.Write(node.Label(source))
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}
