// Package outline derives a flat section listing from a generated markdown
// document, for inclusion in API responses.
package outline

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is one heading of a document, in document order.
type Section struct {
	Level int    `json:"level"`
	Title string `json:"title"`
}

// Parse walks the markdown AST and returns the document's headings. A
// document with no headings yields an empty outline, not an error.
func Parse(document string) []Section {
	src := []byte(document)
	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	sections := []Section{}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		sections = append(sections, Section{
			Level: h.Level,
			Title: headingText(h, src),
		})
	}
	return sections
}

// headingText gets the plain text of a heading, flattening any inline
// formatting (bold, code spans) it contains.
func headingText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
		} else {
			buf.WriteString(headingText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
