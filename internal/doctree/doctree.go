// Package doctree is the section tree importers produce before it is
// paginated into a constellation.
package doctree

import (
	"strings"

	"github.com/dgallion1/constellate/internal/constellation"
)

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata, a leading h1, or filename)
	Cover    *DocNode   // Title page content; nil means a generated title page
	Setup    []string   // Notebook setup cells
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title string // Section heading (empty for untitled blocks)
	Text  string // Markdown body

	// TitleInText is set when Text already starts with the heading.
	TitleInText bool

	// Panel carries the kind and panel fields of the page; its Markdown
	// and ID are ignored.
	Panel *constellation.Star

	Page     int // Source page/line (0 if N/A)
	Children []*DocNode
}

// Walk visits nodes depth-first in document order.
func (t *DocTree) Walk(fn func(n *DocNode, depth int)) {
	var walk func(nodes []*DocNode, depth int)
	walk = func(nodes []*DocNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(t.Children, 0)
}

type stackEntry struct {
	node  *DocNode
	level int
}

// Builder assembles a tree from a flat run of headings and body text, the
// way every heading-based importer walks its source.
type Builder struct {
	root  DocNode
	stack []stackEntry
	text  []string
}

func NewBuilder() *Builder {
	b := &Builder{}
	b.stack = []stackEntry{{node: &b.root, level: 0}}
	return b
}

// Heading starts a section at level, closing any open section at the same
// or deeper level.
func (b *Builder) Heading(level int, title string) *DocNode {
	b.flush()
	node := &DocNode{Title: title}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, stackEntry{node: node, level: level})
	return node
}

// Text appends a block of body text to the open section.
func (b *Builder) Text(block string) {
	if block != "" {
		b.text = append(b.text, block)
	}
}

// Append adds a ready-made untitled node under the open section.
func (b *Builder) Append(node *DocNode) {
	b.flush()
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
}

func (b *Builder) flush() {
	if len(b.text) == 0 {
		return
	}
	top := b.stack[len(b.stack)-1].node
	joined := strings.Join(b.text, "\n\n")
	if top.Text != "" {
		top.Text += "\n\n" + joined
	} else {
		top.Text = joined
	}
	b.text = b.text[:0]
}

// Tree finishes the build. Text before the first heading becomes an
// untitled leading section.
func (b *Builder) Tree(title string) *DocTree {
	b.flush()
	tree := &DocTree{Title: title, Children: b.root.Children}
	if b.root.Text != "" {
		tree.Children = append([]*DocNode{{Text: b.root.Text}}, tree.Children...)
	}
	return tree
}
