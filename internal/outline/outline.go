// Package outline derives the sidebar navigation tree of a constellation
// from its breadcrumb trails and page titles.
package outline

import (
	"github.com/dgallion1/constellate/internal/constellation"
)

// Node is one entry in the outline.
type Node struct {
	Title    string  `json:"title"`
	Page     int     `json:"page"`
	Selected bool    `json:"selected,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Outline is the navigation tree for one document plus the page-to-node
// registry it was built with.
type Outline struct {
	Roots []*Node `json:"roots"`

	byStar map[string]*Node
	stars  []constellation.Star
}

// Build walks the pages in reading order:
//
//   - an empty trail (the title page) produces no node;
//   - a trail of length 1 starts a new top-level node;
//   - a longer trail nests under the node registered for the star at the
//     trail's last index. A titled page becomes a new child; an untitled page
//     is registered to the parent's node, so runs of untitled pages share
//     one entry.
//
// Nodes are keyed by star id, so ids must be unique.
//
// The node registered for page current, if any, is marked selected. Pass a
// negative current to select nothing.
func Build(c *constellation.Constellation, current int) (*Outline, error) {
	n := len(c.Stars)
	if len(c.Breadcrumbs) != n {
		return nil, constellation.Malformed(c.Slug, -1, "%d breadcrumb trails for %d pages", len(c.Breadcrumbs), n)
	}

	o := &Outline{
		byStar: make(map[string]*Node, n),
		stars:  c.Stars,
	}

	owner := make(map[string]int, n)
	for i, trail := range c.Breadcrumbs {
		id := c.Stars[i].ID
		if prev, dup := owner[id]; dup {
			return nil, constellation.Malformed(c.Slug, i, "star id %q already used by page %d", id, prev)
		}
		owner[id] = i
		title := c.PageTitle(i)

		switch len(trail) {
		case 0:
			// Title page.
		case 1:
			node := &Node{Title: title, Page: i}
			o.byStar[id] = node
			o.Roots = append(o.Roots, node)
		default:
			parentPage := trail[len(trail)-1]
			if parentPage < 0 || parentPage >= i {
				return nil, constellation.Malformed(c.Slug, i, "breadcrumb parent %d is not an earlier page", parentPage)
			}
			parent, ok := o.byStar[c.Stars[parentPage].ID]
			if !ok {
				return nil, constellation.Malformed(c.Slug, i, "breadcrumb parent %d has no outline entry", parentPage)
			}
			if title == "" {
				o.byStar[id] = parent
				continue
			}
			node := &Node{Title: title, Page: i}
			parent.Children = append(parent.Children, node)
			o.byStar[id] = node
		}
	}

	if node, ok := o.NodeFor(current); ok {
		node.Selected = true
	}
	return o, nil
}

// NodeFor returns the node page i is registered to. Pages with an empty
// trail have none.
func (o *Outline) NodeFor(page int) (*Node, bool) {
	if page < 0 || page >= len(o.stars) {
		return nil, false
	}
	node, ok := o.byStar[o.stars[page].ID]
	return node, ok
}

// Selected returns the selected node, if any.
func (o *Outline) Selected() (*Node, bool) {
	var found *Node
	o.Walk(func(n *Node, _ int) bool {
		if n.Selected {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Walk visits nodes depth-first in display order. Returning false stops the
// walk.
func (o *Outline) Walk(fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int) bool
	walk = func(nodes []*Node, depth int) bool {
		for _, n := range nodes {
			if !fn(n, depth) {
				return false
			}
			if !walk(n.Children, depth+1) {
				return false
			}
		}
		return true
	}
	walk(o.Roots, 0)
}
