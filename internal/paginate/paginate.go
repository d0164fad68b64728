// Package paginate lays a parsed section tree out as constellation pages.
package paginate

import (
	"strconv"
	"strings"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/doctree"
	"github.com/dgallion1/constellate/internal/outline"
	"github.com/google/uuid"
)

// Config controls pagination.
type Config struct {
	PageSize int // Target page body size in words.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{PageSize: 250}
}

// fallbackTitleWords is how many words of an untitled top-level section
// make up its outline title.
const fallbackTitleWords = 6

var starNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://constellate.dev/star"))

// StarID is the id of page index in the document with slug. Ids only
// depend on position, so re-importing the same source yields the same file.
func StarID(slug string, index int) string {
	return uuid.NewSHA1(starNamespace, []byte(slug+"/"+strconv.Itoa(index))).String()
}

type builder struct {
	cfg  Config
	slug string
	c    *constellation.Constellation
}

// Build turns tree into a constellation with the given slug:
//
//   - page 0 is the cover, or a generated title page, with an empty trail;
//   - every section becomes a page whose trail is [0, ancestor pages...],
//     headed one level below the title page;
//   - a body longer than cfg.PageSize words continues on untitled pages that
//     nest under the section, so the outline folds them into it.
//
// Untitled top-level sections get a title from their first words, since
// they would otherwise show as blank outline entries.
func Build(tree *doctree.DocTree, slug string, cfg Config) (*constellation.Constellation, error) {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}

	b := &builder{
		cfg:  cfg,
		slug: slug,
		c:    &constellation.Constellation{Title: tree.Title, Slug: slug},
	}
	if b.c.Title == "" {
		b.c.Title = slug
	}

	cover := tree.Cover
	if cover == nil || strings.TrimSpace(cover.Text) == "" && cover.Panel == nil {
		cover = &doctree.DocNode{Text: "# " + b.c.Title}
	}
	text := cover.Text
	if cover.Title != "" && !cover.TitleInText {
		text = joinBlocks(heading(1, cover.Title), strings.TrimSpace(text))
	}
	b.add(text, cover.Panel, "", []int{})

	for _, child := range tree.Children {
		b.walk(child, []int{0}, 0)
	}

	b.setup(tree.Setup)

	if err := b.c.Validate(); err != nil {
		return nil, err
	}
	if _, err := outline.Build(b.c, -1); err != nil {
		return nil, err
	}
	return b.c, nil
}

func (b *builder) walk(node *doctree.DocNode, trail []int, depth int) {
	title := node.Title
	if title == "" && depth == 0 {
		title = fallbackTitle(node.Text, len(b.c.Stars))
	}

	parts := splitText(node.Text, b.cfg.PageSize)
	first := ""
	if len(parts) > 0 {
		first = parts[0]
	}
	if node.Title != "" && !node.TitleInText {
		first = joinBlocks(heading(depth+2, node.Title), first)
	}

	page := b.add(first, node.Panel, title, trail)

	childTrail := append(append([]int{}, trail...), page)
	for _, part := range parts[min(1, len(parts)):] {
		b.add(part, nil, "", childTrail)
	}
	for _, child := range node.Children {
		b.walk(child, childTrail, depth+1)
	}
}

// add appends a page and returns its index.
func (b *builder) add(markdown string, panel *constellation.Star, title string, trail []int) int {
	index := len(b.c.Stars)
	star := constellation.Star{Kind: constellation.KindPureMarkdown}
	if panel != nil {
		star = *panel
	}
	star.ID = StarID(b.slug, index)
	star.Markdown = markdown

	b.c.Stars = append(b.c.Stars, star)
	b.c.Breadcrumbs = append(b.c.Breadcrumbs, trail)
	b.c.StarTitles = append(b.c.StarTitles, title)
	return index
}

// setup copies notebook setup cells into the lists for the panel kinds the
// document uses.
func (b *builder) setup(cells []string) {
	if len(cells) == 0 {
		return
	}
	kinds := make(map[constellation.Kind]bool)
	for _, s := range b.c.Stars {
		kinds[s.Kind] = true
	}
	if kinds[constellation.KindMatplotlib] {
		b.c.SetupMatplotlib = cells
	}
	if kinds[constellation.KindPanel] {
		b.c.SetupPanel = cells
	}
	if kinds[constellation.KindPlotly] {
		b.c.SetupPlotly = cells
	}
	if kinds[constellation.KindDataframe] {
		b.c.SetupDataframe = cells
	}
}

func heading(level int, title string) string {
	return strings.Repeat("#", min(level, 6)) + " " + title
}

func joinBlocks(a, b string) string {
	if b == "" {
		return a
	}
	return a + "\n\n" + b
}

// fallbackTitle names an untitled section after the first words of its
// first line, or "Page N" when it has no text.
func fallbackTitle(text string, page int) string {
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) > 0 && strings.Trim(words[0], "#>-*+`") == "" {
			words = words[1:]
		}
		if len(words) == 0 {
			continue
		}
		if len(words) > fallbackTitleWords {
			return strings.Join(words[:fallbackTitleWords], " ") + "…"
		}
		return strings.Join(words, " ")
	}
	return "Page " + strconv.Itoa(page)
}
