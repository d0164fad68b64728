package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/constellate/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser splits a Markdown file into sections at its headings. Body
// text keeps its original Markdown source.
type MarkdownParser struct{}

type headingSpan struct {
	level      int
	title      string
	start, end int // byte range of the heading lines
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var headings []headingSpan
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		if span, ok := locateHeading(h, src); ok {
			headings = append(headings, span)
		}
	}

	title := TitleFromFilename(filename)
	cursor := 0

	// A document with a single leading h1 uses it as the title page.
	var cover string
	if len(headings) > 0 && headings[0].level == 1 && countLevel(headings, 1) == 1 {
		h1 := headings[0]
		headings = headings[1:]
		title = h1.title
		cursor = len(src)
		if len(headings) > 0 {
			cursor = headings[0].start
		}
		cover = strings.TrimSpace(string(src[:h1.start]) + "\n\n" + string(src[h1.end:cursor]))
	}

	b := doctree.NewBuilder()
	for _, h := range headings {
		b.Text(strings.TrimSpace(string(src[cursor:h.start])))
		b.Heading(h.level, h.title)
		cursor = h.end
	}
	b.Text(strings.TrimSpace(string(src[cursor:])))

	tree := b.Tree(title)
	if cover != "" {
		tree.Cover = &doctree.DocNode{Title: title, Text: cover}
	}
	return tree, nil
}

// locateHeading finds the full source lines of a heading, including a
// setext underline.
func locateHeading(h *ast.Heading, src []byte) (headingSpan, bool) {
	lines := h.Lines()
	if lines.Len() == 0 {
		return headingSpan{}, false
	}
	first := lines.At(0).Start
	last := lines.At(lines.Len() - 1).Stop

	if last > first && src[last-1] == '\n' {
		last--
	}

	start := bytes.LastIndexByte(src[:first], '\n') + 1
	end := lineEnd(src, last)
	atx := bytes.HasPrefix(bytes.TrimLeft(src[start:], " "), []byte("#"))
	if next := end; !atx && next < len(src) && isSetextUnderline(src[next:lineEnd(src, next)]) {
		end = lineEnd(src, next)
	}
	return headingSpan{
		level: h.Level,
		title: strings.TrimSpace(string(h.Text(src))),
		start: start,
		end:   end,
	}, true
}

func lineEnd(src []byte, from int) int {
	if from >= len(src) {
		return len(src)
	}
	i := bytes.IndexByte(src[from:], '\n')
	if i < 0 {
		return len(src)
	}
	return from + i + 1
}

func isSetextUnderline(line []byte) bool {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return false
	}
	return len(bytes.Trim(line, "=")) == 0 || len(bytes.Trim(line, "-")) == 0
}

func countLevel(headings []headingSpan, level int) int {
	n := 0
	for _, h := range headings {
		if h.level == level {
			n++
		}
	}
	return n
}
