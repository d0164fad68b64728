package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The single h1 becomes the document title and title page.
	if tree.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", tree.Title)
	}
	if tree.Cover == nil || tree.Cover.Text != "Intro text." {
		t.Fatalf("expected cover with intro text, got %+v", tree.Cover)
	}

	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(tree.Children))
	}

	secA := tree.Children[0]
	if secA.Title != "Section A" {
		t.Errorf("expected %q, got %q", "Section A", secA.Title)
	}
	if secA.Text != "Section A content." {
		t.Errorf("expected section A text %q, got %q", "Section A content.", secA.Text)
	}

	if len(secA.Children) != 1 {
		t.Fatalf("expected 1 h3 child under Section A, got %d", len(secA.Children))
	}
	if sub := secA.Children[0]; sub.Title != "Subsection A1" {
		t.Errorf("expected %q, got %q", "Subsection A1", sub.Title)
	}

	if secB := tree.Children[1]; secB.Title != "Section B" {
		t.Errorf("expected %q, got %q", "Section B", secB.Title)
	}
}

func TestMarkdownParser_SeveralTopLevelHeadings(t *testing.T) {
	input := "# One\n\nfirst\n\n# Two\n\nsecond\n"
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "two.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "two" {
		t.Errorf("expected filename title, got %q", tree.Title)
	}
	if tree.Cover != nil {
		t.Error("expected generated title page")
	}
	if len(tree.Children) != 2 || tree.Children[1].Text != "second" {
		t.Fatalf("expected two sections, got %+v", tree.Children)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 child for headingless markdown, got %d", len(tree.Children))
	}
	if tree.Children[0].Title != "" {
		t.Errorf("expected untitled section, got %q", tree.Children[0].Title)
	}
	if tree.Children[0].Text != input {
		t.Errorf("expected source kept verbatim, got %q", tree.Children[0].Text)
	}
}

func TestMarkdownParser_KeepsMarkdownSource(t *testing.T) {
	input := "# API Reference\n\nSome intro.\n\n## Endpoints\n\nList of **endpoints**:\n\n```\nGET /api/users\n# not a heading\n```\n\nMore text after code.\n"

	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 top-level child, got %d", len(tree.Children))
	}

	endpoints := tree.Children[0]
	if endpoints.Title != "Endpoints" {
		t.Errorf("expected title %q, got %q", "Endpoints", endpoints.Title)
	}
	for _, want := range []string{"**endpoints**", "```\nGET /api/users\n# not a heading\n```", "More text after code."} {
		if !strings.Contains(endpoints.Text, want) {
			t.Errorf("expected text to contain %q, got %q", want, endpoints.Text)
		}
	}
}

func TestMarkdownParser_SetextHeadings(t *testing.T) {
	input := "Part\n====\nbody\n\nSub\n---\nsub body\n"
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "setext.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Part" {
		t.Errorf("expected title Part, got %q", tree.Title)
	}
	if tree.Cover == nil || tree.Cover.Text != "body" {
		t.Errorf("expected cover body, got %+v", tree.Cover)
	}
	if len(tree.Children) != 1 || tree.Children[0].Text != "sub body" {
		t.Fatalf("expected one subsection with its body, got %+v", tree.Children)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected 0 children for empty input, got %d", len(tree.Children))
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"dir/plain.md", "plain"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		tree, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if tree.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, tree.Title)
		}
	}
}
