package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/outline"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

const notesMarkdown = `# Notes

Things I learned.

## Go

Channels.

### Select

Multiplexing.

## Rust

Ownership.
`

func TestImportCheckOutlineShow(t *testing.T) {
	lib := t.TempDir()
	src := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(src, []byte(notesMarkdown), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--dir", lib, "import", src)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "(4 pages)") {
		t.Errorf("expected 4 pages reported, got %q", out)
	}

	out, err = runCLI(t, "--dir", lib, "import", src)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if !strings.Contains(out, "unchanged") {
		t.Errorf("expected unchanged re-import, got %q", out)
	}

	out, err = runCLI(t, "--dir", lib, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ok   notes (4 pages)") {
		t.Errorf("unexpected check output %q", out)
	}

	doc := filepath.Join(lib, "notes.constellate")
	out, err = runCLI(t, "outline", doc, "--page", "3")
	if err != nil {
		t.Fatalf("outline: %v", err)
	}
	for _, want := range []string{"Notes", "Go", "Select", "Rust", "prev: 2  next: -"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected outline to contain %q, got:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "show", "--raw", doc, "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "## Go") || !strings.Contains(out, "Channels.") {
		t.Errorf("unexpected page markdown %q", out)
	}

	if _, err := runCLI(t, "show", doc, "9"); err == nil {
		t.Error("expected out-of-range page to fail")
	}
}

func TestCheck_Malformed(t *testing.T) {
	lib := t.TempDir()
	bad := `{"title": "Bad", "stars": [{"kind": "pure_markdown", "star_id": "a", "markdown": "x"}], "breadcrumbs": [[0]], "star_titles": [""]}`
	if err := os.WriteFile(filepath.Join(lib, "bad.constellate"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--dir", lib, "check")
	if err == nil {
		t.Fatal("expected check to fail")
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("expected failure listed, got %q", out)
	}

	if _, err := runCLI(t, "check", filepath.Join(lib, "bad.constellate")); err == nil {
		t.Error("expected file check to fail")
	}
}

func TestBuild(t *testing.T) {
	lib := t.TempDir()
	src := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(src, []byte(notesMarkdown), 0o644); err != nil {
		t.Fatal(err)
	}
	if out, err := runCLI(t, "--dir", lib, "import", src); err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}

	site := filepath.Join(t.TempDir(), "site")
	out, err := runCLI(t, "--dir", lib, "--mode", "dark", "build", "--out", site)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	if !strings.Contains(out, "wrote 4 pages from 1 constellations") {
		t.Errorf("unexpected build output %q", out)
	}
	if _, err := os.Stat(filepath.Join(site, "notes", "3", "index.html")); err != nil {
		t.Errorf("expected last page written: %v", err)
	}
}

func TestInvalidMode(t *testing.T) {
	if _, err := runCLI(t, "--mode", "sepia", "check"); err == nil {
		t.Error("expected invalid color mode to be rejected")
	}
}

func plainStyles() outlineStyles {
	return outlineStyles{
		Title:    lipgloss.NewStyle(),
		Node:     lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle(),
		Page:     lipgloss.NewStyle(),
	}
}

func TestFormatOutline(t *testing.T) {
	c := &constellation.Constellation{
		Title: "Doc",
		Slug:  "doc",
		Stars: []constellation.Star{
			{Kind: constellation.KindPureMarkdown, ID: "0"},
			{Kind: constellation.KindPureMarkdown, ID: "1"},
			{Kind: constellation.KindPureMarkdown, ID: "2"},
		},
		Breadcrumbs: [][]int{{}, {0}, {0, 1}},
		StarTitles:  []string{"", "Intro", "Detail"},
	}
	tree, err := outline.Build(c, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := "Doc\n  Intro [1]\n  > Detail [2]\n"
	if got := formatOutline(c, tree, plainStyles()); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestPageMarkdown(t *testing.T) {
	out := "42\n"
	c := &constellation.Constellation{
		Title: "Doc",
		Stars: []constellation.Star{
			{Kind: constellation.KindCode, Markdown: "## Answer", Code: "print(6*7)\n", Output: &out},
			{Kind: constellation.KindDataframe, Markdown: "Data", DataFrame: &constellation.Table{
				Columns: []string{"a", "b|c"},
				Rows:    [][]string{{"1", "2"}, {"3"}, {"5", "6"}},
			}},
			{Kind: constellation.KindMatplotlib, Markdown: "Plot", Matplotlib: "plt.plot()", Light: "data:image/png;base64,AAA"},
		},
		StarTitles: []string{"Answer", "", ""},
	}

	want := "## Answer\n\n```python\nprint(6*7)\n```\n\n```text\n42\n```\n"
	if got := pageMarkdown(c, 0); got != want {
		t.Errorf("code page:\nexpected %q\ngot %q", want, got)
	}

	table := markdownTable(c.Stars[1].DataFrame, 2)
	wantTable := "| a | b\\|c |\n| --- | --- |\n| 1 | 2 |\n| 3 |  |\n\n_Showing 2 of 3 rows._"
	if table != wantTable {
		t.Errorf("table:\nexpected %q\ngot %q", wantTable, table)
	}

	if got := pageMarkdown(c, 2); !strings.Contains(got, "not shown in the terminal") || strings.Contains(got, "base64") {
		t.Errorf("expected inline image replaced, got %q", got)
	}

	if got := pageHeader(c, 0); got != "Answer · page 1 of 3" {
		t.Errorf("unexpected header %q", got)
	}
}

func TestFence(t *testing.T) {
	if got := fence("a ``` b", "md"); got != "````md\na ``` b\n````" {
		t.Errorf("unexpected fence %q", got)
	}
}
