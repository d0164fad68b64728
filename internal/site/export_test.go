package site

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/library"
	"github.com/dgallion1/constellate/internal/render"
	"github.com/dgallion1/constellate/internal/theme"
)

func testLibrary(t *testing.T) *library.Library {
	t.Helper()
	lib := library.New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	docs := []*constellation.Constellation{
		{
			Title: "Alpha",
			Slug:  "alpha",
			Stars: []constellation.Star{
				{Kind: constellation.KindPureMarkdown, ID: "a0", Markdown: "# Alpha"},
				{Kind: constellation.KindPureMarkdown, ID: "a1", Markdown: "## One"},
				{Kind: constellation.KindPureMarkdown, ID: "a2", Markdown: "## Two"},
			},
			Breadcrumbs: [][]int{{}, {0}, {0}},
			StarTitles:  []string{"", "One", "Two"},
		},
		{
			Title:       "Beta",
			Slug:        "beta",
			Stars:       []constellation.Star{{Kind: constellation.KindPureMarkdown, ID: "b0", Markdown: "# Beta"}},
			Breadcrumbs: [][]int{{}},
			StarTitles:  []string{""},
		},
	}
	for _, c := range docs {
		if _, err := lib.Put(c); err != nil {
			t.Fatalf("put %s: %v", c.Slug, err)
		}
	}
	return lib
}

func testRenderer(t *testing.T, base string) *render.Renderer {
	t.Helper()
	r, err := render.New(render.Options{Theme: theme.Builtin()["default"], Mode: theme.Dark, BasePath: base})
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	return r
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected %s: %v", path, err)
	}
	return string(data)
}

func TestExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "site")

	stats, err := Export(context.Background(), testLibrary(t), testRenderer(t, ""), out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Documents != 2 || stats.Pages != 4 {
		t.Errorf("unexpected stats %+v", stats)
	}

	index := readFile(t, filepath.Join(out, "index.html"))
	if !strings.Contains(index, "Alpha") || !strings.Contains(index, "Beta") {
		t.Error("expected both documents on the index")
	}
	if css := readFile(t, filepath.Join(out, "assets", "code.css")); !strings.Contains(css, ".chroma") {
		t.Error("expected chroma stylesheet")
	}

	page := readFile(t, filepath.Join(out, "alpha", "2", "index.html"))
	if !strings.Contains(page, `rel="prev" href="/alpha/1"`) {
		t.Error("expected prev link on the last page")
	}
	if !strings.Contains(page, `class="dark"`) {
		t.Error("expected dark mode page")
	}
	readFile(t, filepath.Join(out, "beta", "0", "index.html"))

	redirect := readFile(t, filepath.Join(out, "alpha", "index.html"))
	if !strings.Contains(redirect, `url=/alpha/0`) {
		t.Errorf("expected redirect to page 0, got %s", redirect)
	}
}

func TestExport_BasePath(t *testing.T) {
	out := t.TempDir()
	if _, err := Export(context.Background(), testLibrary(t), testRenderer(t, "/docs"), out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page := readFile(t, filepath.Join(out, "alpha", "1", "index.html"))
	if !strings.Contains(page, `href="/docs/assets/code.css"`) {
		t.Error("expected stylesheet under the base path")
	}
}

func TestExport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Export(ctx, testLibrary(t), testRenderer(t, ""), t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCopyStatic(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "img"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "img", "star.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	if err := CopyStatic(src, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readFile(t, filepath.Join(out, "static", "img", "star.svg")); got != "<svg/>" {
		t.Errorf("unexpected copy %q", got)
	}
}
