package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/theme"
)

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	if opts.Theme.Name == "" {
		th, err := theme.Builtin().Get("default")
		if err != nil {
			t.Fatal(err)
		}
		opts.Theme = th
	}
	r, err := New(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func strPtr(s string) *string { return &s }

func testDoc() *constellation.Constellation {
	return &constellation.Constellation{
		Title: "Sampling",
		Slug:  "sampling",
		Stars: []constellation.Star{
			{Kind: constellation.KindPureMarkdown, ID: "s0", Markdown: "# Sampling"},
			{Kind: constellation.KindCode, ID: "s1", Markdown: "Intro text", Code: "print(1)", Output: strPtr("1\n")},
			{Kind: constellation.KindMatplotlib, ID: "s2", Markdown: "A plot", Matplotlib: "plt.plot()", Light: "/img/l.png", Dark: "/img/d.png"},
			{Kind: constellation.KindPanel, ID: "s3", Markdown: "An app", Panel: "pn.panel(x)"},
			{Kind: constellation.KindDataframe, ID: "s4", Markdown: "Data", Code: "df", DataFrame: &constellation.Table{
				Columns: []string{"a", "b"},
				Rows:    [][]string{{"1", "x"}, {"2", "y"}, {"3", "z"}},
			}},
			{Kind: constellation.KindWidget, ID: "s5", Markdown: "Widget", HTML: "<b>hi</b>"},
		},
		Breadcrumbs: [][]int{{}, {0}, {0, 1}, {0, 1}, {0}, {0, 4}},
		StarTitles:  []string{"", "Intro", "Plotting", "", "Data", ""},
	}
}

func renderPage(t *testing.T, r *Renderer, c *constellation.Constellation, index int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Page(&buf, c, index); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return buf.String()
}

func TestPage_NavigationAndOutline(t *testing.T) {
	r := newTestRenderer(t, Options{})
	out := renderPage(t, r, testDoc(), 2)

	for _, want := range []string{
		`rel="prev" href="/sampling/1"`,
		`rel="next" href="/sampling/3"`,
		`<a href="/sampling/1">Sampling</a>`,
		`<a href="/sampling/2" class="selected" aria-current="page">Plotting</a>`,
		`<a href="/sampling/4">Data</a>`,
		`<img src="/img/l.png"`,
		`href="/assets/code.css"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestPage_FirstAndLastHaveOneLink(t *testing.T) {
	r := newTestRenderer(t, Options{})
	c := testDoc()

	first := renderPage(t, r, c, 0)
	if strings.Contains(first, `rel="prev"`) {
		t.Error("title page should have no previous link")
	}
	if !strings.Contains(first, `rel="next" href="/sampling/1"`) {
		t.Error("title page should link to page 1")
	}

	last := renderPage(t, r, c, c.Len()-1)
	if strings.Contains(last, `rel="next"`) {
		t.Error("last page should have no next link")
	}
}

func TestPage_UntitledPageSelectsParentEntry(t *testing.T) {
	r := newTestRenderer(t, Options{})
	out := renderPage(t, r, testDoc(), 3)
	if !strings.Contains(out, `<a href="/sampling/1" class="selected" aria-current="page">Intro</a>`) {
		t.Error("expected untitled page to highlight its parent's entry")
	}
}

func TestPage_DarkModeImage(t *testing.T) {
	r := newTestRenderer(t, Options{Mode: theme.Dark})
	out := renderPage(t, r, testDoc(), 2)
	if !strings.Contains(out, `<img src="/img/d.png"`) {
		t.Error("expected dark image in dark mode")
	}
	if !strings.Contains(out, `class="dark"`) {
		t.Error("expected dark class on html element")
	}
}

func TestPage_Panels(t *testing.T) {
	c := testDoc()

	t.Run("panel without server", func(t *testing.T) {
		out := renderPage(t, newTestRenderer(t, Options{}), c, 3)
		if !strings.Contains(out, "Interactive panels are not being served.") {
			t.Error("expected note when no panel server is configured")
		}
	})

	t.Run("panel autoload", func(t *testing.T) {
		out := renderPage(t, newTestRenderer(t, Options{PanelURL: "http://localhost:5006/"}), c, 3)
		if !strings.Contains(out, `src="http://localhost:5006/s3/autoload.js?`) {
			t.Error("expected bokeh autoload script")
		}
		if !strings.Contains(out, `id="panel-s3"`) {
			t.Error("expected panel target element")
		}
	})

	t.Run("table truncated", func(t *testing.T) {
		out := renderPage(t, newTestRenderer(t, Options{MaxTableRows: 2}), c, 4)
		if !strings.Contains(out, "<th>a</th><th>b</th>") {
			t.Error("expected ordered table header")
		}
		if !strings.Contains(out, "Showing 2 of 3 rows.") {
			t.Error("expected truncation note")
		}
		if strings.Contains(out, "<td>z</td>") {
			t.Error("expected third row dropped")
		}
	})

	t.Run("code output", func(t *testing.T) {
		out := renderPage(t, newTestRenderer(t, Options{}), c, 1)
		if !strings.Contains(out, `<div class="output">`) {
			t.Error("expected output block")
		}
		if !strings.Contains(out, "<summary>Code</summary>") {
			t.Error("expected code tab")
		}
	})

	t.Run("widget sandboxed", func(t *testing.T) {
		out := renderPage(t, newTestRenderer(t, Options{}), c, 5)
		if !strings.Contains(out, `sandbox="allow-scripts" srcdoc="&lt;b&gt;hi&lt;/b&gt;"`) {
			t.Error("expected escaped srcdoc in sandboxed iframe")
		}
	})
}

func TestPage_Errors(t *testing.T) {
	r := newTestRenderer(t, Options{})

	var buf bytes.Buffer
	err := r.Page(&buf, testDoc(), 6)
	if !errors.Is(err, ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}

	bad := testDoc()
	bad.Breadcrumbs[2] = []int{0, 3}
	err = r.Page(&buf, bad, 1)
	if !errors.Is(err, constellation.ErrMalformedDocument) {
		t.Errorf("expected ErrMalformedDocument, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("expected nothing written on error")
	}
}

func TestPage_BasePath(t *testing.T) {
	r := newTestRenderer(t, Options{BasePath: "/docs/"})
	if got := r.PageHref("sampling", 3); got != "/docs/sampling/3" {
		t.Errorf("expected /docs/sampling/3, got %q", got)
	}
	out := renderPage(t, r, testDoc(), 1)
	if !strings.Contains(out, `href="/docs/assets/code.css"`) {
		t.Error("expected prefixed stylesheet link")
	}
}

func TestIndex(t *testing.T) {
	r := newTestRenderer(t, Options{})
	var buf bytes.Buffer
	if err := r.Index(&buf, []*constellation.Constellation{testDoc()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `href="/sampling/0"`) {
		t.Error("expected card link to the title page")
	}
	if !strings.Contains(out, `<img src="/img/l.png"`) {
		t.Error("expected cover image")
	}
	if !strings.Contains(out, "6 pages") {
		t.Error("expected page count")
	}
}

func TestStylesheet(t *testing.T) {
	r := newTestRenderer(t, Options{})
	if !bytes.Contains(r.Stylesheet(), []byte(".chroma")) {
		t.Error("expected chroma classes in stylesheet")
	}
}

func TestDataIsland(t *testing.T) {
	got, err := dataIsland(constellation.RawJSON(`{"title":"</script><b>"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(got), "</") {
		t.Errorf("expected closing tags escaped, got %s", got)
	}
	if _, err := dataIsland(constellation.RawJSON(`{bad`)); err == nil {
		t.Error("expected invalid JSON rejected")
	}
}
