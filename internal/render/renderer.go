// Package render turns constellations into HTML pages.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/outline"
	"github.com/dgallion1/constellate/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrPageNotFound is returned for a page index outside the document.
var ErrPageNotFound = errors.New("page not found")

// CodeStylesheetPath is where pages expect the code stylesheet.
const CodeStylesheetPath = "/assets/code.css"

// Options configures a Renderer.
type Options struct {
	Theme theme.Theme
	Mode  theme.ColorMode

	// PanelURL is the base URL of the Bokeh/Panel server; empty disables
	// interactive panels.
	PanelURL string

	// BasePath prefixes every site link, e.g. "/docs".
	BasePath string

	// MaxTableRows caps rendered data table rows; 0 means no cap.
	MaxTableRows int
}

// Renderer renders pages for one theme and color mode. It is safe for
// concurrent use.
type Renderer struct {
	opts Options
	md   *Markdown
	code *highlighter
	tmpl *template.Template
	css  []byte
}

// New parses the embedded templates and prepares the highlighters.
func New(opts Options) (*Renderer, error) {
	opts.BasePath = strings.TrimRight(opts.BasePath, "/")
	if opts.Mode == "" {
		opts.Mode = theme.Light
	}
	style := opts.Theme.CodeStyleName(opts.Mode)

	r := &Renderer{
		opts: opts,
		md:   NewMarkdown(style),
		code: newHighlighter(style),
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tmpl = tmpl

	css, err := r.code.CSS()
	if err != nil {
		return nil, fmt.Errorf("code stylesheet: %w", err)
	}
	r.css = css
	return r, nil
}

// Stylesheet returns the CSS for highlighted code.
func (r *Renderer) Stylesheet() []byte {
	return r.css
}

// Markdown returns the renderer's markdown converter.
func (r *Renderer) Markdown() *Markdown {
	return r.md
}

// PageHref is the link to page index of the document with slug.
func (r *Renderer) PageHref(slug string, index int) string {
	return r.href("/" + slug + "/" + strconv.Itoa(index))
}

func (r *Renderer) href(path string) string {
	return r.opts.BasePath + path
}

type siteView struct {
	Title       string
	Logo        string
	Home        string
	Stylesheets []string
	CodeCSS     string
	Vars        template.CSS
	Dark        bool
}

type navItem struct {
	Title    string
	Href     string
	Selected bool
	Children []navItem
}

type pageView struct {
	Site siteView

	DocTitle  string
	Slug      string
	Title     string
	Index     int
	Count     int
	PrevHref  string
	NextHref  string
	Outline   navItem
	Text      template.HTML
	Panel     *panelView
	HasPlotly bool
	HasVega   bool
}

type cardView struct {
	Title string
	Href  string
	Cover string
	Pages int
}

type indexView struct {
	Site  siteView
	Cards []cardView
}

// Page writes page index of c. A malformed document or an index outside
// the document returns an error before anything is written.
func (r *Renderer) Page(w io.Writer, c *constellation.Constellation, index int) error {
	if index < 0 || index >= c.Len() {
		return fmt.Errorf("%w: %s/%d", ErrPageNotFound, c.Slug, index)
	}
	tree, err := outline.Build(c, index)
	if err != nil {
		return err
	}

	star := c.Stars[index]
	text, err := r.md.Render(star.Markdown)
	if err != nil {
		return fmt.Errorf("star %s: %w", star.ID, err)
	}
	panel, err := r.panel(star)
	if err != nil {
		return err
	}

	v := pageView{
		Site:     r.site(),
		DocTitle: c.Title,
		Slug:     c.Slug,
		Title:    c.PageTitle(index),
		Index:    index,
		Count:    c.Len(),
		Outline:  r.outlineRoot(c, tree, index),
		Text:     text,
		Panel:    panel,
	}
	if v.Title == "" {
		v.Title = c.Title
	}
	nav := outline.Navigate(index, c.Len())
	if nav.HasPrev {
		v.PrevHref = r.PageHref(c.Slug, nav.Prev)
	}
	if nav.HasNext {
		v.NextHref = r.PageHref(c.Slug, nav.Next)
	}
	if panel != nil {
		v.HasPlotly = star.Kind == constellation.KindPlotly
		v.HasVega = star.Kind == constellation.KindVega
	}
	return r.execute(w, "page.html", v)
}

// Index writes the landing page listing docs in the given order.
func (r *Renderer) Index(w io.Writer, docs []*constellation.Constellation) error {
	v := indexView{Site: r.site()}
	for _, c := range docs {
		v.Cards = append(v.Cards, cardView{
			Title: c.Title,
			Href:  r.PageHref(c.Slug, 0),
			Cover: c.CoverImage(r.opts.Mode.IsDark()),
			Pages: c.Len(),
		})
	}
	return r.execute(w, "index.html", v)
}

// execute renders into a buffer first so a template error never leaves a
// half-written page.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) site() siteView {
	t := r.opts.Theme
	p := t.Palette(r.opts.Mode)

	var vars strings.Builder
	fmt.Fprintf(&vars, "--primary: %s; --accent: %s;", cssValue(p.Primary), cssValue(p.Accent))
	if t.Font.Family != "" {
		fmt.Fprintf(&vars, " --font: %s;", cssValue(t.Font.Family))
	}
	if t.Font.FamilyCode != "" {
		fmt.Fprintf(&vars, " --font-code: %s;", cssValue(t.Font.FamilyCode))
	}
	if t.Font.FeatureSettings != "" {
		fmt.Fprintf(&vars, " --font-features: %s;", cssValue(t.Font.FeatureSettings))
	}

	logo := t.SiteLogo
	if strings.HasPrefix(logo, "/") {
		logo = r.href(logo)
	}

	return siteView{
		Title:       t.SiteTitle,
		Logo:        logo,
		Home:        r.href("/"),
		Stylesheets: t.Stylesheets,
		CodeCSS:     r.href(CodeStylesheetPath),
		Vars:        template.CSS(vars.String()),
		Dark:        r.opts.Mode.IsDark(),
	}
}

// cssValue drops characters that could end a declaration early.
func cssValue(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '\\':
			return -1
		}
		return r
	}, s)
}

// outlineRoot wraps the outline in a root entry for the document title that
// links the first content page.
func (r *Renderer) outlineRoot(c *constellation.Constellation, tree *outline.Outline, index int) navItem {
	first := 1
	if c.Len() < 2 {
		first = 0
	}
	root := navItem{
		Title:    c.Title,
		Href:     r.PageHref(c.Slug, first),
		Selected: index == 0,
	}
	for _, n := range tree.Roots {
		root.Children = append(root.Children, r.navItem(c.Slug, n))
	}
	return root
}

func (r *Renderer) navItem(slug string, n *outline.Node) navItem {
	item := navItem{Title: n.Title, Href: r.PageHref(slug, n.Page), Selected: n.Selected}
	for _, child := range n.Children {
		item.Children = append(item.Children, r.navItem(slug, child))
	}
	return item
}
