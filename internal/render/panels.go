package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/dgallion1/constellate/internal/constellation"
)

type panelView struct {
	Kind string
	ID   string

	Code   template.HTML
	Output template.HTML

	Image string
	Alt   string

	Latex template.HTML
	Table *tableView

	Figure template.JS
	Chart  template.JS

	AutoloadSrc string
	ElementID   string

	Widget string

	Note string
}

type tableView struct {
	Columns []string
	Rows    [][]string
	Total   int
	Shown   int
}

// Truncated reports whether rows were dropped.
func (t *tableView) Truncated() bool { return t.Shown < t.Total }

func (r *Renderer) panel(s constellation.Star) (*panelView, error) {
	if !s.HasPanel() {
		return nil, nil
	}
	p := &panelView{Kind: string(s.Kind), ID: s.ID}

	if src := s.PanelCode(); src != "" {
		code, err := r.code.Code(src, s.Lang)
		if err != nil {
			return nil, err
		}
		p.Code = code
	}

	switch s.Kind {
	case constellation.KindCode:
		if out := s.OutputText(); strings.TrimSpace(out) != "" {
			html, err := r.code.Output(out)
			if err != nil {
				return nil, err
			}
			p.Output = html
		}

	case constellation.KindMatplotlib:
		p.Image = s.Image(r.opts.Mode.IsDark())
		p.Alt = "Plot for " + s.ID
		if p.Image == "" {
			p.Note = "No image was generated for this plot."
		}

	case constellation.KindLatex:
		html, err := r.md.Render(s.Latex)
		if err != nil {
			return nil, err
		}
		p.Latex = html

	case constellation.KindDataframe:
		if s.DataFrame != nil {
			p.Table = r.table(s.DataFrame)
		} else if out := s.OutputText(); out != "" {
			html, err := r.code.Output(out)
			if err != nil {
				return nil, err
			}
			p.Output = html
		}

	case constellation.KindPlotly:
		js, err := dataIsland(s.Figure)
		if err != nil {
			return nil, fmt.Errorf("star %s figure: %w", s.ID, err)
		}
		p.Figure = js

	case constellation.KindVega:
		js, err := dataIsland(s.Chart)
		if err != nil {
			return nil, fmt.Errorf("star %s chart: %w", s.ID, err)
		}
		p.Chart = js

	case constellation.KindPanel:
		p.ElementID = "panel-" + s.ID
		if r.opts.PanelURL == "" {
			p.Note = "Interactive panels are not being served."
			break
		}
		p.AutoloadSrc = autoloadURL(r.opts.PanelURL, s.ID, p.ElementID)

	case constellation.KindWidget:
		p.Widget = s.HTML
	}
	return p, nil
}

func (r *Renderer) table(t *constellation.Table) *tableView {
	v := &tableView{Columns: t.Columns, Rows: t.Rows, Total: len(t.Rows), Shown: len(t.Rows)}
	if limit := r.opts.MaxTableRows; limit > 0 && len(t.Rows) > limit {
		v.Rows = t.Rows[:limit]
		v.Shown = limit
	}
	return v
}

// dataIsland validates raw and makes it safe inside a script element.
func dataIsland(raw constellation.RawJSON) (template.JS, error) {
	if len(raw) == 0 {
		return "null", nil
	}
	if !json.Valid(raw) {
		return "", fmt.Errorf("invalid JSON payload")
	}
	// "</" only occurs inside JSON strings, where "<\/" is an equivalent escape.
	return template.JS(strings.ReplaceAll(string(raw), "</", `<\/`)), nil
}

// autoloadURL builds the Bokeh server script URL for one panel app.
func autoloadURL(base, starID, elementID string) string {
	base = strings.TrimRight(base, "/")
	app := base + "/" + url.PathEscape(starID)
	q := url.Values{}
	q.Set("bokeh-autoload-element", elementID)
	q.Set("bokeh-app-path", "/"+starID)
	q.Set("bokeh-absolute-url", app)
	return app + "/autoload.js?" + q.Encode()
}
