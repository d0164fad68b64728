package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/doctree"
)

// NotebookParser turns a Jupyter notebook into pages. A markdown cell is
// paired with the cell after it:
//
//   - markdown + markdown starting "#constellate: latex" is a LaTeX page;
//   - markdown + code is a plot, app or code page depending on directives,
//     the cell's outputs and the libraries its source uses;
//   - a lone markdown cell is a text page.
//
// Cells starting "#constellate: ignore" are dropped and cells containing a
// "#constellate: setup" line are collected as setup code. Pages whose
// markdown opens with a heading become sections at that heading's level.
type NotebookParser struct{}

type notebook struct {
	Cells    []nbCell `json:"cells"`
	Metadata struct {
		KernelSpec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
}

type nbCell struct {
	CellType string     `json:"cell_type"`
	Source   nbText     `json:"source"`
	Outputs  []nbOutput `json:"outputs"`
}

type nbOutput struct {
	OutputType string                     `json:"output_type"`
	Name       string                     `json:"name"`
	Text       nbText                     `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
}

// nbText is notebook multiline text, stored either as one string or as a
// list of lines that keep their newlines.
type nbText []string

func (t *nbText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = strings.SplitAfter(s, "\n")
		if n := len(*t); n > 0 && (*t)[n-1] == "" {
			*t = (*t)[:n-1]
		}
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*t = lines
	return nil
}

func (t nbText) String() string {
	return strings.Join(t, "")
}

const (
	mimePNG    = "image/png"
	mimeText   = "text/plain"
	mimePlotly = "application/vnd.plotly.v1+json"
	mimeJS     = "application/javascript"
	mimeWidget = "application/vnd.jupyter.widget-view+json"
)

var vegaMIME = regexp.MustCompile(`^application/vnd\.vega(lite)?\.v\d+\+json$`)

func (p *NotebookParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	var nb notebook
	if err := json.NewDecoder(r).Decode(&nb); err != nil {
		return nil, fmt.Errorf("parse notebook: %w", err)
	}

	lang := nb.Metadata.LanguageInfo.Name
	if lang == "" {
		lang = nb.Metadata.KernelSpec.Language
	}
	if lang == "" {
		lang = "python"
	}

	var setup []string
	var cells []nbCell
	for _, c := range nb.Cells {
		switch {
		case len(c.Source) == 0:
		case isDirective(c.Source[0], "ignore"):
		case hasDirectiveLine(c.Source, "setup"):
			setup = append(setup, c.Source.String())
		default:
			cells = append(cells, c)
		}
	}

	var stars []constellation.Star
	for i := 0; i < len(cells); {
		star, used := nextStar(cells[i:], lang)
		if used == 0 {
			return nil, fmt.Errorf("parse notebook: cell %d (%s) does not follow a markdown cell:\n%s",
				i, cells[i].CellType, cells[i].Source.String())
		}
		stars = append(stars, star)
		i += used
	}

	tree := &doctree.DocTree{Title: TitleFromFilename(filename), Setup: setup}
	b := doctree.NewBuilder()
	for i, s := range stars {
		node := &doctree.DocNode{Text: s.Markdown, Panel: panelOf(s)}
		level, title, ok := markdownHeading(s.Markdown)
		if i == 0 && ok && level == 1 {
			node.Title, node.TitleInText = title, true
			tree.Title = title
			tree.Cover = node
			continue
		}
		if !ok {
			b.Append(node)
			continue
		}
		section := b.Heading(level, title)
		section.Text, section.TitleInText, section.Panel = node.Text, true, node.Panel
	}
	tree.Children = b.Tree(tree.Title).Children
	return tree, nil
}

// nextStar parses one page from the front of cells and reports how many
// cells it consumed; 0 means cells[0] cannot start a page.
func nextStar(cells []nbCell, lang string) (constellation.Star, int) {
	if len(cells) == 0 || cells[0].CellType != "markdown" {
		return constellation.Star{}, 0
	}
	md := cells[0].Source.String()

	if len(cells) >= 2 {
		next := cells[1]
		switch next.CellType {
		case "markdown":
			if isDirective(next.Source[0], "latex") {
				return constellation.Star{
					Kind:     constellation.KindLatex,
					Markdown: md,
					Latex:    stripDirectives(next.Source),
				}, 2
			}
		case "code":
			return codeStar(md, next, lang), 2
		}
	}
	return constellation.Star{Kind: constellation.KindPureMarkdown, Markdown: md}, 1
}

func codeStar(md string, cell nbCell, lang string) constellation.Star {
	code := stripDirectives(cell.Source)
	star := constellation.Star{Markdown: md, Lang: lang}

	switch classify(cell) {
	case constellation.KindPanel:
		star.Kind, star.Panel = constellation.KindPanel, code
	case constellation.KindMatplotlib:
		star.Kind, star.Matplotlib = constellation.KindMatplotlib, code
		star.Light = pngDataURI(cell)
	case constellation.KindPlotly:
		star.Kind, star.Plotly = constellation.KindPlotly, code
		star.Figure, _ = outputData(cell, func(m string) bool { return m == mimePlotly })
	case constellation.KindVega:
		star.Kind, star.Vega = constellation.KindVega, code
		star.Chart, _ = outputData(cell, vegaMIME.MatchString)
	default:
		out := textOutput(cell)
		star.Kind, star.Code, star.Output = constellation.KindCode, code, &out
	}
	return star
}

// classify decides what a code cell displays. Directives win, then rich
// outputs, then the plotting libraries named in the source.
func classify(cell nbCell) constellation.Kind {
	switch {
	case isDirective(cell.Source[0], "panel"):
		return constellation.KindPanel
	case isDirective(cell.Source[0], "matplotlib"):
		return constellation.KindMatplotlib
	case isDirective(cell.Source[0], "plain"):
		return constellation.KindCode
	}

	types := make(map[string]bool)
	for _, out := range cell.Outputs {
		for mime := range out.Data {
			types[mime] = true
		}
	}
	switch {
	case types[mimePlotly]:
		return constellation.KindPlotly
	case anyMatch(types, vegaMIME.MatchString):
		return constellation.KindVega
	case types[mimeJS] || types[mimeWidget]:
		return constellation.KindPanel
	case types[mimePNG]:
		return constellation.KindMatplotlib
	}

	src := cell.Source.String()
	mpl := strings.Contains(src, "plt.") || strings.Contains(src, "sns.")
	app := strings.Contains(src, "bokeh.") || strings.Contains(src, "pn.")
	switch {
	case mpl && !app:
		return constellation.KindMatplotlib
	case app && !mpl:
		return constellation.KindPanel
	}
	return constellation.KindCode
}

// textOutput returns the first output's plain text or stdout, or "".
func textOutput(cell nbCell) string {
	if len(cell.Outputs) == 0 {
		return ""
	}
	out := cell.Outputs[0]
	if raw, ok := out.Data[mimeText]; ok {
		var t nbText
		if err := json.Unmarshal(raw, &t); err == nil {
			return t.String()
		}
	}
	if out.Name == "stdout" {
		return out.Text.String()
	}
	return ""
}

func outputData(cell nbCell, match func(string) bool) (constellation.RawJSON, bool) {
	for _, out := range cell.Outputs {
		for mime, raw := range out.Data {
			if match(mime) {
				return constellation.RawJSON(raw), true
			}
		}
	}
	return nil, false
}

// pngDataURI inlines the first PNG output so the page needs no image file.
func pngDataURI(cell nbCell) string {
	raw, ok := outputData(cell, func(m string) bool { return m == mimePNG })
	if !ok {
		return ""
	}
	var t nbText
	if err := json.Unmarshal(raw, &t); err != nil {
		return ""
	}
	b64 := strings.Join(strings.Fields(t.String()), "")
	if b64 == "" {
		return ""
	}
	return "data:image/png;base64," + b64
}

func panelOf(s constellation.Star) *constellation.Star {
	if !s.HasPanel() {
		return nil
	}
	s.Markdown = ""
	return &s
}

func isDirective(line, name string) bool {
	return strings.ToLower(strings.TrimSpace(line)) == "#constellate: "+name
}

func hasDirectiveLine(src nbText, name string) bool {
	for _, line := range src {
		if isDirective(line, name) {
			return true
		}
	}
	return false
}

// stripDirectives drops "#constellate" lines from cell source.
func stripDirectives(src nbText) string {
	var b strings.Builder
	for _, line := range src {
		if strings.HasPrefix(line, "#constellate") {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}

var atxHeading = regexp.MustCompile(`^(#{1,6})[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)

// markdownHeading reports the heading that opens md, if any.
func markdownHeading(md string) (int, string, bool) {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := atxHeading.FindStringSubmatch(line)
		if m == nil {
			return 0, "", false
		}
		return len(m[1]), m[2], true
	}
	return 0, "", false
}

func anyMatch(set map[string]bool, match func(string) bool) bool {
	for k := range set {
		if match(k) {
			return true
		}
	}
	return false
}
