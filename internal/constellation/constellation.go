package constellation

// Kind identifies the panel a star renders next to its markdown.
type Kind string

const (
	KindPureMarkdown Kind = "pure_markdown"
	KindCode         Kind = "markdown_code"
	KindMatplotlib   Kind = "markdown_matplotlib"
	KindLatex        Kind = "markdown_latex"
	KindPanel        Kind = "markdown_panel"
	KindPlotly       Kind = "markdown_plotly"
	KindDataframe    Kind = "markdown_dataframe"
	KindVega         Kind = "markdown_vega"
	KindWidget       Kind = "markdown_widget"
)

var knownKinds = map[Kind]bool{
	KindPureMarkdown: true,
	KindCode:         true,
	KindMatplotlib:   true,
	KindLatex:        true,
	KindPanel:        true,
	KindPlotly:       true,
	KindDataframe:    true,
	KindVega:         true,
	KindWidget:       true,
}

// Constellation is one document: an ordered list of stars plus the
// breadcrumb and title annotations the outline is derived from.
type Constellation struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`

	Stars       []Star   `json:"stars"`
	Breadcrumbs [][]int  `json:"breadcrumbs"`
	StarTitles  []string `json:"star_titles"`

	// Setup cells prepended when the generator ran panel code.
	SetupMatplotlib []string `json:"setup_matplotlib,omitempty"`
	SetupPanel      []string `json:"setup_panel,omitempty"`
	SetupPlotly     []string `json:"setup_plotly,omitempty"`
	SetupDataframe  []string `json:"setup_dataframe,omitempty"`
}

// Star is a single page. Only the fields relevant to its Kind are set.
type Star struct {
	Kind     Kind   `json:"kind"`
	ID       string `json:"star_id"`
	Markdown string `json:"markdown"`

	// markdown_code, markdown_dataframe
	Code   string  `json:"code,omitempty"`
	Output *string `json:"output,omitempty"`
	Lang   string  `json:"lang,omitempty"`

	// markdown_matplotlib
	Matplotlib string `json:"matplotlib,omitempty"`
	Light      string `json:"light,omitempty"`
	Dark       string `json:"dark,omitempty"`

	// markdown_latex
	Latex string `json:"latex,omitempty"`

	// markdown_panel
	Panel string `json:"panel,omitempty"`

	// markdown_plotly
	Plotly string  `json:"plotly,omitempty"`
	Figure RawJSON `json:"figure,omitempty"`

	// markdown_dataframe
	DataFrame *Table `json:"df_json,omitempty"`

	// markdown_vega
	Vega  string  `json:"vega,omitempty"`
	Chart RawJSON `json:"chart,omitempty"`

	// markdown_widget
	HTML string `json:"html,omitempty"`
}

// RawJSON is an opaque JSON payload (plot figures, chart specs).
type RawJSON []byte

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// HasPanel reports whether the star renders a content panel beside its text.
func (s Star) HasPanel() bool {
	return s.Kind != KindPureMarkdown
}

// OutputText returns the captured cell output, or "" when there is none.
func (s Star) OutputText() string {
	if s.Output == nil {
		return ""
	}
	return *s.Output
}

// PanelCode returns the source shown in a panel's "Code" tab.
func (s Star) PanelCode() string {
	switch s.Kind {
	case KindCode, KindDataframe:
		return s.Code
	case KindMatplotlib:
		return s.Matplotlib
	case KindPanel:
		return s.Panel
	case KindPlotly:
		return s.Plotly
	case KindVega:
		return s.Vega
	}
	return ""
}

// Image returns the static plot URL for the given color mode, falling back
// to the other mode when only one was generated.
func (s Star) Image(dark bool) string {
	if dark {
		if s.Dark != "" {
			return s.Dark
		}
		return s.Light
	}
	if s.Light != "" {
		return s.Light
	}
	return s.Dark
}

// Len returns the number of pages.
func (c *Constellation) Len() int {
	return len(c.Stars)
}

// PageTitle returns the display title for page i ("" means no outline entry).
func (c *Constellation) PageTitle(i int) string {
	if i < 0 || i >= len(c.StarTitles) {
		return ""
	}
	return c.StarTitles[i]
}

// CoverImage returns the first static plot image in the document, used for
// index cards.
func (c *Constellation) CoverImage(dark bool) string {
	for _, s := range c.Stars {
		if s.Kind == KindMatplotlib {
			if url := s.Image(dark); url != "" {
				return url
			}
		}
	}
	return ""
}
