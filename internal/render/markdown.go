package render

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrMarkdown indicates markdown conversion failed.
var ErrMarkdown = errors.New("markdown conversion failed")

// Markdown converts star text to sanitized HTML. Math delimited by $...$ or
// $$...$$ is kept out of markdown processing and emitted for KaTeX.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewMarkdown builds a converter whose fenced code uses the given chroma
// style via CSS classes.
func NewMarkdown(codeStyle string) *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			extension.DefinitionList,
			highlighting.NewHighlighting(
				highlighting.WithStyle(codeStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// Notebook markdown routinely embeds HTML; bluemonday cleans it.
			gmhtml.WithUnsafe(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()
	policy.AllowElements("figure", "figcaption", "details", "summary")

	return &Markdown{md: md, policy: policy}
}

// Render converts src to HTML safe for direct inclusion in a page.
func (m *Markdown) Render(src string) (template.HTML, error) {
	protected, spans := protectMath(src)

	var buf bytes.Buffer
	if err := m.md.Convert([]byte(protected), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdown, err)
	}
	clean := m.policy.SanitizeBytes(buf.Bytes())
	return template.HTML(restoreMath(string(clean), spans)), nil
}

type mathSpan struct {
	tex     string
	display bool
}

func mathPlaceholder(i int) string {
	return fmt.Sprintf("CONSTELLATEMATH%dX", i)
}

// protectMath swaps math spans for placeholders, leaving code fences and
// inline code untouched.
func protectMath(src string) (string, []mathSpan) {
	var out strings.Builder
	var spans []mathSpan
	inFence := false
	fence := ""

	i := 0
	for i < len(src) {
		if i == 0 || src[i-1] == '\n' {
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src)
			} else {
				end += i + 1
			}
			line := src[i:end]
			trimmed := strings.TrimLeft(line, " \t")
			if inFence {
				if strings.HasPrefix(trimmed, fence) {
					inFence = false
				}
				out.WriteString(line)
				i = end
				continue
			}
			if f := fenceMarker(trimmed); f != "" {
				inFence, fence = true, f
				out.WriteString(line)
				i = end
				continue
			}
		}

		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src) && src[i+1] == '$':
			out.WriteString(src[i : i+2])
			i += 2
		case c == '`':
			n := 1
			for i+n < len(src) && src[i+n] == '`' {
				n++
			}
			ticks := src[i : i+n]
			closing := strings.Index(src[i+n:], ticks)
			if closing < 0 {
				out.WriteString(ticks)
				i += n
				continue
			}
			end := i + n + closing + n
			out.WriteString(src[i:end])
			i = end
		case strings.HasPrefix(src[i:], "$$"):
			closing := strings.Index(src[i+2:], "$$")
			if closing < 0 {
				out.WriteString("$$")
				i += 2
				continue
			}
			out.WriteString(mathPlaceholder(len(spans)))
			spans = append(spans, mathSpan{tex: strings.TrimSpace(src[i+2 : i+2+closing]), display: true})
			i += closing + 4
		case c == '$':
			j := closingDollar(src, i+1)
			if j < 0 {
				out.WriteByte('$')
				i++
				continue
			}
			out.WriteString(mathPlaceholder(len(spans)))
			spans = append(spans, mathSpan{tex: src[i+1 : j]})
			i = j + 1
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), spans
}

func fenceMarker(line string) string {
	for _, f := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, f) {
			return f
		}
	}
	return ""
}

// closingDollar finds the end of an inline $...$ span opened just before
// start. Like pandoc, the content may not start or end with a space, the
// closing $ may not be followed by a digit, and the span may not cross a
// blank line.
func closingDollar(src string, start int) int {
	if start >= len(src) || src[start] == ' ' || src[start] == '\n' || src[start] == '$' {
		return -1
	}
	for k := start; k < len(src); k++ {
		switch src[k] {
		case '\\':
			k++
		case '\n':
			if k+1 < len(src) && src[k+1] == '\n' {
				return -1
			}
		case '$':
			if src[k-1] == ' ' {
				continue
			}
			if k+1 < len(src) && src[k+1] >= '0' && src[k+1] <= '9' {
				continue
			}
			return k
		}
	}
	return -1
}

func restoreMath(s string, spans []mathSpan) string {
	if len(spans) == 0 {
		return s
	}
	pairs := make([]string, 0, 2*len(spans))
	for i, sp := range spans {
		var rendered string
		if sp.display {
			rendered = `<span class="math display">\[` + html.EscapeString(sp.tex) + `\]</span>`
		} else {
			rendered = `<span class="math inline">\(` + html.EscapeString(sp.tex) + `\)</span>`
		}
		pairs = append(pairs, mathPlaceholder(i), rendered)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
