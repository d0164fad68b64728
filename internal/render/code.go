package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// defaultLang is what notebook panels are written in unless told otherwise.
const defaultLang = "python"

// highlighter renders panel source with chroma using CSS classes, so the
// same stylesheet covers panels and fenced code inside markdown.
type highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
	plain     *chromahtml.Formatter
}

func newHighlighter(styleName string) *highlighter {
	return &highlighter{
		style:     styles.Get(styleName),
		formatter: chromahtml.New(chromahtml.WithClasses(true), chromahtml.WithLineNumbers(true)),
		plain:     chromahtml.New(chromahtml.WithClasses(true)),
	}
}

// Code highlights source in lang with line numbers.
func (h *highlighter) Code(source, lang string) (template.HTML, error) {
	return h.format(h.formatter, source, lang)
}

// Output renders captured cell output as plain preformatted text.
func (h *highlighter) Output(text string) (template.HTML, error) {
	return h.format(h.plain, text, "plaintext")
}

func (h *highlighter) format(f *chromahtml.Formatter, source, lang string) (template.HTML, error) {
	if lang == "" {
		lang = defaultLang
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", lang, err)
	}
	var buf bytes.Buffer
	if err := f.Format(&buf, h.style, it); err != nil {
		return "", fmt.Errorf("format %s: %w", lang, err)
	}
	return template.HTML(buf.String()), nil
}

// CSS returns the stylesheet for the highlighter's style.
func (h *highlighter) CSS() ([]byte, error) {
	var buf bytes.Buffer
	if err := h.formatter.WriteCSS(&buf, h.style); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
