package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/outline"
	"github.com/spf13/cobra"
)

// showTableRows caps data tables printed to the terminal.
const showTableRows = 20

func showCmd(a *app) *cobra.Command {
	var width int
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <file> [page]",
		Short: "Render one page of a constellation in the terminal",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := checkFile(args[0])
			if err != nil {
				return err
			}
			page := 0
			if len(args) == 2 {
				page, err = strconv.Atoi(args[1])
				if err != nil || page < 0 || page >= c.Len() {
					return fmt.Errorf("page %q out of range [0, %d)", args[1], c.Len())
				}
			}

			md := pageMarkdown(c, page)
			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprint(out, md)
				return nil
			}

			style := "light"
			if a.colorMode().IsDark() {
				style = "dark"
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(style),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return err
			}
			body, err := r.Render(md)
			if err != nil {
				return err
			}

			header := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render(pageHeader(c, page))
			fmt.Fprintln(out, header)
			fmt.Fprint(out, body)
			fmt.Fprintln(out, lipgloss.NewStyle().Faint(true).Padding(0, 1).Render(formatNav(outline.Navigate(page, c.Len()))))
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 80, "word wrap width")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the page markdown without rendering")
	return cmd
}

func pageHeader(c *constellation.Constellation, page int) string {
	title := c.PageTitle(page)
	if title == "" {
		title = c.Title
	}
	return fmt.Sprintf("%s · page %d of %d", title, page+1, c.Len())
}

// pageMarkdown is the page text followed by a terminal rendition of its
// panel.
func pageMarkdown(c *constellation.Constellation, page int) string {
	s := c.Stars[page]
	parts := []string{strings.TrimSpace(s.Markdown)}

	switch s.Kind {
	case constellation.KindLatex:
		parts = append(parts, s.Latex)
	case constellation.KindMatplotlib:
		if img := s.Image(false); img != "" && !strings.HasPrefix(img, "data:") {
			parts = append(parts, fmt.Sprintf("![plot](%s)", img))
		} else {
			parts = append(parts, "_Plot image not shown in the terminal._")
		}
	case constellation.KindDataframe:
		if s.DataFrame != nil {
			parts = append(parts, markdownTable(s.DataFrame, showTableRows))
		}
	case constellation.KindPanel:
		parts = append(parts, "_Interactive panel not shown in the terminal._")
	case constellation.KindPlotly, constellation.KindVega, constellation.KindWidget:
		parts = append(parts, "_Interactive chart not shown in the terminal._")
	}

	if code := s.PanelCode(); code != "" {
		parts = append(parts, fence(strings.TrimRight(code, "\n"), langOr(s.Lang, "python")))
	}
	if out := strings.TrimRight(s.OutputText(), "\n"); out != "" {
		parts = append(parts, fence(out, "text"))
	}

	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n") + "\n"
}

func fence(body, lang string) string {
	marker := "```"
	for strings.Contains(body, marker) {
		marker += "`"
	}
	return marker + lang + "\n" + body + "\n" + marker
}

func langOr(lang, fallback string) string {
	if lang == "" {
		return fallback
	}
	return lang
}

func markdownTable(t *constellation.Table, limit int) string {
	if len(t.Columns) == 0 {
		return ""
	}
	cell := func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
	}

	var b strings.Builder
	b.WriteString("|")
	for _, col := range t.Columns {
		b.WriteString(" " + cell(col) + " |")
	}
	b.WriteString("\n|")
	for range t.Columns {
		b.WriteString(" --- |")
	}
	rows := t.Rows
	if len(rows) > limit {
		rows = rows[:limit]
	}
	for _, row := range rows {
		b.WriteString("\n|")
		for i := range t.Columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			b.WriteString(" " + cell(v) + " |")
		}
	}
	if len(t.Rows) > limit {
		fmt.Fprintf(&b, "\n\n_Showing %d of %d rows._", limit, len(t.Rows))
	}
	return b.String()
}
