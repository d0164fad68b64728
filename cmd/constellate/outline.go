package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/outline"
	"github.com/spf13/cobra"
)

type outlineStyles struct {
	Title    lipgloss.Style
	Node     lipgloss.Style
	Selected lipgloss.Style
	Page     lipgloss.Style
}

func defaultOutlineStyles() outlineStyles {
	return outlineStyles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Node:     lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Page:     lipgloss.NewStyle().Faint(true),
	}
}

func outlineCmd(a *app) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the outline tree of a constellation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := checkFile(args[0])
			if err != nil {
				return err
			}
			if page >= c.Len() {
				return fmt.Errorf("page %d out of range [0, %d)", page, c.Len())
			}
			tree, err := outline.Build(c, page)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatOutline(c, tree, defaultOutlineStyles()))
			if page >= 0 {
				fmt.Fprintln(out, formatNav(outline.Navigate(page, c.Len())))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", -1, "mark the outline entry of this page")
	return cmd
}

// formatOutline renders the outline as an indented tree under the title.
func formatOutline(c *constellation.Constellation, tree *outline.Outline, st outlineStyles) string {
	var b strings.Builder
	b.WriteString(st.Title.Render(c.Title))
	b.WriteString("\n")

	tree.Walk(func(n *outline.Node, depth int) bool {
		marker, style := "  ", st.Node
		if n.Selected {
			marker, style = "> ", st.Selected
		}
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(marker)
		b.WriteString(style.Render(n.Title))
		b.WriteString(" ")
		b.WriteString(st.Page.Render(fmt.Sprintf("[%d]", n.Page)))
		b.WriteString("\n")
		return true
	})
	return b.String()
}

func formatNav(nav outline.Nav) string {
	prev, next := "-", "-"
	if nav.HasPrev {
		prev = fmt.Sprint(nav.Prev)
	}
	if nav.HasNext {
		next = fmt.Sprint(nav.Next)
	}
	return fmt.Sprintf("prev: %s  next: %s", prev, next)
}
