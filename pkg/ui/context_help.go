package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderContextHelp renders the quick reference modal.
func RenderContextHelp(theme Theme, width int) string {
	r := theme.Renderer

	modalWidth := 60
	if modalWidth > width-4 {
		modalWidth = width - 4
	}
	if modalWidth < 20 {
		modalWidth = 20
	}

	titleStyle := r.NewStyle().
		Bold(true).
		Foreground(theme.Primary)

	contentStyle := r.NewStyle().
		Foreground(theme.Subtext)

	footerStyle := r.NewStyle().
		Foreground(theme.Muted).
		Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", modalWidth-4)))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(contextHelpTree))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("Esc or ? to close"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth)

	return modalStyle.Render(b.String())
}

const contextHelpTree = `## City List

**Navigation**
  j/k       Move up/down
  g/G       Jump to top/bottom
  PgUp/PgDn Half a page

**Rows**
  Enter     On a collapsed city: show its description
            On an open city or a description: close it
  a         Add a city after the selected one
  d         Delete the selected city
  y         Copy the selected name

**Other**
  Tab       Toggle detail pane
  r         Reload catalogs
  q         Quit`
