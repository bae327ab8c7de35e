package ui

import "github.com/charmbracelet/lipgloss"

// Theme bundles the renderer and palette every view draws with.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
}

// DefaultTheme returns the stock palette bound to r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#7AA2F7"},
		Secondary: lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#E0AF68"},
		Muted:     lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#565F89"},
		Highlight: lipgloss.AdaptiveColor{Light: "#047857", Dark: "#9ECE6A"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#374151", Dark: "#A9B1D6"},
		Border:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#3B4261"},
		Error:     lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F7768E"},
	}
	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#111827", Dark: "#C0CAF5"})
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#283457"}).
		Bold(true)
	return t
}
