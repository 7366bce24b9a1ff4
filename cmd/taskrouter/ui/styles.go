// Package ui provides the visual styling for taskrouter CLI output.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Semantic colors
	Success = lipgloss.Color("#8BC34A") // Lime Green
	Warning = lipgloss.Color("#FFC107") // Yellow
	Danger  = lipgloss.Color("#e53935") // Red
	Info    = lipgloss.Color("#2196F3") // Blue
	Muted   = lipgloss.Color("#7a8699") // Grey-blue
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Info)

	HandlerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Success)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	RationaleStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(Muted)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	stateStyles = map[string]lipgloss.Style{
		"SINGLE_DOMAIN":            lipgloss.NewStyle().Bold(true).Foreground(Success),
		"MULTI_DOMAIN_COORDINATED": lipgloss.NewStyle().Bold(true).Foreground(Info),
		"STRATEGIC_ESCALATION":     lipgloss.NewStyle().Bold(true).Foreground(Warning),
		"FALLBACK":                 lipgloss.NewStyle().Bold(true).Foreground(Muted),
	}

	severityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Bold(true).Foreground(Danger),
		"medium": lipgloss.NewStyle().Foreground(Warning),
		"low":    lipgloss.NewStyle().Foreground(Muted),
	}
)

// State renders a selection state name in its semantic color.
func State(name string) string {
	if s, ok := stateStyles[name]; ok {
		return s.Render(name)
	}
	return name
}

// Severity renders a conflict severity in its semantic color.
func Severity(name string) string {
	if s, ok := severityStyles[name]; ok {
		return s.Render(name)
	}
	return name
}

// Confidence renders a confidence value, colored by how decisive it is.
func Confidence(v float64) string {
	text := fmt.Sprintf("%.2f", v)
	switch {
	case v >= 0.7:
		return lipgloss.NewStyle().Foreground(Success).Render(text)
	case v >= 0.4:
		return lipgloss.NewStyle().Foreground(Warning).Render(text)
	default:
		return lipgloss.NewStyle().Foreground(Muted).Render(text)
	}
}
