package commands

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/graphanalysis"
)

var (
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Yellow/Orange
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#6B7280") // Gray

	styleGood = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarn = lipgloss.NewStyle().Foreground(colorWarning)
	styleBad  = lipgloss.NewStyle().Foreground(colorError)
	styleDim  = lipgloss.NewStyle().Foreground(colorMuted)

	styleHeader = lipgloss.NewStyle().Bold(true)
)

// renderBand colors a confidence band green/yellow/red for terminal output.
func renderBand(b claim.ConfidenceBand) string {
	switch b {
	case claim.VeryHigh, claim.High:
		return styleGood.Render(string(b))
	case claim.Medium:
		return styleWarn.Render(string(b))
	default:
		return styleBad.Render(string(b))
	}
}

// renderRisk colors a bottleneck risk level.
func renderRisk(r graphanalysis.RiskLevel) string {
	switch r {
	case graphanalysis.RiskHigh:
		return styleBad.Render(string(r))
	case graphanalysis.RiskMedium:
		return styleWarn.Render(string(r))
	default:
		return styleGood.Render(string(r))
	}
}

// renderHealth colors a dependency health status.
func renderHealth(h graphanalysis.HealthStatus) string {
	switch h {
	case graphanalysis.Healthy:
		return styleGood.Render(string(h))
	case graphanalysis.Warning:
		return styleWarn.Render(string(h))
	default:
		return styleBad.Render(string(h))
	}
}
