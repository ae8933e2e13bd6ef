package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/kanbanai/internal/schema"
)

// Catppuccin Mocha, true-color hex values.
const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorPink     lipgloss.Color = "#f5c2e7"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
)

const (
	colorBrand   = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorMuted   = colorOverlay0
)

// PriorityColor maps a priority to its title color.
func PriorityColor(p schema.Priority) lipgloss.Color {
	switch p {
	case schema.PriorityUrgent:
		return colorRed
	case schema.PriorityHigh:
		return colorPeach
	case schema.PriorityLow:
		return colorTeal
	default:
		return colorYellow
	}
}
