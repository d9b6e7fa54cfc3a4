package styles

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha color palette
var (
	Surface1 = lipgloss.Color("#45475a")
	Overlay1 = lipgloss.Color("#7f849c")
	Subtext0 = lipgloss.Color("#a6adc8") // Text colors
	Text     = lipgloss.Color("#cdd6f4") // Main text

	Sky    = lipgloss.Color("#89dceb") // Sky blue
	Green  = lipgloss.Color("#a6e3a1")
	Yellow = lipgloss.Color("#f9e2af")
	Peach  = lipgloss.Color("#fab387") // Orange
	Mauve  = lipgloss.Color("#cba6f7") // Purple
)

var (
	// Status line styles
	InfoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Mauve)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Yellow).
			Bold(true)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(Subtext0)

	// Data direction indicators
	TXStyle = lipgloss.NewStyle().
		Foreground(Peach).
		Bold(true)

	RXStyle = lipgloss.NewStyle().
		Foreground(Sky).
		Bold(true)

	HexLabelStyle = lipgloss.NewStyle().
			Foreground(Overlay1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Mauve)

	// Table styles
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Mauve)

	CellStyle = lipgloss.NewStyle().
			Foreground(Text).
			BorderForeground(Surface1).
			Align(lipgloss.Left)
)
