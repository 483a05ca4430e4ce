package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette
// https://catppuccin.com/palette
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext1 lipgloss.Color = "#bac2de"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
	colorMantle   lipgloss.Color = "#181825"
)

const (
	colorAccent  = colorPink
	colorBrand   = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	headerBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 2)

	headerAppStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Background(colorMantle).
			Bold(true)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorMantle)

	syncingStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Background(colorMantle).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Background(colorSurface0).
			Padding(0, 2)

	statusErrStyle = statusBarStyle.
			Foreground(colorError)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorMantle).
			Padding(0, 2)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	columnTitleStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(colorOverlay1)

	cardStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(0, 1)

	cardActiveStyle = cardStyle.
			Foreground(colorBase).
			Background(colorFocus).
			Bold(true)

	pillStyle = lipgloss.NewStyle().
			Foreground(colorBase).
			Background(colorInfo).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	modalTitleStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)
	cursorStyle     = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	currentStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	emptyStyle      = lipgloss.NewStyle().Foreground(colorSubtext0).Italic(true).Padding(1, 2)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorMantle).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorMantle)

	helpSepStyle = lipgloss.NewStyle().
			Foreground(colorOverlay0).
			Background(colorMantle)
)

// priorityColor maps Plane priorities to accents.
func priorityColor(p string) lipgloss.Color {
	switch p {
	case "urgent":
		return colorRed
	case "high":
		return colorPeach
	case "medium":
		return colorYellow
	case "low":
		return colorTeal
	}
	return colorOverlay1
}
