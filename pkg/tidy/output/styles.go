package output

import "github.com/charmbracelet/lipgloss"

// Color constants using the ANSI 256-color palette, shared by the styled
// formatters.
const (
	// ColorPrimary is used for headers (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess is used for moved/restored rows (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for skipped rows (orange/yellow).
	ColorWarning = lipgloss.Color("214")

	// ColorDanger is used for failed rows (red).
	ColorDanger = lipgloss.Color("196")

	// ColorMuted is used for secondary text (gray).
	ColorMuted = lipgloss.Color("245")
)

var (
	// HeaderBox contains the stage summary at the top of styled output.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	// TitleStyle is used for the report title.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// LabelStyle is used for field labels ("Source:", "Failed:").
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is used for moved/restored status text.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// WarningStyle is used for skipped status text.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// ErrorStyle is used for failed status text.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)
)

// statusStyle picks the style for a row status.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "moved", "restored", "scanned", "planned":
		return SuccessStyle
	case "skipped":
		return WarningStyle
	case "failed":
		return ErrorStyle
	default:
		return LabelStyle
	}
}
