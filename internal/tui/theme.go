package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the monitor.
// Inspired by btop and Tokyo Night color scheme.
type Theme struct {
	BgPanel     lipgloss.Color
	TextPrimary lipgloss.Color
	TextDim     lipgloss.Color
	Border      lipgloss.Color
	Accent      lipgloss.Color
	Success     lipgloss.Color
	Warning     lipgloss.Color
	Error       lipgloss.Color
}

var DefaultTheme = Theme{
	BgPanel:     lipgloss.Color("#24283b"),
	TextPrimary: lipgloss.Color("#c0caf5"),
	TextDim:     lipgloss.Color("#565f89"),
	Border:      lipgloss.Color("#414868"),
	Accent:      lipgloss.Color("#7aa2f7"),
	Success:     lipgloss.Color("#9ece6a"),
	Warning:     lipgloss.Color("#e0af68"),
	Error:       lipgloss.Color("#f7768e"),
}

// Styles holds the pre-built lipgloss styles for the monitor.
type Styles struct {
	Title     lipgloss.Style
	Panel     lipgloss.Style
	Header    lipgloss.Style
	Name      lipgloss.Style
	Value     lipgloss.Style
	Changed   lipgloss.Style
	StatusBar lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles builds the styles from the default theme.
var DefaultStyles = buildStyles(DefaultTheme)

func buildStyles(theme Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Bold(true),
		Name: lipgloss.NewStyle().
			Foreground(theme.TextPrimary),
		Value: lipgloss.NewStyle().
			Foreground(theme.Success),
		Changed: lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.TextDim),
		Help: lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Padding(0, 1),
	}
}
