// Package styles provides the colour palette and lipgloss styles for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Accent     lipgloss.Color
	Highlight  lipgloss.Color
	Text       lipgloss.Color
	Dim        lipgloss.Color
	Danger     lipgloss.Color
	Good       lipgloss.Color
	Frame      lipgloss.Color
	StatusBack lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#5B8DEF"),
		Highlight:  lipgloss.Color("#F2C14E"),
		Text:       lipgloss.Color("#E4E7EB"),
		Dim:        lipgloss.Color("#7B8794"),
		Danger:     lipgloss.Color("#EF6F6C"),
		Good:       lipgloss.Color("#7BC47F"),
		Frame:      lipgloss.Color("#3E4C59"),
		StatusBack: lipgloss.Color("#1F2933"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title renders the application header.
	Title lipgloss.Style

	// Heading renders the heading a result sits under.
	Heading lipgloss.Style

	// Score renders the normalised relevance.
	Score lipgloss.Style

	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style

	// InputField frames the query input.
	InputField lipgloss.Style

	// Preview frames the expanded content of the selected result.
	Preview lipgloss.Style

	StatusBar lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent),

		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Text),

		Score: lipgloss.NewStyle().
			Foreground(theme.Highlight),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Text),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Dim),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Text).
			Background(theme.Accent),

		Error: lipgloss.NewStyle().
			Foreground(theme.Danger),

		Success: lipgloss.NewStyle().
			Foreground(theme.Good),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),

		Preview: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Accent).
			PaddingLeft(1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Dim).
			Background(theme.StatusBack).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Dim),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
