// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	// Accent highlights titles and the selection.
	Accent lipgloss.Color

	// Label colours citation labels and section headers.
	Label lipgloss.Color

	// Text is the default text colour.
	Text lipgloss.Color

	// Dim is for secondary text such as scores and hints.
	Dim lipgloss.Color

	// Good marks success.
	Good lipgloss.Color

	// Caution marks warnings such as an unresolved course.
	Caution lipgloss.Color

	// Bad marks errors.
	Bad lipgloss.Color

	// Frame is the border colour.
	Frame lipgloss.Color

	// Bar is the status bar background.
	Bar lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#D97706"), // Amber
		Label:   lipgloss.Color("#38BDF8"), // Sky
		Text:    lipgloss.Color("#E5E7EB"), // Near white
		Dim:     lipgloss.Color("#6B7280"), // Gray
		Good:    lipgloss.Color("#4ADE80"), // Green
		Caution: lipgloss.Color("#FACC15"), // Yellow
		Bad:     lipgloss.Color("#F87171"), // Red
		Frame:   lipgloss.Color("#374151"), // Slate
		Bar:     lipgloss.Color("#111827"), // Near black
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for view headers.
	Title lipgloss.Style

	// Label style for citation labels ("Course - Lesson n").
	Label lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Selected style for highlighted items.
	Selected lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Success style for success messages.
	Success lipgloss.Style

	// Warning style for warning messages.
	Warning lipgloss.Style

	// InputField style for the query box.
	InputField lipgloss.Style

	// Pane style for the passage viewport.
	Pane lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style

	// Help style for help text.
	Help lipgloss.Style
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

		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Label),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Text),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Dim),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Bar).
			Background(theme.Accent),

		Error: lipgloss.NewStyle().
			Foreground(theme.Bad),

		Success: lipgloss.NewStyle().
			Foreground(theme.Good),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Caution),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),

		Pane: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(theme.Frame),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Dim).
			Background(theme.Bar).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Dim),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
