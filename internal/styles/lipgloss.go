package styles

import "github.com/charmbracelet/lipgloss"

// Styles contains lipgloss styles derived from theme tokens.
type Styles struct {
	Theme     Theme
	Title     lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Border    lipgloss.Style
	Bar       lipgloss.Style
	Overdrive lipgloss.Style
	Inverted  lipgloss.Style
	BarEmpty  lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
}

// DefaultStyles builds styles from the default theme.
func DefaultStyles() Styles {
	return BuildStyles(DefaultTheme)
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Theme:     DefaultTheme,
		Title:     plain,
		Text:      plain,
		Muted:     plain,
		Accent:    plain,
		Border:    plain,
		Bar:       plain,
		Overdrive: plain,
		Inverted:  plain,
		BarEmpty:  plain,
		Success:   plain,
		Warning:   plain,
		Error:     plain,
	}
}

// BuildStyles converts theme tokens into lipgloss styles.
func BuildStyles(theme Theme) Styles {
	tokens := theme.Tokens

	return Styles{
		Theme:     theme,
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)).Bold(true),
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted)),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Accent)),
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Border)),
		Bar:       lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Bar)),
		Overdrive: lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Overdrive)).Bold(true),
		Inverted:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Inverted)),
		BarEmpty:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Border)),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Success)),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Warning)),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Error)),
	}
}
