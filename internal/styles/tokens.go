// Package styles maps theme tokens to lipgloss styles for plan rendering.
package styles

import (
	"fmt"
	"sort"
	"strings"
)

// ThemeTokens defines the semantic color roles used by the CLI.
type ThemeTokens struct {
	Text      string
	TextMuted string
	Border    string
	Accent    string
	Bar       string
	Overdrive string
	Inverted  string
	Success   string
	Warning   string
	Error     string
}

// Theme bundles a palette with a name.
type Theme struct {
	Name   string
	Tokens ThemeTokens
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// ThemeNames returns the registered theme names, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTheme finds a theme by name. An empty name selects the default theme.
func LookupTheme(name string) (Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultTheme, nil
	}
	theme, ok := Themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}
	return theme, nil
}
