package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarCells(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		scale float64
		width int
		want  int
	}{
		{"full", 1, 1, 10, 10},
		{"half", 0.5, 1, 10, 5},
		{"scaled to peak", 0.45, 0.9, 10, 5},
		{"zero", 0, 1, 10, 0},
		{"negative uses magnitude", -0.3, 1, 10, 3},
		{"overdrive clamps", 1.5, 1, 10, 10},
		{"zero scale", 0.5, 0, 4, 2},
		{"no width", 1, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BarCells(tt.value, tt.scale, tt.width))
		})
	}
}

func TestStrengthBarPlain(t *testing.T) {
	s := PlainStyles()

	bar := s.StrengthBar(0.5, 1, 4)
	assert.Equal(t, "██··", bar)
	assert.Equal(t, "····", s.StrengthBar(0, 1, 4))
	assert.Empty(t, s.StrengthBar(1, 1, 0))
	assert.Equal(t, 4, strings.Count(s.StrengthBar(2, 1, 4), "█"))
}

func TestLookupTheme(t *testing.T) {
	theme, err := LookupTheme("")
	require.NoError(t, err)
	assert.Equal(t, "default", theme.Name)

	theme, err = LookupTheme("High-Contrast")
	require.NoError(t, err)
	assert.Equal(t, HighContrastTheme.Tokens.Bar, theme.Tokens.Bar)

	_, err = LookupTheme("solarized")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default, high-contrast")
}

func TestBuildStylesUsesTheme(t *testing.T) {
	s := BuildStyles(HighContrastTheme)
	assert.Equal(t, "high-contrast", s.Theme.Name)
	assert.Equal(t, DefaultTheme.Name, DefaultStyles().Theme.Name)
}
