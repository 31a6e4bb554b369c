package styles

import (
	"math"
	"strings"
)

const (
	barFull  = "█"
	barEmpty = "·"
)

// StrengthBar renders value as a horizontal bar of width cells, scaled so
// that scale fills the bar. Strengths above 1 use the overdrive style and
// negative strengths the inverted style.
func (s Styles) StrengthBar(value, scale float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := BarCells(value, scale, width)

	fill := s.Bar
	switch {
	case value < 0:
		fill = s.Inverted
	case value > 1:
		fill = s.Overdrive
	}

	var b strings.Builder
	if filled > 0 {
		b.WriteString(fill.Render(strings.Repeat(barFull, filled)))
	}
	if filled < width {
		b.WriteString(s.BarEmpty.Render(strings.Repeat(barEmpty, width-filled)))
	}
	return b.String()
}

// BarCells returns how many of width cells |value| fills relative to scale.
func BarCells(value, scale float64, width int) int {
	if width <= 0 || math.IsNaN(value) {
		return 0
	}
	scale = math.Abs(scale)
	if scale == 0 {
		scale = 1
	}
	cells := int(math.Round(math.Abs(value) / scale * float64(width)))
	if cells > width {
		return width
	}
	return cells
}
