package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/opencode-ai/lorasched/internal/styles"
)

const barWidth = 24

func renderSchedule(w io.Writer, s *schedule.Schedule) error {
	header := "RUN LENGTH"
	if s.IsRelative() {
		header = "PROPORTION"
	}
	if err := writeTable(w, []string{"#", header, "STRENGTH"}, scheduleRows(s)); err != nil {
		return err
	}

	switch {
	case s.IsRelative():
		fmt.Fprintf(w, "\n%d segment(s), proportional durations, peak %s\n", s.Len(), formatStrength(s.Peak()))
	case s.HasRemainder():
		fmt.Fprintf(w, "\n%d segment(s), %d declared step(s) + remainder, peak %s\n", s.Len(), s.Total(), formatStrength(s.Peak()))
	default:
		fmt.Fprintf(w, "\n%d segment(s), %d declared step(s), peak %s\n", s.Len(), s.Total(), formatStrength(s.Peak()))
	}
	return nil
}

// renderPlan prints one line per step with its strength and a bar scaled to
// the plan's largest magnitude.
func renderPlan(w io.Writer, st styles.Styles, title string, values []float64, peak float64) error {
	if title != "" {
		fmt.Fprintln(w, st.Title.Render(title))
	}
	scale := barScale(values, peak)
	for step, v := range values {
		_, err := fmt.Fprintf(w, "%s  %s  %s\n",
			st.Muted.Render(fmt.Sprintf("%4d", step)),
			st.Text.Render(fmt.Sprintf("%7s", formatStrength(v))),
			st.StrengthBar(v, scale, barWidth),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func barScale(values []float64, peak float64) float64 {
	scale := math.Max(1, math.Abs(peak))
	for _, v := range values {
		scale = math.Max(scale, math.Abs(v))
	}
	return scale
}

func renderRule(w io.Writer, st styles.Styles) {
	fmt.Fprintln(w, st.Border.Render(strings.Repeat("─", barWidth+16)))
}
