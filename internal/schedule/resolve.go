package schedule

import (
	"math"
	"sort"
)

// Plan is a dense per-step strength lookup for one sampling run.
// It is immutable once resolved and safe for concurrent reads.
type Plan struct {
	values     []float64
	truncation *TruncationWarning
}

// Len returns the run's total step count.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}

// At returns the strength for a step. Indices past the end are clamped to
// the last step and negative indices to the first, so a host whose step
// count drifted from the planned one never fails mid-run.
func (p *Plan) At(step int) float64 {
	n := p.Len()
	if n == 0 {
		return 0
	}
	if step >= n {
		step = n - 1
	}
	if step < 0 {
		step = 0
	}
	return p.values[step]
}

// Values returns a copy of the per-step strengths.
func (p *Plan) Values() []float64 {
	if p == nil {
		return nil
	}
	return append([]float64(nil), p.values...)
}

// Truncation returns the warning raised when the schedule was longer than
// the run, or nil.
func (p *Plan) Truncation() *TruncationWarning {
	if p == nil {
		return nil
	}
	return p.truncation
}

// Resolve expands a schedule into a plan of exactly totalSteps values.
//
// Segments are consumed in order. When the declared run lengths fall short
// of totalSteps the last segment's strength holds for the tail. When they
// overrun, the plan is filled in order, the straddling segment is cut and
// later segments are dropped; the plan then carries a TruncationWarning.
func Resolve(s *Schedule, totalSteps int) (*Plan, error) {
	if totalSteps <= 0 {
		return nil, &ResolutionError{TotalSteps: totalSteps, Msg: ErrInvalidTotalSteps.Error(), Err: ErrInvalidTotalSteps}
	}
	if s.Len() == 0 {
		return nil, &ResolutionError{TotalSteps: totalSteps, Msg: ErrEmptySchedule.Error(), Err: ErrEmptySchedule}
	}

	runs, err := runLengths(s, totalSteps)
	if err != nil {
		return nil, err
	}

	values := make([]float64, totalSteps)
	pos := 0
	declared := 0
	stop := -1
	truncated := 0

	for i, seg := range s.segments {
		n := runs[i]
		remaining := totalSteps - pos
		if n < 0 {
			n = remaining
		} else {
			declared = addSaturating(declared, n)
		}
		if remaining <= 0 {
			continue
		}
		if n > remaining {
			n = remaining
			truncated = i + 1
		}
		for j := pos; j < pos+n; j++ {
			values[j] = seg.Strength
		}
		pos += n
		if pos == totalSteps {
			stop = i
		}
	}

	if pos < totalSteps {
		hold := s.segments[len(s.segments)-1].Strength
		for j := pos; j < totalSteps; j++ {
			values[j] = hold
		}
	}

	plan := &Plan{values: values}
	if declared > totalSteps {
		plan.truncation = &TruncationWarning{
			DeclaredSteps:    declared,
			TotalSteps:       totalSteps,
			TruncatedSegment: truncated,
			DroppedSegments:  len(s.segments) - 1 - stop,
		}
	}
	return plan, nil
}

// addSaturating adds two non-negative step counts, stopping at math.MaxInt.
func addSaturating(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

// runLengths returns the step count per segment, -1 marking a remainder.
func runLengths(s *Schedule, totalSteps int) ([]int, error) {
	if s.proportions != nil {
		return apportion(s.proportions, totalSteps)
	}
	runs := make([]int, len(s.segments))
	for i, seg := range s.segments {
		if seg.RunLength == nil {
			runs[i] = -1
			continue
		}
		runs[i] = *seg.RunLength
	}
	return runs, nil
}

// apportion converts proportions into whole step counts summing to
// totalSteps using largest-remainder rounding. Ties go to the earlier
// segment.
func apportion(proportions []float64, totalSteps int) ([]int, error) {
	sum := 0.0
	for _, p := range proportions {
		sum += p
	}
	if sum <= 0 {
		return nil, &ResolutionError{TotalSteps: totalSteps, Msg: "relative durations sum to zero"}
	}

	runs := make([]int, len(proportions))
	fractions := make([]float64, len(proportions))
	assigned := 0
	for i, p := range proportions {
		quota := p / sum * float64(totalSteps)
		whole := math.Floor(quota)
		runs[i] = int(whole)
		fractions[i] = quota - whole
		assigned += runs[i]
	}

	order := make([]int, len(proportions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fractions[order[a]] > fractions[order[b]]
	})
	for k := 0; assigned < totalSteps; k++ {
		runs[order[k%len(order)]]++
		assigned++
	}

	return runs, nil
}
