// Package schedule parses LoRA strength schedules and resolves them into
// dense per-step plans.
package schedule

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Segment is one run of consecutive steps sharing a strength.
type Segment struct {
	// RunLength is the number of steps this strength applies to.
	// Nil means the segment takes every remaining step.
	RunLength *int

	// Strength is the adapter multiplier for the run.
	Strength float64
}

// IsRemainder reports whether the segment consumes all remaining steps.
func (s Segment) IsRemainder() bool {
	return s.RunLength == nil
}

// Schedule is an ordered, immutable list of segments.
type Schedule struct {
	segments []Segment

	// proportions holds the authored durations of a relative schedule.
	// They are apportioned to integer run lengths at resolve time, and the
	// segments' RunLength fields are left nil.
	proportions []float64
}

// New builds a schedule from segments, enforcing the remainder invariant.
func New(segments []Segment) (*Schedule, error) {
	if len(segments) == 0 {
		return nil, ErrEmptySchedule
	}
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		if seg.RunLength != nil {
			if *seg.RunLength < 0 {
				return nil, &SyntaxError{Index: i + 1, Msg: "run length must be non-negative"}
			}
			n := *seg.RunLength
			seg.RunLength = &n
		} else if i != len(segments)-1 {
			return nil, &SyntaxError{Index: i + 2, Msg: "segment follows a remainder segment and is unreachable"}
		}
		out[i] = seg
	}
	return &Schedule{segments: out}, nil
}

// Steps returns a pointer to n, for building segments inline.
func Steps(n int) *int {
	return &n
}

// Segments returns a copy of the schedule's segments.
func (s *Schedule) Segments() []Segment {
	if s == nil {
		return nil
	}
	out := make([]Segment, len(s.segments))
	for i, seg := range s.segments {
		if seg.RunLength != nil {
			seg.RunLength = Steps(*seg.RunLength)
		}
		out[i] = seg
	}
	return out
}

// Len returns the number of segments.
func (s *Schedule) Len() int {
	if s == nil {
		return 0
	}
	return len(s.segments)
}

// IsRelative reports whether run lengths are proportions of the run.
func (s *Schedule) IsRelative() bool {
	return s != nil && s.proportions != nil
}

// HasRemainder reports whether the final segment takes all remaining steps.
func (s *Schedule) HasRemainder() bool {
	if s.Len() == 0 || s.proportions != nil {
		return false
	}
	return s.segments[len(s.segments)-1].IsRemainder()
}

// Total returns the sum of the specified run lengths, saturating at
// math.MaxInt. Remainder segments and relative schedules contribute nothing.
func (s *Schedule) Total() int {
	if s == nil || s.proportions != nil {
		return 0
	}
	total := 0
	for _, seg := range s.segments {
		if seg.RunLength != nil {
			total = addSaturating(total, *seg.RunLength)
		}
	}
	return total
}

// Peak returns the largest strength in the schedule.
// The adapter's text-encoder side is patched statically at this value.
func (s *Schedule) Peak() float64 {
	if s.Len() == 0 {
		return 0
	}
	peak := math.Inf(-1)
	for _, seg := range s.segments {
		if seg.Strength > peak {
			peak = seg.Strength
		}
	}
	return peak
}

// Proportions returns a copy of a relative schedule's authored durations.
func (s *Schedule) Proportions() []float64 {
	if !s.IsRelative() {
		return nil
	}
	return append([]float64(nil), s.proportions...)
}

// Format renders the schedule in the line-oriented text form.
func Format(s *Schedule) string {
	if s.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for i, seg := range s.segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch {
		case s.proportions != nil:
			b.WriteString(strconv.FormatFloat(s.proportions[i], 'g', -1, 64))
		case seg.RunLength == nil:
			b.WriteString(remainderToken)
		default:
			b.WriteString(strconv.Itoa(*seg.RunLength))
		}
		b.WriteString(" : ")
		b.WriteString(strconv.FormatFloat(seg.Strength, 'g', -1, 64))
	}
	return b.String()
}

// String implements fmt.Stringer.
func (s *Schedule) String() string {
	return strings.ReplaceAll(Format(s), "\n", ", ")
}

type jsonSegment struct {
	Duration json.Number `json:"duration,omitempty"`
	Strength float64     `json:"strength"`
}

// MarshalJSON renders the schedule in the JSON array form.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	out := make([]jsonSegment, 0, s.Len())
	if s != nil {
		for i, seg := range s.segments {
			item := jsonSegment{Strength: seg.Strength}
			switch {
			case s.proportions != nil:
				item.Duration = json.Number(strconv.FormatFloat(s.proportions[i], 'g', -1, 64))
			case seg.RunLength != nil:
				item.Duration = json.Number(strconv.Itoa(*seg.RunLength))
			}
			out = append(out, item)
		}
	}
	return json.Marshal(out)
}
