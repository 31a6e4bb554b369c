package schedule

import (
	"errors"
	"fmt"
)

// Schedule errors.
var (
	ErrEmptySchedule     = errors.New("empty schedule")
	ErrInvalidTotalSteps = errors.New("total steps must be greater than 0")
)

// SyntaxError reports malformed author input.
type SyntaxError struct {
	// Line is the 1-based source line for the text form.
	Line int

	// Index is the 1-based element index for the JSON form, or the entry
	// position when no line applies.
	Index int

	Msg string
	Err error
}

func (e *SyntaxError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("schedule syntax error: line %d: %s", e.Line, e.Msg)
	case e.Index > 0:
		return fmt.Sprintf("schedule syntax error: segment %d: %s", e.Index, e.Msg)
	default:
		return "schedule syntax error: " + e.Msg
	}
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// ResolutionError reports a schedule that cannot be resolved for a run.
type ResolutionError struct {
	TotalSteps int
	Msg        string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("schedule resolution error (total steps %d): %s", e.TotalSteps, e.Msg)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// TruncationWarning reports a schedule authored for a longer run than the
// one it was resolved against. It is attached to the plan, never returned
// as an error.
type TruncationWarning struct {
	// DeclaredSteps is the sum of the schedule's run lengths, saturating at
	// math.MaxInt.
	DeclaredSteps int `json:"declared_steps"`

	// TotalSteps is the run's step count.
	TotalSteps int `json:"total_steps"`

	// TruncatedSegment is the 1-based segment cut short, or 0 when the cut
	// fell on a segment boundary.
	TruncatedSegment int `json:"truncated_segment,omitempty"`

	// DroppedSegments is how many trailing segments received no steps.
	DroppedSegments int `json:"dropped_segments"`
}

func (w *TruncationWarning) Error() string {
	return w.String()
}

func (w *TruncationWarning) String() string {
	return fmt.Sprintf("schedule declares %d steps but run has %d: %d trailing segment(s) dropped",
		w.DeclaredSteps, w.TotalSteps, w.DroppedSegments)
}
