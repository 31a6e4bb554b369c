package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	remainderToken = "*"
	commentToken   = "#"
)

// Parse parses a schedule in JSON or text form.
//
// JSON is attempted first: an input that decodes as a JSON array is the JSON
// form, anything else is read as text. A lone number is a constant schedule.
func Parse(source string) (*Schedule, error) {
	return parse(source, false)
}

// ParseRelative parses a schedule whose durations are proportions of the
// run rather than step counts. Proportions may be fractional and are
// apportioned to whole steps when the schedule is resolved.
func ParseRelative(source string) (*Schedule, error) {
	return parse(source, true)
}

type entry struct {
	line       int
	index      int
	runLength  *int
	proportion *float64
	strength   float64
}

func (e entry) isRemainder() bool {
	return e.runLength == nil && e.proportion == nil
}

func parse(source string, relative bool) (*Schedule, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, &SyntaxError{Msg: "empty schedule", Err: ErrEmptySchedule}
	}

	entries, isJSON, err := parseJSON(trimmed, relative)
	if !isJSON {
		entries, err = parseText(source, relative)
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &SyntaxError{Msg: "empty schedule", Err: ErrEmptySchedule}
	}

	return build(entries, relative)
}

func build(entries []entry, relative bool) (*Schedule, error) {
	sched := &Schedule{segments: make([]Segment, 0, len(entries))}
	if relative {
		sched.proportions = make([]float64, 0, len(entries))
	}

	for i, e := range entries {
		if i > 0 && entries[i-1].isRemainder() {
			return nil, entryError(e, "segment follows a remainder segment and is unreachable")
		}

		seg := Segment{Strength: e.strength}
		if relative {
			if e.proportion == nil {
				return nil, entryError(e, "relative schedules require a duration on every segment")
			}
			sched.proportions = append(sched.proportions, *e.proportion)
		} else if e.runLength != nil {
			seg.RunLength = Steps(*e.runLength)
		}
		sched.segments = append(sched.segments, seg)
	}

	return sched, nil
}

func entryError(e entry, msg string) *SyntaxError {
	if e.line > 0 {
		return &SyntaxError{Line: e.line, Msg: msg}
	}
	return &SyntaxError{Index: e.index, Msg: msg}
}

// jsonElement accepts both {"duration": n, "strength": s} objects and
// [duration, strength] pairs.
type jsonElement struct {
	Duration  *json.Number `json:"duration"`
	RunLength *json.Number `json:"run_length"`
	Strength  *json.Number `json:"strength"`
}

func parseJSON(source string, relative bool) ([]entry, bool, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(source), &raw); err != nil {
		return nil, false, nil
	}

	entries := make([]entry, 0, len(raw))
	for i, item := range raw {
		index := i + 1
		var duration, strength *json.Number

		switch trimmed := bytes.TrimSpace(item); {
		case len(trimmed) > 0 && trimmed[0] == '{':
			var el jsonElement
			if err := json.Unmarshal(trimmed, &el); err != nil {
				return nil, true, &SyntaxError{Index: index, Msg: "invalid segment object", Err: err}
			}
			duration = el.Duration
			if duration == nil {
				duration = el.RunLength
			}
			strength = el.Strength

		case len(trimmed) > 0 && trimmed[0] == '[':
			var pair []json.Number
			if err := json.Unmarshal(trimmed, &pair); err != nil {
				return nil, true, &SyntaxError{Index: index, Msg: "invalid segment pair", Err: err}
			}
			if len(pair) != 2 {
				return nil, true, &SyntaxError{Index: index, Msg: fmt.Sprintf("segment pair must have 2 values, got %d", len(pair))}
			}
			duration, strength = &pair[0], &pair[1]

		default:
			return nil, true, &SyntaxError{Index: index, Msg: "segment must be an object or a [duration, strength] pair"}
		}

		if strength == nil {
			return nil, true, &SyntaxError{Index: index, Msg: "strength is required"}
		}
		e := entry{index: index}
		value, err := parseStrength(strength.String())
		if err != nil {
			return nil, true, &SyntaxError{Index: index, Msg: err.Error()}
		}
		e.strength = value

		if duration == nil {
			if i != len(raw)-1 {
				return nil, true, &SyntaxError{Index: index, Msg: "duration is required on every segment except the last"}
			}
		} else if err := setDuration(&e, duration.String(), relative); err != nil {
			return nil, true, &SyntaxError{Index: index, Msg: err.Error()}
		}
		entries = append(entries, e)
	}

	return entries, true, nil
}

func parseText(source string, relative bool) ([]entry, error) {
	type token struct {
		line int
		text string
	}

	var tokens []token
	for i, line := range strings.Split(source, "\n") {
		if idx := strings.Index(line, commentToken); idx >= 0 {
			line = line[:idx]
		}
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				tokens = append(tokens, token{line: i + 1, text: part})
			}
		}
	}

	if len(tokens) == 0 {
		return nil, &SyntaxError{Msg: "empty schedule", Err: ErrEmptySchedule}
	}

	// A lone number is a constant strength for the whole run.
	if len(tokens) == 1 && !strings.Contains(tokens[0].text, ":") {
		value, err := parseStrength(tokens[0].text)
		if err != nil {
			return nil, &SyntaxError{Line: tokens[0].line, Msg: err.Error()}
		}
		if relative {
			one := 1.0
			return []entry{{line: tokens[0].line, proportion: &one, strength: value}}, nil
		}
		return []entry{{line: tokens[0].line, strength: value}}, nil
	}

	entries := make([]entry, 0, len(tokens))
	for i, tok := range tokens {
		left, right, ok := strings.Cut(tok.text, ":")
		if !ok {
			return nil, &SyntaxError{Line: tok.line, Msg: fmt.Sprintf("expected <run_length> : <strength>, got %q", tok.text)}
		}
		left = strings.TrimSpace(left)
		right = strings.TrimSpace(right)

		e := entry{line: tok.line, index: i + 1}
		value, err := parseStrength(right)
		if err != nil {
			return nil, &SyntaxError{Line: tok.line, Msg: err.Error()}
		}
		e.strength = value

		if left != remainderToken {
			if err := setDuration(&e, left, relative); err != nil {
				return nil, &SyntaxError{Line: tok.line, Msg: err.Error()}
			}
		} else if relative {
			return nil, &SyntaxError{Line: tok.line, Msg: "remainder segments are not allowed in relative schedules"}
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func parseStrength(text string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid strength %q", text)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("strength must be finite, got %q", text)
	}
	return value, nil
}

// setDuration stores a whole step count, or a proportion for relative
// schedules.
func setDuration(e *entry, text string, relative bool) error {
	if relative {
		p, err := parseProportion(text)
		if err != nil {
			return err
		}
		e.proportion = &p
		return nil
	}
	n, err := parseRunLength(text)
	if err != nil {
		return err
	}
	e.runLength = &n
	return nil
}

func parseProportion(text string) (float64, error) {
	text = strings.TrimSpace(text)
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("invalid duration %q", text)
	}
	if value < 0 {
		return 0, fmt.Errorf("duration must be non-negative, got %q", text)
	}
	return value, nil
}

func parseRunLength(text string) (int, error) {
	text = strings.TrimSpace(text)
	n, err := strconv.Atoi(text)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("run length %q is out of range", text)
		}
		if _, ferr := strconv.ParseFloat(text, 64); ferr == nil {
			return 0, fmt.Errorf("run length must be a whole number of steps, got %q", text)
		}
		return 0, fmt.Errorf("invalid run length %q", text)
	}
	if n < 0 {
		return 0, fmt.Errorf("run length must be non-negative, got %d", n)
	}
	return n, nil
}
