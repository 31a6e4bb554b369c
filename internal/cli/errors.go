package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/opencode-ai/lorasched/internal/stack"
)

// PreflightError is a user-facing error with a hint and suggested next step.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
	Err      error
}

func (e *PreflightError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
	}
	if e.NextStep != "" {
		b.WriteString("\nNext: ")
		b.WriteString(e.NextStep)
	}
	return b.String()
}

func (e *PreflightError) Unwrap() error {
	return e.Err
}

func formatError(err error) string {
	var syntaxErr *schedule.SyntaxError
	var combineErr *stack.CombineError
	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("Error: %v\nHint: entries are \"<run_length> : <strength>\" lines or a JSON array", err)
	case errors.As(err, &combineErr):
		return fmt.Sprintf("Error: %v\nHint: check the schedule for adapter %s", err, combineErr.AdapterID)
	default:
		return "Error: " + err.Error()
	}
}
