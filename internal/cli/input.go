package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opencode-ai/lorasched/internal/schedule"
)

// readScheduleSource reads schedule text from a file argument, or from
// stdin when the argument is "-" or omitted.
func readScheduleSource(args []string, stdin io.Reader) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read schedule from stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read schedule %s: %w", path, err)
	}
	return string(data), path, nil
}

func parseSchedule(source string, relative bool) (*schedule.Schedule, error) {
	if relative {
		return schedule.ParseRelative(source)
	}
	return schedule.Parse(source)
}

// resolveSteps picks the step count: the flag, then the stack's own count,
// then the configured default.
func resolveSteps(flagValue, stackSteps int) (int, error) {
	switch {
	case flagValue < 0:
		return 0, fmt.Errorf("--steps must be positive, got %d", flagValue)
	case flagValue > 0:
		return flagValue, nil
	case stackSteps > 0:
		return stackSteps, nil
	}
	steps := GetConfig().Defaults.Steps
	if steps <= 0 {
		return 0, fmt.Errorf("no step count: pass --steps or set defaults.steps")
	}
	return steps, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
