package cli

import (
	"fmt"
	"io"
	"os"
	"time"
)

// recordProgress reports a plan being written to the run history on one
// stderr line: "Recording style-character (2 adapters, 14 steps)... run 3f2a9c1b (4ms)".
type recordProgress struct {
	out     io.Writer
	started time.Time
}

// startRecordProgress returns nil when progress output is disabled; the
// methods are no-ops on a nil receiver.
func startRecordProgress(stackName string, adapters, steps int) *recordProgress {
	if !progressEnabled() {
		return nil
	}
	return beginRecordProgress(os.Stderr, stackName, adapters, steps)
}

func beginRecordProgress(w io.Writer, stackName string, adapters, steps int) *recordProgress {
	noun := "adapters"
	if adapters == 1 {
		noun = "adapter"
	}
	fmt.Fprintf(w, "Recording %s (%d %s, %d steps)... ", stackName, adapters, noun, steps)
	return &recordProgress{out: w, started: time.Now()}
}

func (p *recordProgress) Done(runID string) {
	if p == nil {
		return
	}
	fmt.Fprintf(p.out, "run %s (%s)\n", shortID(runID), formatElapsed(time.Since(p.started)))
}

func (p *recordProgress) Fail(err error) {
	if p == nil {
		return
	}
	if err != nil {
		fmt.Fprintf(p.out, "not recorded: %v\n", err)
		return
	}
	fmt.Fprintln(p.out, "not recorded")
}

func progressEnabled() bool {
	if IsJSONOutput() || IsJSONLOutput() || noProgress {
		return false
	}
	for _, key := range []string{"LORASCHED_NO_PROGRESS", "NO_PROGRESS"} {
		if _, ok := os.LookupEnv(key); ok {
			return false
		}
	}
	return hasTTY()
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
