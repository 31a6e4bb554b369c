package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/opencode-ai/lorasched/internal/styles"
	"github.com/opencode-ai/lorasched/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchRelative bool
	watchRecord   bool
	watchSteps    int
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchRelative, "relative", false, "read durations as proportions of the run")
	watchCmd.Flags().BoolVar(&watchRecord, "record", false, "record parse failures in the history database")
	watchCmd.Flags().IntVarP(&watchSteps, "steps", "n", 0, "also resolve against this many steps on every change")
}

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-validate a schedule file on every change",
	Long: `Watch a schedule file and re-parse it whenever it is written, reporting
syntax errors immediately. Stop with Ctrl-C.`,
	Example: `  lorasched watch style.txt
  lorasched watch fade.txt --relative --steps 30
  lorasched watch style.txt --jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchSteps < 0 {
			return fmt.Errorf("--steps must be positive, got %d", watchSteps)
		}

		w, err := watcher.New(args[0], watcher.Options{Relative: watchRelative})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		s := currentStyles()
		record := watchRecord || GetConfig().History.Enabled

		return w.Run(ctx, func(res watcher.Result) {
			report := newWatchReport(res, watchSteps)
			if !report.OK && record {
				recordInvalidSchedule(ctx, res.Path, res.Err)
			}
			if IsJSONOutput() || IsJSONLOutput() {
				if err := writeJSONLines(out, report); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
				return
			}
			renderWatchReport(out, s, report)
		})
	},
}

// WatchReport is emitted for every parse of the watched file.
type WatchReport struct {
	Path     string                      `json:"path"`
	At       time.Time                   `json:"at"`
	OK       bool                        `json:"ok"`
	Error    string                      `json:"error,omitempty"`
	Schedule *schedule.Schedule          `json:"schedule,omitempty"`
	Plan     []float64                   `json:"plan,omitempty"`
	Warning  *schedule.TruncationWarning `json:"warning,omitempty"`
}

func newWatchReport(res watcher.Result, steps int) WatchReport {
	report := WatchReport{Path: res.Path, At: res.At, OK: res.OK()}
	if !report.OK {
		if res.Err != nil {
			report.Error = res.Err.Error()
		}
		return report
	}
	report.Schedule = res.Schedule
	if steps > 0 {
		plan, err := schedule.Resolve(res.Schedule, steps)
		if err != nil {
			report.OK = false
			report.Error = err.Error()
			return report
		}
		report.Plan = plan.Values()
		report.Warning = plan.Truncation()
	}
	return report
}

func renderWatchReport(out io.Writer, s styles.Styles, report WatchReport) {
	stamp := s.Muted.Render(report.At.Format("15:04:05"))
	if !report.OK {
		fmt.Fprintf(out, "%s %s %s\n", stamp, s.Error.Render("✗"), report.Error)
		return
	}
	fmt.Fprintf(out, "%s %s %s\n", stamp, s.Success.Render("✓"), report.Schedule)
	if report.Warning != nil {
		fmt.Fprintf(out, "         %s\n", s.Warning.Render(report.Warning.String()))
	}
	if len(report.Plan) > 0 {
		renderPlan(out, s, "", report.Plan, report.Schedule.Peak())
	}
}
