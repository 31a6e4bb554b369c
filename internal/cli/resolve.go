package cli

import (
	"fmt"

	"github.com/opencode-ai/lorasched/internal/logging"
	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/spf13/cobra"
)

var (
	resolveStepsFlag int
	resolveRelative  bool
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().IntVarP(&resolveStepsFlag, "steps", "n", 0, "total sampler steps (default from config)")
	resolveCmd.Flags().BoolVar(&resolveRelative, "relative", false, "read durations as proportions of the run")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [file|-]",
	Short: "Resolve a schedule into a per-step plan",
	Long: `Resolve a schedule against a step count and print the strength used at
every step.

When the schedule declares fewer steps than the run, the last strength is
held. When it declares more, the plan is truncated and a warning is printed.`,
	Example: `  lorasched resolve style.txt --steps 14
  echo "4 : 0.6, 2 : 0.85, * : 0.9" | lorasched resolve -n 20 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := resolveSteps(resolveStepsFlag, 0)
		if err != nil {
			return err
		}

		source, name, err := readScheduleSource(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		sched, err := parseSchedule(source, resolveRelative)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		plan, err := schedule.Resolve(sched, steps)
		if err != nil {
			return err
		}

		if w := plan.Truncation(); w != nil {
			logger := logging.Component("resolve")
			logger.Warn().
				Str("schedule", name).
				Int("declared_steps", w.DeclaredSteps).
				Int("total_steps", w.TotalSteps).
				Int("dropped_segments", w.DroppedSegments).
				Msg("schedule truncated")
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), ResolveOutput{
				TotalSteps: plan.Len(),
				Plan:       plan.Values(),
				Warning:    plan.Truncation(),
			})
		}

		if w := plan.Truncation(); w != nil {
			printWarning("%s", w)
		}
		return renderPlan(cmd.OutOrStdout(), currentStyles(), name, plan.Values(), sched.Peak())
	},
}

// ResolveOutput is the payload returned by `lorasched resolve`.
type ResolveOutput struct {
	TotalSteps int                         `json:"total_steps"`
	Plan       []float64                   `json:"plan"`
	Warning    *schedule.TruncationWarning `json:"warning,omitempty"`
}
