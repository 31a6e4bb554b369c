package cli

import (
	"context"
	"fmt"

	"github.com/opencode-ai/lorasched/internal/logging"
	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/opencode-ai/lorasched/internal/stack"
	"github.com/spf13/cobra"
)

var (
	planSteps  int
	planRecord bool
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().IntVarP(&planSteps, "steps", "n", 0, "total sampler steps (default: stack steps, then config)")
	planCmd.Flags().BoolVar(&planRecord, "record", false, "record the run in the history database")
}

var planCmd = &cobra.Command{
	Use:   "plan <stack>",
	Short: "Resolve every adapter of a stack into per-step plans",
	Long: `Resolve each adapter's schedule in a stack against the same step count.

Adapters are resolved independently; their strengths are never blended.
With --record (or history.enabled in config) the plans are stored in the
run history.`,
	Example: `  lorasched plan style-character --steps 14
  lorasched plan ./stacks/portrait.yaml -n 30 --record --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		st, err := findStack(args[0])
		if err != nil {
			return err
		}
		steps, err := resolveSteps(planSteps, st.Steps)
		if err != nil {
			return err
		}

		record := planRecord || GetConfig().History.Enabled
		set, bindings, err := combineStack(st, steps)
		if err != nil {
			if record {
				recordFailure(ctx, st.Name, steps, err)
			}
			return err
		}
		logWarnings(st.Name, set)

		output := newPlanOutput(st.Name, set, bindings)
		if record {
			progress := startRecordProgress(st.Name, set.Len(), steps)
			runID, err := recordRun(ctx, st.Name, set, bindings)
			if err != nil {
				progress.Fail(err)
				return err
			}
			progress.Done(runID)
			output.RunID = runID
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), output)
		}

		for _, w := range set.Warnings() {
			printWarning("%s: %s", w.AdapterID, w.Warning)
		}
		out := cmd.OutOrStdout()
		s := currentStyles()
		fmt.Fprintf(out, "%s  %s\n", s.Title.Render(st.Name), s.Muted.Render(fmt.Sprintf("%d steps", steps)))
		for _, a := range output.Adapters {
			renderRule(out, s)
			title := fmt.Sprintf("%s  [%s]  clip %s", a.AdapterID, a.Channels, formatStrength(a.ClipStrength))
			if err := renderPlan(out, s, title, a.Plan, a.ClipStrength); err != nil {
				return err
			}
		}
		if output.RunID != "" {
			fmt.Fprintf(out, "\nRecorded run %s\n", output.RunID)
		}
		return nil
	},
}

// PlanOutput is the payload returned by `lorasched plan`.
type PlanOutput struct {
	RunID      string                 `json:"run_id,omitempty"`
	Stack      string                 `json:"stack"`
	TotalSteps int                    `json:"total_steps"`
	Adapters   []AdapterPlanOutput    `json:"adapters"`
	Warnings   []stack.AdapterWarning `json:"warnings,omitempty"`
}

// AdapterPlanOutput is one adapter's resolved plan.
type AdapterPlanOutput struct {
	AdapterID    string    `json:"adapter_id"`
	Channels     string    `json:"channels"`
	Schedule     string    `json:"schedule"`
	ClipStrength float64   `json:"clip_strength"`
	Plan         []float64 `json:"plan"`
}

func combineStack(st *stack.Stack, steps int) (*stack.PlanSet, map[string]*schedule.Schedule, error) {
	bindings, err := st.Bindings()
	if err != nil {
		return nil, nil, err
	}
	set, err := stack.Combine(bindings, steps)
	if err != nil {
		return nil, nil, fmt.Errorf("stack %s: %w", st.Name, err)
	}

	schedules := make(map[string]*schedule.Schedule, len(bindings))
	for _, b := range bindings {
		schedules[b.AdapterID] = b.Schedule
	}
	return set, schedules, nil
}

func newPlanOutput(name string, set *stack.PlanSet, schedules map[string]*schedule.Schedule) PlanOutput {
	out := PlanOutput{
		Stack:      name,
		TotalSteps: set.TotalSteps(),
		Warnings:   set.Warnings(),
	}
	values := set.Values()
	for _, id := range set.IDs() {
		out.Adapters = append(out.Adapters, AdapterPlanOutput{
			AdapterID:    id,
			Channels:     set.Channels(id).String(),
			Schedule:     schedules[id].String(),
			ClipStrength: set.Peak(id),
			Plan:         values[id],
		})
	}
	return out
}

func logWarnings(stackName string, set *stack.PlanSet) {
	logger := logging.Component("plan")
	for _, w := range set.Warnings() {
		logger.Warn().
			Str("stack", stackName).
			Str("adapter", w.AdapterID).
			Int("declared_steps", w.Warning.DeclaredSteps).
			Int("total_steps", w.Warning.TotalSteps).
			Int("dropped_segments", w.Warning.DroppedSegments).
			Msg("schedule truncated")
	}
}
