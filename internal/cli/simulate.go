package cli

import (
	"fmt"
	"strconv"

	"github.com/opencode-ai/lorasched/internal/hooks"
	"github.com/opencode-ai/lorasched/internal/stack"
	"github.com/spf13/cobra"
)

var (
	simulateSteps    int
	simulateRunSteps int
	simulateChannels []string
	simulateAppend   []string
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVarP(&simulateSteps, "steps", "n", 0, "steps the plans are resolved for (default: stack steps, then config)")
	simulateCmd.Flags().IntVar(&simulateRunSteps, "run-steps", 0, "steps the simulated sampler runs (default: --steps)")
	simulateCmd.Flags().StringSliceVar(&simulateChannels, "channels", nil, "channels to hook: positive, negative, both (default from config)")
	simulateCmd.Flags().StringSliceVar(&simulateAppend, "append", nil, "stacks whose hooks are appended after the main stack's (repeatable)")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <stack>",
	Short: "Drive a stack's hooks the way a sampler would",
	Long: `Emit hooks for a stack and invoke each channel's callback once per step,
printing the strengths the sampler would receive.

--run-steps may differ from --steps: steps past the plan's end reuse the
final strength. --append layers further stacks onto the same conditioning;
an adapter may appear only once per channel.`,
	Example: `  lorasched simulate style-character -n 14
  lorasched simulate style-character -n 14 --run-steps 20 --channels positive
  lorasched simulate style-character -n 14 --append detail-fade`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := findStack(args[0])
		if err != nil {
			return err
		}
		steps, err := resolveSteps(simulateSteps, st.Steps)
		if err != nil {
			return err
		}
		runSteps := simulateRunSteps
		if runSteps < 0 {
			return fmt.Errorf("--run-steps must be positive, got %d", runSteps)
		}
		if runSteps == 0 {
			runSteps = steps
		}

		names := splitList(simulateChannels)
		if len(names) == 0 {
			names = GetConfig().Defaults.Channels
		}
		channels, err := stack.ParseChannels(names)
		if err != nil {
			return err
		}

		hookSet, err := emitStackHooks(st, steps, channels)
		if err != nil {
			return err
		}
		for _, ref := range splitList(simulateAppend) {
			extra, err := findStack(ref)
			if err != nil {
				return err
			}
			added, err := emitStackHooks(extra, steps, channels)
			if err != nil {
				return err
			}
			if hookSet, err = hooks.Append(hookSet, added); err != nil {
				return fmt.Errorf("append stack %s: %w", extra.Name, err)
			}
		}
		output := simulate(st.Name, hookSet, runSteps)

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), output)
		}

		out := cmd.OutOrStdout()
		s := currentStyles()
		fmt.Fprintf(out, "%s  %s\n", s.Title.Render(st.Name),
			s.Muted.Render(fmt.Sprintf("planned %d steps, sampled %d", output.TotalSteps, output.RunSteps)))
		for _, ch := range output.Channels {
			fmt.Fprintln(out)
			fmt.Fprintln(out, s.Accent.Render(ch.Channel))
			if len(ch.Adapters) == 0 {
				fmt.Fprintln(out, s.Muted.Render("  no adapters bound"))
				continue
			}
			headers := append([]string{"STEP"}, ch.Adapters...)
			rows := make([][]string, 0, len(ch.Steps))
			for _, step := range ch.Steps {
				row := []string{strconv.Itoa(step.Step)}
				for _, id := range ch.Adapters {
					row = append(row, formatStrength(step.Strengths[id]))
				}
				rows = append(rows, row)
			}
			if err := writeTable(out, headers, rows); err != nil {
				return err
			}
		}

		fmt.Fprintln(out)
		rows := make([][]string, 0, len(output.Patches))
		for _, p := range output.Patches {
			rows = append(rows, []string{p.AdapterID, formatStrength(p.ClipStrength)})
		}
		return writeTable(out, []string{"ADAPTER", "CLIP STRENGTH"}, rows)
	},
}

// SimulateOutput is the payload returned by `lorasched simulate`.
type SimulateOutput struct {
	Stack      string         `json:"stack"`
	TotalSteps int            `json:"total_steps"`
	RunSteps   int            `json:"run_steps"`
	Channels   []ChannelTrace `json:"channels"`
	Patches    []PatchOutput  `json:"patches"`
}

// ChannelTrace records what one channel's callback returned at each step.
type ChannelTrace struct {
	Channel  string      `json:"channel"`
	Adapters []string    `json:"adapters"`
	Steps    []StepTrace `json:"steps"`
}

// StepTrace is one callback invocation.
type StepTrace struct {
	Step      int                `json:"step"`
	Strengths map[string]float64 `json:"strengths"`
}

func emitStackHooks(st *stack.Stack, steps int, channels stack.ChannelSet) (*hooks.HookSet, error) {
	set, _, err := combineStack(st, steps)
	if err != nil {
		return nil, err
	}
	logWarnings(st.Name, set)
	return hooks.Emit(set, channels)
}

// PatchOutput is the static part of an adapter patch.
type PatchOutput struct {
	AdapterID    string  `json:"adapter_id"`
	ClipStrength float64 `json:"clip_strength"`
}

// simulate invokes every hook callback for steps 0..runSteps-1, passing the
// sampler's own step count as the host would.
func simulate(name string, set *hooks.HookSet, runSteps int) SimulateOutput {
	out := SimulateOutput{
		Stack:      name,
		TotalSteps: set.TotalSteps(),
		RunSteps:   runSteps,
	}
	for _, h := range set.Hooks() {
		trace := ChannelTrace{Channel: string(h.Channel()), Adapters: h.AdapterIDs()}
		callback := h.Callback()
		for step := 0; step < runSteps; step++ {
			trace.Steps = append(trace.Steps, StepTrace{Step: step, Strengths: callback(step, runSteps)})
		}
		out.Channels = append(out.Channels, trace)
	}
	for _, p := range set.Patches() {
		out.Patches = append(out.Patches, PatchOutput{AdapterID: p.AdapterID, ClipStrength: p.ClipStrength})
	}
	return out
}
