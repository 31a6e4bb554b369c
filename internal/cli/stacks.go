package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/opencode-ai/lorasched/internal/stack"
	"github.com/spf13/cobra"
)

var stackTags []string

func init() {
	rootCmd.AddCommand(stackCmd)
	stackCmd.AddCommand(stackListCmd)
	stackCmd.AddCommand(stackShowCmd)

	stackListCmd.Flags().StringSliceVar(&stackTags, "tag", nil, "filter by tag (repeatable)")
}

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Manage adapter stacks",
	Long: `Stacks are YAML files naming a set of adapters and their schedules.

Search order: directories from stacks.dirs, .lorasched/stacks in the current
directory, ~/.config/lorasched/stacks, /usr/share/lorasched/stacks, then the
built-in stacks. The first stack with a given name wins.`,
}

var stackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available stacks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := loadStacks()
		if err != nil {
			return err
		}
		items = filterStacks(items, splitList(stackTags))

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), items)
		}

		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stacks found.")
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, st := range items {
			steps := "-"
			if st.Steps > 0 {
				steps = strconv.Itoa(st.Steps)
			}
			rows = append(rows, []string{st.Name, strconv.Itoa(len(st.Adapters)), steps, st.Source, st.Description})
		}
		return writeTable(cmd.OutOrStdout(), []string{"NAME", "ADAPTERS", "STEPS", "SOURCE", "DESCRIPTION"}, rows)
	},
}

var stackShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a stack's adapters and schedules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := findStack(args[0])
		if err != nil {
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), st)
		}

		out := cmd.OutOrStdout()
		s := currentStyles()
		fmt.Fprintln(out, s.Title.Render(st.Name))
		if st.Description != "" {
			fmt.Fprintln(out, s.Muted.Render(st.Description))
		}
		fmt.Fprintf(out, "Source: %s\n", st.Source)
		if st.Steps > 0 {
			fmt.Fprintf(out, "Steps:  %d\n", st.Steps)
		}
		if len(st.Tags) > 0 {
			fmt.Fprintf(out, "Tags:   %s\n", strings.Join(st.Tags, ", "))
		}

		bindings, err := st.Bindings()
		if err != nil {
			return err
		}
		for i, b := range bindings {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%s  %s\n", s.Accent.Render(b.AdapterID), s.Muted.Render(fmt.Sprintf("[%s, %s]", st.Adapters[i].Mode, b.Channels)))
			if err := writeTable(out, []string{"  #", "DURATION", "STRENGTH"}, indentRows(scheduleRows(b.Schedule))); err != nil {
				return err
			}
		}
		return nil
	},
}

func indentRows(rows [][]string) [][]string {
	for _, row := range rows {
		if len(row) > 0 {
			row[0] = "  " + row[0]
		}
	}
	return rows
}

func loadStacks() ([]*stack.Stack, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	items, err := stack.LoadStacksFromSearchPaths(cwd, GetConfig().Stacks.Dirs...)
	if err != nil {
		return nil, fmt.Errorf("failed to load stacks: %w", err)
	}
	return items, nil
}

// findStack resolves a stack by name, or loads it directly when ref is a
// path to a YAML file.
func findStack(ref string) (*stack.Stack, error) {
	if isStackFile(ref) {
		return stack.LoadStack(ref)
	}

	items, err := loadStacks()
	if err != nil {
		return nil, err
	}
	if st := findStackByName(items, ref); st != nil {
		return st, nil
	}
	return nil, &PreflightError{
		Message:  fmt.Sprintf("stack %q not found", ref),
		Hint:     "Pass a stack name or a path to a stack YAML file",
		NextStep: "lorasched stack list",
	}
}

func isStackFile(ref string) bool {
	lower := strings.ToLower(ref)
	if !strings.HasSuffix(lower, ".yaml") && !strings.HasSuffix(lower, ".yml") {
		return false
	}
	info, err := os.Stat(ref)
	return err == nil && !info.IsDir()
}

func findStackByName(items []*stack.Stack, name string) *stack.Stack {
	for _, st := range items {
		if strings.EqualFold(st.Name, name) {
			return st
		}
	}
	return nil
}

func filterStacks(items []*stack.Stack, tags []string) []*stack.Stack {
	if len(tags) == 0 {
		return items
	}
	var out []*stack.Stack
	for _, st := range items {
		if hasAnyTag(st.Tags, tags) {
			out = append(out, st)
		}
	}
	return out
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
