package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/opencode-ai/lorasched/internal/db"
	"github.com/opencode-ai/lorasched/internal/models"
	"github.com/spf13/cobra"
)

var (
	runsLimit int
	runsStack string
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	runsListCmd.Flags().StringVar(&runsStack, "stack", "", "only runs of this stack")
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded runs",
	Long:  "Inspect plans recorded with `lorasched plan --record` or history.enabled.",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		query := db.RunQuery{Limit: runsLimit}
		if runsStack != "" {
			query.Stack = &runsStack
		}
		runs, err := db.NewRunRepository(database).List(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, []string{
				shortID(run.ID),
				run.Stack,
				strconv.Itoa(run.TotalSteps),
				strconv.Itoa(len(run.Adapters)),
				formatYesNo(len(run.Warnings) > 0),
				run.CreatedAt.Local().Format(time.DateTime),
			})
		}
		return writeTable(cmd.OutOrStdout(), []string{"ID", "STACK", "STEPS", "ADAPTERS", "TRUNCATED", "CREATED"}, rows)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded run's plans and events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		run, err := findRun(ctx, db.NewRunRepository(database), args[0])
		if err != nil {
			return err
		}
		evts, err := db.NewEventRepository(database).ListByEntity(ctx, models.EntityTypeRun, run.ID, 0)
		if err != nil {
			return fmt.Errorf("failed to load run events: %w", err)
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), RunDetail{Run: run, Events: evts})
		}

		out := cmd.OutOrStdout()
		s := currentStyles()
		fmt.Fprintf(out, "%s  %s\n", s.Title.Render(run.Stack), s.Muted.Render(run.ID))
		fmt.Fprintf(out, "Steps:    %d\n", run.TotalSteps)
		fmt.Fprintf(out, "Recorded: %s\n", run.CreatedAt.Local().Format(time.DateTime))
		for _, w := range run.Warnings {
			fmt.Fprintln(out, s.Warning.Render(fmt.Sprintf("%s: declared %d steps, %d segment(s) dropped", w.AdapterID, w.DeclaredSteps, w.DroppedSegments)))
		}
		for _, a := range run.Adapters {
			renderRule(out, s)
			title := fmt.Sprintf("%s  [%s]  clip %s", a.AdapterID, a.Channels, formatStrength(a.ClipStrength))
			if err := renderPlan(out, s, title, a.Plan, a.ClipStrength); err != nil {
				return err
			}
		}
		if len(evts) > 0 {
			fmt.Fprintln(out)
			rows := make([][]string, 0, len(evts))
			for _, e := range evts {
				rows = append(rows, []string{e.Timestamp.Local().Format(time.DateTime), string(e.Type)})
			}
			return writeTable(out, []string{"TIME", "EVENT"}, rows)
		}
		return nil
	},
}

// RunDetail is the payload returned by `lorasched runs show`.
type RunDetail struct {
	Run    *models.Run     `json:"run"`
	Events []*models.Event `json:"events"`
}

// findRun accepts a full ID or a unique prefix of one.
func findRun(ctx context.Context, repo *db.RunRepository, ref string) (*models.Run, error) {
	run, err := repo.Get(ctx, ref)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, db.ErrRunNotFound) {
		return nil, err
	}

	runs, err := repo.List(ctx, db.RunQuery{Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	var match *models.Run
	for _, r := range runs {
		if len(ref) > 0 && len(r.ID) >= len(ref) && r.ID[:len(ref)] == ref {
			if match != nil {
				return nil, fmt.Errorf("run id %q is ambiguous", ref)
			}
			match = r
		}
	}
	if match == nil {
		return nil, &PreflightError{
			Message:  fmt.Sprintf("run %q not found", ref),
			NextStep: "lorasched runs list",
			Err:      db.ErrRunNotFound,
		}
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
