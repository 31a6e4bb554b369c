package cli

import (
	"fmt"
	"strconv"

	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/spf13/cobra"
)

var parseRelative bool

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseRelative, "relative", false, "read durations as proportions of the run")
}

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Validate a schedule and print its segments",
	Long: `Parse a schedule in text or JSON form and print its segments.

Text form is one "<run_length> : <strength>" entry per line (or comma
separated). "*" as run length takes all remaining steps. A lone number is a
constant schedule. JSON form is an array of {"duration", "strength"} objects
or [duration, strength] pairs.`,
	Example: `  # Validate a schedule file
  lorasched parse style.txt

  # Read from stdin and print canonical JSON
  echo "2 : 0.8, 3 : 0.4" | lorasched parse --json

  # Proportional durations
  lorasched parse --relative fade.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, name, err := readScheduleSource(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		sched, err := parseSchedule(source, parseRelative)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), newScheduleOutput(sched))
		}
		return renderSchedule(cmd.OutOrStdout(), sched)
	},
}

// ScheduleOutput is the payload returned by `lorasched parse`.
type ScheduleOutput struct {
	Relative      bool               `json:"relative"`
	Segments      *schedule.Schedule `json:"segments"`
	DeclaredSteps int                `json:"declared_steps"`
	Remainder     bool               `json:"remainder"`
	Peak          float64            `json:"peak"`
	Text          string             `json:"text"`
}

func newScheduleOutput(s *schedule.Schedule) ScheduleOutput {
	return ScheduleOutput{
		Relative:      s.IsRelative(),
		Segments:      s,
		DeclaredSteps: s.Total(),
		Remainder:     s.HasRemainder(),
		Peak:          s.Peak(),
		Text:          schedule.Format(s),
	}
}

func scheduleRows(s *schedule.Schedule) [][]string {
	segments := s.Segments()
	proportions := s.Proportions()
	rows := make([][]string, 0, len(segments))
	for i, seg := range segments {
		length := ""
		if proportions != nil {
			length = strconv.FormatFloat(proportions[i], 'g', -1, 64)
		} else {
			length = formatRunLength(seg)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), length, formatStrength(seg.Strength)})
	}
	return rows
}
