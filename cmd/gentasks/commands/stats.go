package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marcus/gentasks/internal/reporting"
	"github.com/marcus/gentasks/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics",
	Long: `Display aggregate statistics from check results saved with
'gentasks check --save'.

Shows run counts, exercise outcomes, per-task-type pass rates,
failure kinds and per-submission history. Use --json for machine-readable output.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "Output as JSON")
	statsCmd.Flags().String("dir", "", "Reports directory (default: ~/.local/share/gentasks/reports)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = reporting.DefaultReportsDir()
	}

	if _, err := setup(cmd); err != nil {
		return err
	}

	result, err := stats.New(dir).Compute()
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	renderStatsHuman(cmd.OutOrStdout(), result)
	return nil
}

func renderStatsHuman(w io.Writer, result *stats.StatsResult) {
	fmt.Fprintln(w, "Gentasks Stats")
	fmt.Fprintln(w, "================================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Runs")
	fmt.Fprintf(w, "  Total:        %d runs\n", result.TotalRuns)
	if result.FirstRunAt != nil {
		fmt.Fprintf(w, "  First run:    %s\n", result.FirstRunAt.Format("Jan 2, 2006"))
	}
	if result.LastRunAt != nil {
		fmt.Fprintf(w, "  Last run:     %s\n", result.LastRunAt.Format("Jan 2, 2006"))
	}
	if result.TotalDuration.Duration > 0 {
		fmt.Fprintf(w, "  Total time:   %s across all runs\n", result.TotalDuration.String())
	}
	if result.TotalRuns > 0 && result.AvgRunDuration.Duration > 0 {
		fmt.Fprintf(w, "  Avg duration: %s per run\n", result.AvgRunDuration.String())
	}
	fmt.Fprintln(w)

	total := result.ExercisesPassed + result.ExercisesFailed + result.ExercisesErrored
	fmt.Fprintln(w, "Exercises")
	fmt.Fprintf(w, "  Passed:       %d", result.ExercisesPassed)
	if total > 0 {
		fmt.Fprintf(w, " (%.0f%% pass rate)", result.PassRate)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Failed:       %d\n", result.ExercisesFailed)
	fmt.Fprintf(w, "  Errored:      %d\n", result.ExercisesErrored)
	fmt.Fprintf(w, "  Variants:     %s\n", humanize.Comma(int64(result.VariantsChecked)))
	fmt.Fprintf(w, "  Steps:        %s\n", humanize.Comma(int64(result.StepsDriven)))
	fmt.Fprintln(w)

	if len(result.TaskTypeBreakdown) > 0 {
		fmt.Fprintln(w, "Task Types")
		for _, t := range result.TaskTypeBreakdown {
			fmt.Fprintf(w, "  %-14s %d/%d passed (%.0f%%)\n", t.Name+":", t.Passed, t.Graded, t.PassRate())
		}
		fmt.Fprintln(w)
	}

	if len(result.FailureKindBreakdown) > 0 {
		kinds := make([]string, 0, len(result.FailureKindBreakdown))
		for k := range result.FailureKindBreakdown {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		fmt.Fprintln(w, "Failures")
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-24s %d\n", k+":", result.FailureKindBreakdown[k])
		}
		fmt.Fprintln(w)
	}

	if len(result.SubmissionBreakdown) > 0 {
		fmt.Fprintf(w, "Submissions (%d)\n", len(result.SubmissionBreakdown))
		for _, s := range result.SubmissionBreakdown {
			status := "failing"
			if s.Passed {
				status = "passing"
			}
			fmt.Fprintf(w, "  %-20s %d runs, %s\n", s.Name, s.RunCount, status)
		}
		fmt.Fprintln(w)
	}
}
