package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/marcus/gentasks/internal/exercise"
	"github.com/marcus/gentasks/internal/logging"
	"github.com/marcus/gentasks/internal/reporting"
	"github.com/marcus/gentasks/internal/submission"
	"github.com/marcus/gentasks/internal/tasks"
)

// errCheckFailed makes the process exit non-zero without repeating the report.
var errCheckFailed = errors.New("check failed")

var checkCmd = &cobra.Command{
	Use:   "check <solution.go>",
	Short: "Grade a learner solution",
	Long: `Interpret a Go solution file and grade its Main function against the
exercise it declares in its Tasks variable (or --tasks).

Every variant of the exercise is driven step by step against the reference.
The command exits non-zero when any variant fails.

Examples:
  gentasks check solution.go
  gentasks check solution.go --tasks Range,AwaitKeyword --seed 7
  gentasks check solution.go --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringSlice("tasks", nil, "Task types to grade against (overrides the file's Tasks)")
	checkCmd.Flags().Uint64("seed", 0, "Seed for fuzzed inputs (default: check.seed)")
	checkCmd.Flags().Bool("json", false, "Output results as JSON")
	checkCmd.Flags().Bool("save", false, "Save JSON results and a markdown report under the reports directory")
	checkCmd.Flags().Bool("watch", false, "Re-grade whenever the file changes")
	checkCmd.Flags().Bool("no-color", false, "Disable colored output")
	rootCmd.AddCommand(checkCmd)
}

type checkRun struct {
	app    *app
	path   string
	names  []string
	opts   submission.GradeOptions
	asJSON bool
	save   bool
	styles checkStyles
	out    io.Writer
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor || !stdoutIsTerminal() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	tasksFlag, _ := cmd.Flags().GetStringSlice("tasks")
	asJSON, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")
	watch, _ := cmd.Flags().GetBool("watch")

	seed := a.cfg.Check.Seed
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetUint64("seed")
	}
	checkOpts := a.cfg.CheckOptions()
	checkOpts.Rand = tasks.NewRand(seed)

	run := &checkRun{
		app:   a,
		path:  args[0],
		names: parseTaskNames(tasksFlag),
		opts: submission.GradeOptions{
			Check:   checkOpts,
			Seed:    seed,
			Timeout: a.cfg.Check.Timeout,
		},
		asJSON: asJSON,
		save:   save,
		styles: newCheckStyles(),
		out:    cmd.OutOrStdout(),
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if !watch {
		results, err := run.once(ctx)
		if err != nil {
			return err
		}
		if !results.Passed() {
			return errCheckFailed
		}
		return nil
	}

	if _, err := run.once(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	fmt.Fprintf(run.out, "\nWatching %s (Ctrl+C to stop)\n", run.path)

	err = submission.Watch(ctx, run.path, submission.DefaultDebounce, func() {
		// Each pass reseeds so edits are graded on the same inputs.
		run.opts.Check.Rand = tasks.NewRand(seed)
		if _, err := run.once(ctx); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// once loads, grades and reports the submission a single time.
func (r *checkRun) once(ctx context.Context) (*reporting.CheckResults, error) {
	log := logging.Component("check")

	sub, err := submission.Load(r.path)
	if err != nil {
		return nil, err
	}

	names := r.names
	if len(names) == 0 {
		names = sub.Tasks
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s declares no Tasks; pass --tasks", r.path)
	}
	ex, err := submission.Resolve(r.app.reg, names)
	if err != nil {
		return nil, err
	}

	log.InfoCtx("grading submission", map[string]any{
		"path":  r.path,
		"tasks": ex.Names(),
		"seed":  r.opts.Seed,
	})
	results := submission.Run(ctx, sub, []*exercise.Exercise{ex}, r.opts)

	if r.save {
		if err := r.persist(results); err != nil {
			return results, err
		}
	}

	if r.asJSON {
		return results, writeJSON(r.out, results)
	}
	fmt.Fprint(r.out, renderCheckResults(r.styles, results))
	return results, nil
}

func (r *checkRun) persist(results *reporting.CheckResults) error {
	jsonPath := reporting.DefaultCheckResultsPath(results.StartTime)
	if err := reporting.SaveCheckResults(results, jsonPath); err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	mdPath := reporting.DefaultCheckReportPath(results.StartTime)
	if err := reporting.SaveCheckReport(results, mdPath); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	logging.Component("check").InfoCtx("results saved", map[string]any{
		"json":   jsonPath,
		"report": mdPath,
	})
	return nil
}
