package commands

import (
	"fmt"
	"iter"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marcus/gentasks/internal/exercise"
	"github.com/marcus/gentasks/internal/tasks"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Query exercises by complexity or size",
	Long: `Query the combination index for exercises.

Member order inside each exercise is shuffled unless --shuffle=false or
generator.shuffle is false in the config. Set generator.seed for repeatable
output.`,
}

var generateUnderCmd = &cobra.Command{
	Use:   "under <threshold>",
	Short: "Exercises with complexity below threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseInts(args, "threshold")
		if err != nil {
			return err
		}
		return runGenerate(cmd, func(a *app, shuffle bool) (iter.Seq[*exercise.Exercise], error) {
			return a.engine.TasksUnderComplexity(n[0], shuffle), nil
		})
	},
}

var generateRangeCmd = &cobra.Command{
	Use:   "range <start> <end>",
	Short: "Exercises with complexity in [start, end)",
	Long: `List exercises whose complexity lies in the half-open range [start, end).
Bounds outside the indexed complexities are clamped.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseInts(args, "start", "end")
		if err != nil {
			return err
		}
		return runGenerate(cmd, func(a *app, shuffle bool) (iter.Seq[*exercise.Exercise], error) {
			return a.engine.TasksInRange(n[0], n[1], shuffle)
		})
	},
}

var generateAmountCmd = &cobra.Command{
	Use:   "amount <count>",
	Short: "Exercises with exactly count task types",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseInts(args, "count")
		if err != nil {
			return err
		}
		return runGenerate(cmd, func(a *app, shuffle bool) (iter.Seq[*exercise.Exercise], error) {
			return a.engine.TasksAmount(n[0], shuffle), nil
		})
	},
}

func init() {
	generateCmd.PersistentFlags().Bool("shuffle", true, "Shuffle member order inside each exercise")
	generateCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	generateCmd.PersistentFlags().Int("limit", 0, "Stop after this many exercises (0 = all)")
	generateCmd.PersistentFlags().Bool("describe", false, "Include rendered descriptions")

	generateCmd.AddCommand(generateUnderCmd)
	generateCmd.AddCommand(generateRangeCmd)
	generateCmd.AddCommand(generateAmountCmd)
	rootCmd.AddCommand(generateCmd)
}

type exerciseJSON struct {
	Tasks       []string `json:"tasks"`
	Complexity  int      `json:"complexity"`
	Notes       []string `json:"notes,omitempty"`
	Description string   `json:"description,omitempty"`
}

type queryFunc func(a *app, shuffle bool) (iter.Seq[*exercise.Exercise], error)

func runGenerate(cmd *cobra.Command, query queryFunc) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")
	describe, _ := cmd.Flags().GetBool("describe")

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	shuffle := a.cfg.Generator.Shuffle
	if cmd.Flags().Changed("shuffle") {
		shuffle, _ = cmd.Flags().GetBool("shuffle")
	}

	seq, err := query(a, shuffle)
	if err != nil {
		return err
	}

	rendered := a.describer(describe)

	var out []exerciseJSON
	for ex := range seq {
		if limit > 0 && len(out) >= limit {
			break
		}
		item := exerciseJSON{Tasks: ex.Names(), Complexity: ex.Complexity(), Notes: ex.Notes()}
		if rendered != nil {
			item.Description, err = rendered(ex)
			if err != nil {
				return err
			}
		}
		out = append(out, item)
	}

	if asJSON {
		if out == nil {
			out = []exerciseJSON{}
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	if len(out) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No exercises match.")
		return nil
	}

	if describe {
		for i, item := range out {
			fmt.Fprintf(cmd.OutOrStdout(), "#%d  %s (complexity %d)\n%s\n\n",
				i+1, strings.Join(item.Tasks, " + "), item.Complexity, item.Description)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tCOMPLEXITY\tTASKS")
	for i, item := range out {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\n", i+1, item.Complexity, strings.Join(item.Tasks, " + "))
	}
	return w.Flush()
}

// describer returns a description renderer when enabled, seeded from the
// generator seed so repeated runs print the same examples.
func (a *app) describer(enabled bool) func(*exercise.Exercise) (string, error) {
	if !enabled {
		return nil
	}
	return func(ex *exercise.Exercise) (string, error) {
		texts, err := a.cfg.Texts()
		if err != nil {
			return "", err
		}
		return ex.Description(texts, tasks.NewRand(a.cfg.Generator.Seed)), nil
	}
}
