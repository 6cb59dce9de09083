package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/gentasks/internal/catalog"
	"github.com/marcus/gentasks/internal/submission"
	"github.com/marcus/gentasks/internal/tasks"
)

var showCmd = &cobra.Command{
	Use:   "show <task>...",
	Short: "Render an exercise description",
	Long: `Render the learner-facing description of the exercise built from the
given task types, in order. Names may be separated by spaces or commas.

Examples:
  gentasks show Range AwaitKeyword
  gentasks show Range,Fibonacci --locale ru`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().Uint64("seed", 0, "Seed for example selection (default: generator.seed)")
	showCmd.Flags().String("locale", "", "Catalog locale (default: catalog.locale)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ex, err := submission.Resolve(a.reg, parseTaskNames(args))
	if err != nil {
		return err
	}

	var texts catalog.Texts
	if locale, _ := cmd.Flags().GetString("locale"); locale != "" {
		texts, err = catalog.Load(locale)
	} else {
		texts, err = a.cfg.Texts()
	}
	if err != nil {
		return err
	}

	seed := a.cfg.Generator.Seed
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetUint64("seed")
	}

	fmt.Fprintln(cmd.OutOrStdout(), ex.Description(texts, tasks.NewRand(seed)))
	return nil
}
