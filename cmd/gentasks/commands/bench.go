package commands

import (
	"github.com/spf13/cobra"

	"github.com/marcus/gentasks/internal/bench"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time generation queries and reference checks",
}

var benchGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Time threshold and range queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		iterations, _ := cmd.Flags().GetInt("iterations")
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		samples, err := bench.Generation(ctx, a.engine, iterations, bench.DefaultQueries())
		if err != nil {
			return err
		}
		return writeSamples(cmd, samples)
	},
}

var benchCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Time reference self-checks of exercises of one size",
	RunE: func(cmd *cobra.Command, args []string) error {
		members, _ := cmd.Flags().GetInt("members")
		repeat, _ := cmd.Flags().GetInt("repeat")
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		samples, err := bench.Validation(ctx, a.engine, members, repeat, a.cfg.CheckOptions())
		if err != nil {
			return err
		}
		return writeSamples(cmd, samples)
	},
}

func init() {
	benchCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	benchGenerateCmd.Flags().Int("iterations", 100, "Times each query is run")
	benchCheckCmd.Flags().Int("members", 2, "Number of task types per exercise")
	benchCheckCmd.Flags().Int("repeat", 10, "Times each exercise is checked")

	benchCmd.AddCommand(benchGenerateCmd)
	benchCmd.AddCommand(benchCheckCmd)
	rootCmd.AddCommand(benchCmd)
}

func writeSamples(cmd *cobra.Command, samples []bench.Sample) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if samples == nil {
			samples = []bench.Sample{}
		}
		return writeJSON(cmd.OutOrStdout(), samples)
	}
	return bench.Render(cmd.OutOrStdout(), samples)
}
