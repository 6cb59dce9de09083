// Package commands implements the gentasks CLI commands using cobra.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "gentasks",
	Short: "Generate and grade step-sequence exercises",
	Long: `Gentasks composes practice exercises from a catalog of task types
(ranges, keyword waiting, passthrough iteration, Fibonacci) and grades
learner solutions by driving them step by step against a reference.

Configure defaults in gentasks.yaml or ~/.config/gentasks/config.yaml.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gentasks version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gentasks %s\n", Version)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("project", "p", "", "Directory holding gentasks.yaml (default: working directory)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.AddCommand(versionCmd)
}
