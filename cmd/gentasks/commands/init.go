package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/gentasks/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create configuration file",
	Long: `Initialize a new gentasks configuration file with default values.

By default, creates gentasks.yaml in the current directory.
Use --global to create a global config at ~/.config/gentasks/config.yaml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("global", false, "Create global config instead of project config")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config without prompting")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	global, _ := cmd.Flags().GetBool("global")
	force, _ := cmd.Flags().GetBool("force")
	out := cmd.OutOrStdout()

	var configPath string
	if global {
		configPath = config.GlobalConfigPath()
		if configPath == "" {
			return fmt.Errorf("cannot resolve home directory for global config")
		}
	} else {
		dir, _ := cmd.Flags().GetString("project")
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			dir = cwd
		}
		configPath = filepath.Join(dir, config.DefaultProjectConfigName)
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Fprintf(out, "Config already exists: %s\n", configPath)
		fmt.Fprint(out, "Overwrite? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := config.Write(configPath, config.Defaults()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n\n", configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Set check.seed for reproducible grading")
	fmt.Fprintln(out, "  2. Run 'gentasks list' to see the task catalog")
	fmt.Fprintln(out, "  3. Run 'gentasks check solution.go' to grade a submission")
	return nil
}
