package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marcus/gentasks/internal/config"
	"github.com/marcus/gentasks/internal/generator"
	"github.com/marcus/gentasks/internal/logging"
	"github.com/marcus/gentasks/internal/tasks"
)

// app is the composition root shared by commands: configuration, the task
// registry and the generation engine, each built once per invocation.
type app struct {
	cfg    *config.Config
	reg    *tasks.Registry
	engine *generator.Engine
}

func setup(cmd *cobra.Command) (*app, error) {
	projectPath, _ := cmd.Flags().GetString("project")
	cfg, err := loadConfig(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}
	if err := initLogging(cfg); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	reg := tasks.NewRegistry()
	if err := tasks.RegisterBuiltins(reg); err != nil {
		return nil, fmt.Errorf("registering task types: %w", err)
	}
	engine, err := generator.New(reg,
		generator.WithLogger(logging.Component("generator")),
		generator.WithSeed(cfg.Generator.Seed),
	)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, reg: reg, engine: engine}, nil
}

// loadConfig loads configuration from the project path or the working directory.
func loadConfig(projectPath string) (*config.Config, error) {
	if projectPath == "" {
		return config.Load()
	}
	return config.LoadFromPaths(projectPath, config.GlobalConfigPath())
}

// initLogging initializes the logging subsystem.
func initLogging(cfg *config.Config) error {
	return logging.Init(logging.Config{
		Level:         cfg.Logging.Level,
		Format:        cfg.Logging.Format,
		Path:          cfg.Logging.Path,
		RetentionDays: cfg.Logging.RetentionDays,
	})
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// parseTaskNames splits comma or space separated task names.
func parseTaskNames(args []string) []string {
	var names []string
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			names = append(names, field)
		}
	}
	return names
}

// parseInts parses every argument as an int, naming the offending one.
func parseInts(args []string, names ...string) ([]int, error) {
	out := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			label := fmt.Sprintf("argument %d", i+1)
			if i < len(names) {
				label = names[i]
			}
			return nil, fmt.Errorf("%s must be an integer, got %q", label, arg)
		}
		out[i] = n
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
