// Package config handles loading and validating gentasks configuration.
// Supports YAML config files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/marcus/gentasks/internal/catalog"
	"github.com/marcus/gentasks/internal/tasks"
)

// Config holds all gentasks configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Check     CheckConfig     `mapstructure:"check"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`          // debug, info, warn, error
	Format        string `mapstructure:"format"`         // json, text
	Path          string `mapstructure:"path"`           // log directory; empty logs to stderr
	RetentionDays int    `mapstructure:"retention_days"` // days of log files to keep
}

// CheckConfig bounds conformance checks of learner submissions.
type CheckConfig struct {
	Seed                uint64        `mapstructure:"seed"` // 0 = unseeded
	FibonacciExtraSteps int           `mapstructure:"fibonacci_extra_steps"`
	KeywordAttempts     int           `mapstructure:"keyword_attempts"`
	MaxIteratorSteps    int           `mapstructure:"max_iterator_steps"` // 0 = unbounded
	Timeout             time.Duration `mapstructure:"timeout"`            // per exercise
}

// GeneratorConfig controls the generation engine.
type GeneratorConfig struct {
	Seed    uint64 `mapstructure:"seed"` // 0 = unseeded
	Shuffle bool   `mapstructure:"shuffle"`
}

// CatalogConfig selects the problem statement texts.
type CatalogConfig struct {
	Locale string `mapstructure:"locale"`
	Path   string `mapstructure:"path"` // overrides Locale when set
}

// Default values for configuration.
const (
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
	DefaultLogRetentionDays    = 7
	DefaultCheckTimeout        = 30 * time.Second
	DefaultGeneratorShuffle    = true
	DefaultProjectConfigName   = "gentasks.yaml"
	DefaultGlobalConfigDirName = "gentasks"
	EnvPrefix                  = "GENTASKS"
)

// Validation errors.
var (
	ErrInvalidLogLevel         = errors.New("invalid log level (must be debug, info, warn, or error)")
	ErrInvalidLogFormat        = errors.New("invalid log format (must be json or text)")
	ErrInvalidFibonacciExtra   = errors.New("fibonacci_extra_steps must not be negative")
	ErrInvalidKeywordAttempts  = errors.New("keyword_attempts must not be negative")
	ErrInvalidMaxIteratorSteps = errors.New("max_iterator_steps must not be negative")
	ErrInvalidTimeout          = errors.New("check timeout must not be negative")
	ErrInvalidLocale           = errors.New("unknown catalog locale")
)

// Load reads configuration from the working directory and the global config.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return LoadFromPaths(cwd, GlobalConfigPath())
}

// LoadFromPaths loads globalPath, merges projectDir/gentasks.yaml over it and
// applies GENTASKS_* environment overrides. Missing files are skipped.
func LoadFromPaths(projectDir, globalPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if globalPath != "" && fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read global config %s: %w", globalPath, err)
		}
	}

	if projectDir != "" {
		projectPath := filepath.Join(projectDir, DefaultProjectConfigName)
		if fileExists(projectPath) {
			v.SetConfigFile(projectPath)
			v.SetConfigType("yaml")
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("read project config %s: %w", projectPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Logging.Path = expandPath(cfg.Logging.Path)
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.retention_days", DefaultLogRetentionDays)

	v.SetDefault("check.seed", 0)
	v.SetDefault("check.fibonacci_extra_steps", tasks.DefaultFibonacciExtraSteps)
	v.SetDefault("check.keyword_attempts", tasks.DefaultKeywordAttempts)
	v.SetDefault("check.max_iterator_steps", 0)
	v.SetDefault("check.timeout", DefaultCheckTimeout)

	v.SetDefault("generator.seed", 0)
	v.SetDefault("generator.shuffle", DefaultGeneratorShuffle)

	v.SetDefault("catalog.locale", catalog.DefaultLocale)
	v.SetDefault("catalog.path", "")
}

// Validate checks cfg for invalid values. Empty strings are treated as unset.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch cfg.Logging.Format {
	case "", "json", "text":
	default:
		return ErrInvalidLogFormat
	}

	if cfg.Check.FibonacciExtraSteps < 0 {
		return ErrInvalidFibonacciExtra
	}
	if cfg.Check.KeywordAttempts < 0 {
		return ErrInvalidKeywordAttempts
	}
	if cfg.Check.MaxIteratorSteps < 0 {
		return ErrInvalidMaxIteratorSteps
	}
	if cfg.Check.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if cfg.Catalog.Path == "" && cfg.Catalog.Locale != "" && !slices.Contains(catalog.Locales(), cfg.Catalog.Locale) {
		return fmt.Errorf("%w: %s", ErrInvalidLocale, cfg.Catalog.Locale)
	}
	return nil
}

// CheckOptions converts the check section into conformance check options.
func (c *Config) CheckOptions() tasks.CheckOptions {
	return tasks.CheckOptions{
		Rand:                tasks.NewRand(c.Check.Seed),
		FibonacciExtraSteps: c.Check.FibonacciExtraSteps,
		KeywordAttempts:     c.Check.KeywordAttempts,
		MaxIteratorSteps:    c.Check.MaxIteratorSteps,
	}
}

// Texts loads the configured catalog: the file at Catalog.Path if set,
// otherwise the embedded locale.
func (c *Config) Texts() (*catalog.Catalog, error) {
	if c.Catalog.Path != "" {
		return catalog.LoadFile(c.Catalog.Path)
	}
	return catalog.Load(c.Catalog.Locale)
}

// GlobalConfigPath returns ~/.config/gentasks/config.yaml.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", DefaultGlobalConfigDirName, "config.yaml")
}

// Write saves cfg as YAML at path, creating parent directories.
func Write(path string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)
	v.Set("logging.path", cfg.Logging.Path)
	v.Set("logging.retention_days", cfg.Logging.RetentionDays)
	v.Set("check.seed", cfg.Check.Seed)
	v.Set("check.fibonacci_extra_steps", cfg.Check.FibonacciExtraSteps)
	v.Set("check.keyword_attempts", cfg.Check.KeywordAttempts)
	v.Set("check.max_iterator_steps", cfg.Check.MaxIteratorSteps)
	v.Set("check.timeout", cfg.Check.Timeout.String())
	v.Set("generator.seed", cfg.Generator.Seed)
	v.Set("generator.shuffle", cfg.Generator.Shuffle)
	v.Set("catalog.locale", cfg.Catalog.Locale)
	v.Set("catalog.path", cfg.Catalog.Path)

	if err := v.WriteConfig(); err != nil {
		if os.IsNotExist(err) {
			return v.SafeWriteConfig()
		}
		return err
	}
	return nil
}

// Defaults returns the configuration used when no file sets a value.
func Defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:         DefaultLogLevel,
			Format:        DefaultLogFormat,
			RetentionDays: DefaultLogRetentionDays,
		},
		Check: CheckConfig{
			FibonacciExtraSteps: tasks.DefaultFibonacciExtraSteps,
			KeywordAttempts:     tasks.DefaultKeywordAttempts,
			Timeout:             DefaultCheckTimeout,
		},
		Generator: GeneratorConfig{Shuffle: DefaultGeneratorShuffle},
		Catalog:   CatalogConfig{Locale: catalog.DefaultLocale},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
