// Package logging provides structured component logging for gentasks.
// Output goes to stderr, or to a daily log file when a directory is configured.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const filePrefix = "gentasks-"

// Logger wraps a zerolog.Logger tagged with a component name.
type Logger struct {
	zl        zerolog.Logger
	component string
	file      *os.File
	mu        *sync.Mutex
}

// Config holds logging configuration.
type Config struct {
	Level         string    // debug, info, warn, error
	Format        string    // json, text
	Path          string    // log directory; empty logs to Output
	RetentionDays int       // days of log files to keep (default 7)
	Output        io.Writer // defaults to os.Stderr
}

// DefaultConfig returns the configuration used before Init is called.
func DefaultConfig() Config {
	return Config{Level: "warn", Format: "text", RetentionDays: 7}
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// Init replaces the global logger.
func Init(cfg Config) error {
	logger, err := New(cfg)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Close()
	}
	globalLogger = logger
	return nil
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 7
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	logger := &Logger{mu: &sync.Mutex{}}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if cfg.Path != "" {
		dir := expandPath(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
		name := filepath.Join(dir, filePrefix+time.Now().Format("2006-01-02")+".log")
		f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		logger.file = f
		out = f
		pruneLogs(dir, cfg.RetentionDays, time.Now())
	}

	switch cfg.Format {
	case "", "json":
	case "text":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	logger.zl = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), mu: &sync.Mutex{}}
}

// pruneLogs deletes gentasks-YYYY-MM-DD.log files older than retentionDays.
func pruneLogs(dir string, retentionDays int, now time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) {
			continue
		}
		date, ok := strings.CutSuffix(strings.TrimPrefix(name, filePrefix), ".log")
		if !ok {
			continue
		}
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}

// WithComponent returns a child logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		zl:        l.zl.With().Str("component", component).Logger(),
		component: component,
		file:      l.file,
		mu:        l.mu,
	}
}

// Component returns the component name, if any.
func (l *Logger) Component() string { return l.component }

// Zerolog exposes the underlying logger for callers building their own events.
func (l *Logger) Zerolog() *zerolog.Logger { return &l.zl }

func (l *Logger) Debug(msg string) { l.zl.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zl.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zl.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zl.Error().Msg(msg) }

func (l *Logger) Debugf(format string, args ...any) { l.zl.Debug().Msgf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.zl.Info().Msgf(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.zl.Warn().Msgf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.zl.Error().Msgf(format, args...) }

// DebugCtx logs msg with structured fields.
func (l *Logger) DebugCtx(msg string, fields map[string]any) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

// InfoCtx logs msg with structured fields.
func (l *Logger) InfoCtx(msg string, fields map[string]any) {
	l.zl.Info().Fields(fields).Msg(msg)
}

// WarnCtx logs msg with structured fields.
func (l *Logger) WarnCtx(msg string, fields map[string]any) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

// Err starts an error-level event carrying err.
func (l *Logger) Err(err error) *zerolog.Event {
	return l.zl.Error().Err(err)
}

// Close closes the log file, if one is open.
func (l *Logger) Close() error {
	if l.mu == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Get returns the global logger, falling back to DefaultConfig on stderr.
func Get() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}
	l, _ = New(DefaultConfig())
	return l
}

// Component returns a global child logger for the named component.
func Component(name string) *Logger {
	return Get().WithComponent(name)
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
