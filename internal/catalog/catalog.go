// Package catalog provides the localized problem statements and footnotes
// rendered into exercise descriptions.
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/marcus/gentasks/internal/logging"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en"

//go:embed locales/*.yaml
var locales embed.FS

// ErrUnknownLocale is returned when no embedded catalog matches a locale.
var ErrUnknownLocale = errors.New("catalog: unknown locale")

// Texts is the lookup surface exercises render descriptions from.
type Texts interface {
	Intro() string
	ExamplesHeader() string
	NotesHeader() string
	// Statement returns the problem statement for a task type's qualified name.
	Statement(name string) string
	// Note returns the footnote text for a note key.
	Note(key string) string
}

// Catalog is a Texts backed by a YAML document.
type Catalog struct {
	Locale     string            `yaml:"locale"`
	IntroText  string            `yaml:"intro"`
	Examples   string            `yaml:"examples"`
	NotesTitle string            `yaml:"notes_header"`
	Statements map[string]string `yaml:"statements"`
	Notes      map[string]string `yaml:"notes"`

	logger *logging.Logger
}

// Parse decodes and validates a catalog payload.
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog: payload is empty")
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.logger = logging.Component("catalog")
	return &c, nil
}

// Validate checks that the headers and at least one statement are present.
func (c *Catalog) Validate() error {
	if strings.TrimSpace(c.IntroText) == "" {
		return fmt.Errorf("catalog: intro is required")
	}
	if len(c.Statements) == 0 {
		return fmt.Errorf("catalog: statements are required")
	}
	return nil
}

// Load returns the embedded catalog for locale.
func Load(locale string) (*Catalog, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	data, err := locales.ReadFile("locales/" + locale + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, locale)
	}
	return Parse(data)
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Locales lists the embedded locales.
func Locales() []string {
	entries, _ := locales.ReadDir("locales")
	var out []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Intro() string          { return c.IntroText }
func (c *Catalog) ExamplesHeader() string { return c.Examples }
func (c *Catalog) NotesHeader() string    { return c.NotesTitle }

// Statement falls back to a visible placeholder for unknown names.
func (c *Catalog) Statement(name string) string {
	if s, ok := c.Statements[name]; ok {
		return s
	}
	c.missing("statement", name)
	return fmt.Sprintf("<missing statement: %s>", name)
}

// Note falls back to a visible placeholder for unknown keys.
func (c *Catalog) Note(key string) string {
	if s, ok := c.Notes[key]; ok {
		return s
	}
	c.missing("note", key)
	return fmt.Sprintf("<missing note: %s>", key)
}

func (c *Catalog) missing(kind, key string) {
	if c.logger == nil {
		return
	}
	c.logger.WarnCtx("catalog entry missing", map[string]any{
		"locale": c.Locale,
		"kind":   kind,
		"key":    key,
	})
}
