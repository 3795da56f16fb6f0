package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/snipkit/clipctx/internal/parser"
	"github.com/snipkit/clipctx/internal/snippet"
)

// ConfigFileName is the name of the clipctx configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the clipctx configuration directory
const ConfigDirName = ".clipctx"

// Config holds all clipctx configuration
type Config struct {
	Header    HeaderConfig              `yaml:"header"`
	Languages map[string]LanguageConfig `yaml:"languages,omitempty"`
	Cache     CacheConfig               `yaml:"cache"`
	Clipboard ClipboardConfig           `yaml:"clipboard"`
	Log       LogConfig                 `yaml:"log"`
}

// HeaderConfig controls the metadata header rendered above a snippet
type HeaderConfig struct {
	Style  string   `yaml:"style"`
	Fields []string `yaml:"fields"`
	Fence  string   `yaml:"fence"`
}

// LanguageConfig overrides grammar loading and module inference for one language
type LanguageConfig struct {
	// Grammar is a shared library holding the compiled grammar. Relative
	// paths resolve against the workspace root.
	Grammar     string   `yaml:"grammar,omitempty"`
	SourceRoots []string `yaml:"source_roots,omitempty"`
}

// CacheConfig holds tree cache and grammar loading limits
type CacheConfig struct {
	MaxTrees       int           `yaml:"max_trees"`
	GrammarTimeout time.Duration `yaml:"grammar_timeout"`
}

// ClipboardConfig selects the clipboard tool
type ClipboardConfig struct {
	// Command overrides tool detection, e.g. "xclip -selection clipboard".
	Command string `yaml:"command,omitempty"`
}

// LogConfig controls diagnostic logging on stderr
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SlogLevel converts the configured level to a slog.Level.
// Unknown levels map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .clipctx/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir locates the .clipctx directory by walking up from startDir.
// Returns the path to the .clipctx directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// WorkspaceRoot returns the directory holding the .clipctx directory found
// from startDir, or startDir itself when there is none.
func WorkspaceRoot(startDir string) string {
	if configDir, err := FindConfigDir(startDir); err == nil {
		return filepath.Dir(configDir)
	}
	if abs, err := filepath.Abs(startDir); err == nil {
		return abs
	}
	return startDir
}

// EnsureConfigDir creates the .clipctx directory if it doesn't exist.
// Returns the path to the .clipctx directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return configDir, nil
}

// GrammarPath returns the grammar library configured for lang, resolved
// against root. Empty when the builtin grammar is used.
func (c *Config) GrammarPath(lang parser.Language, root string) string {
	lc, ok := c.language(lang)
	if !ok || lc.Grammar == "" {
		return ""
	}
	if filepath.IsAbs(lc.Grammar) {
		return lc.Grammar
	}
	return filepath.Join(root, lc.Grammar)
}

// SourceRoots returns the configured source roots for lang, if any.
func (c *Config) SourceRoots(lang parser.Language) []string {
	lc, _ := c.language(lang)
	return lc.SourceRoots
}

// language returns the entry configured for lang. The canonical id wins
// over aliases; among aliases the first in sorted order wins.
func (c *Config) language(lang parser.Language) (LanguageConfig, bool) {
	if lc, ok := c.Languages[string(lang)]; ok {
		return lc, true
	}
	ids := make([]string, 0, len(c.Languages))
	for id := range c.Languages {
		if l, ok := parser.LanguageFromID(id); ok && l == lang {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return LanguageConfig{}, false
	}
	sort.Strings(ids)
	return c.Languages[ids[0]], true
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if _, err := snippet.ParseStyle(cfg.Header.Style); err != nil {
		return fmt.Errorf("%w: header.style: %v", ErrInvalidConfig, err)
	}

	for _, field := range cfg.Header.Fields {
		if !snippet.IsField(field) {
			return fmt.Errorf("%w: header.fields: unknown field %q, must be one of %v",
				ErrInvalidConfig, field, snippet.DefaultFields())
		}
	}

	seen := make(map[parser.Language]string, len(cfg.Languages))
	for id := range cfg.Languages {
		lang, ok := parser.LanguageFromID(id)
		if !ok {
			return fmt.Errorf("%w: languages: unsupported language %q", ErrInvalidConfig, id)
		}
		if other, dup := seen[lang]; dup {
			first, second := min(id, other), max(id, other)
			return fmt.Errorf("%w: languages: %q and %q both configure %s",
				ErrInvalidConfig, first, second, lang)
		}
		seen[lang] = id
	}

	if cfg.Cache.MaxTrees <= 0 {
		return fmt.Errorf("%w: cache.max_trees must be positive, got %d",
			ErrInvalidConfig, cfg.Cache.MaxTrees)
	}

	if cfg.Cache.GrammarTimeout <= 0 {
		return fmt.Errorf("%w: cache.grammar_timeout must be positive, got %s",
			ErrInvalidConfig, cfg.Cache.GrammarTimeout)
	}

	if !isOneOf(strings.ToLower(cfg.Log.Level), ValidLogLevels) {
		return fmt.Errorf("%w: log.level must be one of %v, got %q",
			ErrInvalidConfig, ValidLogLevels, cfg.Log.Level)
	}

	if !isOneOf(cfg.Log.Format, ValidLogFormats) {
		return fmt.Errorf("%w: log.format must be one of %v, got %q",
			ErrInvalidConfig, ValidLogFormats, cfg.Log.Format)
	}

	return nil
}

// SaveDefault writes the default configuration to .clipctx/config.yaml in workDir.
// Creates the .clipctx directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# clipctx configuration\n" +
		"# languages.<id>.grammar loads a grammar from a shared library instead of the builtin copy.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return configPath, nil
}
