package config

import (
	"time"

	"github.com/snipkit/clipctx/internal/parser"
	"github.com/snipkit/clipctx/internal/snippet"
	"github.com/snipkit/clipctx/internal/treecache"
)

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Header: HeaderConfig{
			Style:  string(snippet.StyleRich),
			Fields: snippet.DefaultFields(),
			Fence:  "```",
		},
		Cache: CacheConfig{
			MaxTrees:       treecache.DefaultMaxTrees,
			GrammarTimeout: parser.DefaultLoadTimeout,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Header = mergeHeaderConfig(loaded.Header, defaults.Header)
	result.Cache = mergeCacheConfig(loaded.Cache, defaults.Cache)
	result.Log = mergeLogConfig(loaded.Log, defaults.Log)

	// Languages and clipboard have no defaults worth merging field by field
	result.Languages = loaded.Languages
	if result.Languages == nil {
		result.Languages = defaults.Languages
	}
	result.Clipboard = loaded.Clipboard
	if result.Clipboard.Command == "" {
		result.Clipboard.Command = defaults.Clipboard.Command
	}

	return result
}

func mergeHeaderConfig(loaded, defaults HeaderConfig) HeaderConfig {
	result := HeaderConfig{}

	// Style: use loaded if non-empty
	if loaded.Style != "" {
		result.Style = loaded.Style
	} else {
		result.Style = defaults.Style
	}

	// Use loaded fields if provided, otherwise defaults
	if len(loaded.Fields) > 0 {
		result.Fields = loaded.Fields
	} else {
		result.Fields = defaults.Fields
	}

	if loaded.Fence != "" {
		result.Fence = loaded.Fence
	} else {
		result.Fence = defaults.Fence
	}

	return result
}

func mergeCacheConfig(loaded, defaults CacheConfig) CacheConfig {
	result := CacheConfig{}

	// MaxTrees: use loaded if non-zero
	if loaded.MaxTrees != 0 {
		result.MaxTrees = loaded.MaxTrees
	} else {
		result.MaxTrees = defaults.MaxTrees
	}

	// GrammarTimeout: use loaded if non-zero
	if loaded.GrammarTimeout != 0 {
		result.GrammarTimeout = loaded.GrammarTimeout
	} else {
		result.GrammarTimeout = defaults.GrammarTimeout
	}

	return result
}

func mergeLogConfig(loaded, defaults LogConfig) LogConfig {
	result := LogConfig{}

	if loaded.Level != "" {
		result.Level = loaded.Level
	} else {
		result.Level = defaults.Level
	}

	if loaded.Format != "" {
		result.Format = loaded.Format
	} else {
		result.Format = defaults.Format
	}

	return result
}

// ValidLogLevels lists the accepted log.level values
var ValidLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// ValidLogFormats lists the accepted log.format values
var ValidLogFormats = []string{"text", "json"}

func isOneOf(value string, valid []string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
