package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/snipkit/clipctx/internal/clip"
	"github.com/snipkit/clipctx/internal/config"
	"github.com/snipkit/clipctx/internal/output"
)

// logger is configured by setupLogging before any command runs.
var logger = slog.New(slog.DiscardHandler)

// setupLogging builds the stderr logger from the log section of the config
// and --verbose. A broken config is reported by the command that loads it.
func setupLogging(cmd *cobra.Command, args []string) error {
	logCfg := config.DefaultConfig().Log
	if cfg, _, err := loadConfig(); err == nil {
		logCfg = cfg.Log
	}
	logger = newLogger(cmd.ErrOrStderr(), logCfg, verbose)
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadConfig loads the config named by --config, or the one found by
// walking up from the working directory. It also returns the workspace root.
func loadConfig() (*config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}
	root := config.WorkspaceRoot(cwd)

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

// openService loads the config and opens the workspace service.
func openService() (*clip.Service, *config.Config, error) {
	cfg, root, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	svc, err := clip.Open(cfg, root, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// absPath resolves a path argument against the working directory.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// writeOutput renders v in the --format format.
func writeOutput(cmd *cobra.Command, v any) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	formatter, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), v)
}
