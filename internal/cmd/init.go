package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/snipkit/clipctx/internal/cache"
	"github.com/snipkit/clipctx/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .clipctx directory and config",
	Long: `Initialize the .clipctx directory in the current directory.

This writes a default config.yaml and creates the revision store
(cache.db). The directory also marks the workspace root: grammar paths
in the config resolve against it, and the MCP server watches it.`,
	Example: `  clipctx init          # Initialize in current directory
  clipctx init --force  # Rewrite config.yaml with defaults`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configFile := filepath.Join(cwd, config.ConfigDirName, config.ConfigFileName)

	_, err = os.Stat(configFile)
	if err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(cwd, configFile)
			fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(configFile); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	path, err := config.SaveDefault(cwd)
	if err != nil {
		return err
	}

	store, err := cache.Open(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("initializing revision store: %w", err)
	}
	defer store.Close()

	relPath, _ := filepath.Rel(cwd, path)
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized clipctx at %s\n", relPath)
	return nil
}
