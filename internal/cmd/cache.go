package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snipkit/clipctx/internal/output"
)

var errNoStore = errors.New("no revision store: run 'clipctx init' first")

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the revision store",
	Long: `The revision store (.clipctx/cache.db) numbers file contents so parsed
trees are reused only while a file is unchanged.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show revision store statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored revision",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove revisions of files that no longer exist",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cachePruneCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	svc, _, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()
	if svc.Store() == nil {
		return errNoStore
	}

	stats, err := svc.Store().GetStats()
	if err != nil {
		return err
	}
	// Trees only live as long as the process, so a one-shot command has none.
	return writeOutput(cmd, &output.StatsOutput{Store: stats})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	svc, _, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()
	if svc.Store() == nil {
		return errNoStore
	}

	if err := svc.Store().Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Revision store cleared")
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	svc, _, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()
	store := svc.Store()
	if store == nil {
		return errNoStore
	}

	pruned, err := store.PruneEntries(func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	})
	if err != nil {
		return err
	}
	stats, err := store.GetStats()
	if err != nil {
		return err
	}
	return writeOutput(cmd, &output.PruneOutput{Pruned: pruned, Remaining: int(stats.Documents)})
}
