// Package cli implements the michimem command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/michimem/michimem/internal/config"
	"github.com/michimem/michimem/internal/logging"
	"github.com/michimem/michimem/internal/store"
	"github.com/spf13/cobra"
)

var dataDirFlag string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "michimem",
	Short: "Persistent, tiered memory for AI agents",
	Long:  "michimem: a tiered memory store for AI agents. Diaries, insights, and knowledge compound over time; hook and MCP entry points wire it into a host.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (default: $MICHIMEM_DATA_DIR or ~/.michimem)")
}

func loadConfig() (config.Config, config.Paths, error) {
	cfg, err := config.Load(dataDirFlag)
	if err != nil {
		return cfg, config.Paths{}, err
	}
	paths, err := config.ResolvePaths(cfg.DataDir)
	if err != nil {
		return cfg, paths, fmt.Errorf("resolve paths: %w", err)
	}
	return cfg, paths, nil
}

func openStore(paths config.Paths, log zerolog.Logger) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(paths.DBPath, log)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func newLogger() zerolog.Logger {
	return logging.Init()
}
