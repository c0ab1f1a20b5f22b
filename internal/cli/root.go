// Package cli implements the memstore CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cortexlab/memstore/internal/cache"
	"github.com/cortexlab/memstore/internal/config"
	"github.com/cortexlab/memstore/internal/store"
)

var (
	dirFlag      string
	configFlag   string
	logLevelFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "memstore",
	Short: "File-backed typed memory for AI agents",
	Long:  "Typed agent memory (episodic, semantic, working) over JSON partition files, with TTL+LRU caching, retention pruning and token-budgeted summaries.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", "", "Storage directory (default: $MEMSTORE_DIR or ~/.memstore/data)")
	RootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: ~/.memstore/config.yaml when present)")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return cfg, err
	}
	if dirFlag != "" {
		cfg.Dir = dirFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// openStore builds the store with its injected cache. The returned
// closer stops the cache sweep timer.
func openStore() (*store.FileStore, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := config.NewLogger(cfg.Log)
	c := cache.New(cfg.Cache.ToCache(), log)
	s, err := store.NewFileStore(cfg.Dir, c, log)
	if err != nil {
		c.Stop()
		return nil, nil, err
	}
	return s, c.Stop, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
