package main

import (
	"fmt"
	"math/rand"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xnoubis/rosetta/internal/server"
	"github.com/xnoubis/rosetta/pkg/core"
	"github.com/xnoubis/rosetta/pkg/embeddings"
	"github.com/xnoubis/rosetta/pkg/persistence"
)

var (
	configPath string
	statePath  string
	seed       int64
)

var rootCmd = &cobra.Command{
	Use:   "rosetta",
	Short: "rosetta - navigate text as semantic terrain",
	Long: `Rosetta builds a similarity graph over embedded text fragments and
walks it with a biased stochastic navigator. The walk favors unvisited
regions, cools recently heated ones, and records "snaps": moments where
its choice entropy collapses because the terrain funneled it somewhere.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; it typically carries API keys referenced
		// as ${VAR} in the config file.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "",
		"Path of the persisted terrain state (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0,
		"Random seed for the walk (0 = time-based)")
}

// loadCLIConfig resolves the effective configuration for CLI commands.
func loadCLIConfig() (server.Config, error) {
	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if statePath != "" {
		cfg.StatePath = statePath
	}
	return cfg, nil
}

func newEmbedder(cfg server.Config) (embeddings.Embedder, error) {
	return embeddings.New(cfg.Embedder)
}

// loadEngine restores the persisted terrain, applying the --seed flag.
func loadEngine(cfg server.Config) (*core.Engine, error) {
	snap, err := persistence.Load(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("no terrain at %s, run 'rosetta ingest' first", cfg.StatePath)
	}
	eng, err := core.FromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	applySeed(eng)
	return eng, nil
}

func applySeed(eng *core.Engine) {
	if seed != 0 {
		eng.SetRand(rand.New(rand.NewSource(seed)))
	}
}

func saveEngine(cfg server.Config, eng *core.Engine) error {
	return persistence.Save(cfg.StatePath, eng.Snapshot())
}
