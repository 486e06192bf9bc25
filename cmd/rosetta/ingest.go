package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xnoubis/rosetta/internal/server"
	"github.com/xnoubis/rosetta/pkg/core"
	"github.com/xnoubis/rosetta/pkg/core/distance"
	"github.com/xnoubis/rosetta/pkg/ingest"
)

var (
	ingestK         int
	ingestPrecision string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <folder>",
	Short: "Build a terrain from the documents in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		embedder, err := newEmbedder(cfg)
		if err != nil {
			return err
		}

		collector := ingest.NewCollector(embedder)
		if cfg.Chunking.Size > 0 {
			collector.ChunkSize = cfg.Chunking.Size
			collector.ChunkOverlap = cfg.Chunking.Overlap
		}

		inputs, err := collector.FromFolder(args[0])
		if err != nil {
			return err
		}
		return buildAndPersist(cfg, inputs)
	},
}

var ingestTextCmd = &cobra.Command{
	Use:   "ingest-text [file]",
	Short: "Build a terrain from a single text file (or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		embedder, err := newEmbedder(cfg)
		if err != nil {
			return err
		}

		source := "stdin"
		var text string
		if len(args) == 1 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			source = args[0]
			text = string(data)
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			text = string(data)
		}

		collector := ingest.NewCollector(embedder)
		if cfg.Chunking.Size > 0 {
			collector.ChunkSize = cfg.Chunking.Size
			collector.ChunkOverlap = cfg.Chunking.Overlap
		}

		inputs, err := collector.FromText(source, text)
		if err != nil {
			return err
		}
		return buildAndPersist(cfg, inputs)
	},
}

func buildAndPersist(cfg server.Config, inputs []core.FragmentInput) error {
	opts := cfg.BuildOptions()
	if ingestK > 0 {
		opts.K = ingestK
	}
	if ingestPrecision != "" {
		p := distance.PrecisionType(ingestPrecision)
		if p != distance.Float32 && p != distance.Float16 {
			return fmt.Errorf("invalid precision %q", ingestPrecision)
		}
		opts.Precision = p
	}

	eng, err := core.Build(inputs, opts)
	if err != nil {
		return err
	}
	if err := saveEngine(cfg, eng); err != nil {
		return err
	}

	g := eng.Graph()
	fmt.Printf("Terrain built: %d fragments, dim %d, k %d. Cursor at %s.\n",
		g.NodeCount(), g.Dim(), g.K(), eng.State().Current)
	fmt.Printf("State saved to %s\n", cfg.StatePath)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{ingestCmd, ingestTextCmd} {
		c.Flags().IntVar(&ingestK, "k", 0, "Neighbors per fragment (default from config)")
		c.Flags().StringVar(&ingestPrecision, "precision", "", "Vector precision: float32 or float16")
	}
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(ingestTextCmd)
}
