package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xnoubis/rosetta/pkg/core/text"
)

var meaningK int

var meaningCmd = &cobra.Command{
	Use:   "meaning <query>...",
	Short: "Find the fragments closest in meaning to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		eng, err := loadEngine(cfg)
		if err != nil {
			return err
		}
		embedder, err := newEmbedder(cfg)
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		vec, err := embedder.Embed(query)
		if err != nil {
			return fmt.Errorf("embedding query: %w", err)
		}

		matches, err := eng.Lookup(vec, meaningK)
		if err != nil {
			return err
		}

		fmt.Printf("closest to %q:\n", query)
		for _, m := range matches {
			fmt.Printf("  [%.3f] %s: %s\n", m.Similarity, m.ID, text.Truncate(m.Content, 100))
		}
		return nil
	},
}

var snapsCmd = &cobra.Command{
	Use:   "snaps",
	Short: "List recorded snap events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		eng, err := loadEngine(cfg)
		if err != nil {
			return err
		}
		printSnaps(eng)
		return nil
	},
}

func init() {
	meaningCmd.Flags().IntVar(&meaningK, "k", 5, "Number of matches to return")
	rootCmd.AddCommand(meaningCmd)
	rootCmd.AddCommand(snapsCmd)
}
