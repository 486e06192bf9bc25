package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xnoubis/rosetta/pkg/persistence"
)

var (
	coverageTrials int
	coverageSteps  int
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Measure how much terrain repeated walks explore",
	Long: `Runs several independent fixed-length walks from the start fragment,
resetting the navigation state between trials, and reports per-trial
coverage plus the aggregate. The persisted walk state is not modified.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		eng, err := loadEngine(cfg)
		if err != nil {
			return err
		}

		// The harness resets state destructively, so this runs on the
		// loaded copy and deliberately never saves it back.
		results, summary := eng.EvaluateCoverage(coverageTrials, coverageSteps)

		for _, r := range results {
			fmt.Printf("  trial %d: coverage %.3f (%d/%d), %d snaps\n",
				r.Trial, r.Stats.Coverage, r.Stats.UniqueVisited,
				eng.Graph().NodeCount(), r.Stats.Snaps)
		}
		fmt.Printf("\n%d trials x %d steps: avg coverage %.3f (stddev %.3f), avg snaps %.1f\n",
			summary.Trials, summary.StepsPerTrial,
			summary.AvgCoverage, summary.CoverageStdDev, summary.AvgSnaps)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the persisted terrain state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		if !persistence.Exists(cfg.StatePath) {
			fmt.Printf("nothing to reset at %s\n", cfg.StatePath)
			return nil
		}
		if err := persistence.Remove(cfg.StatePath); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", cfg.StatePath)
		return nil
	},
}

func init() {
	coverageCmd.Flags().IntVar(&coverageTrials, "trials", 5, "Number of independent walks")
	coverageCmd.Flags().IntVar(&coverageSteps, "steps", 100, "Steps per walk")
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(resetCmd)
}
