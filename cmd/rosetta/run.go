package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xnoubis/rosetta/pkg/core"
	"github.com/xnoubis/rosetta/pkg/core/text"
)

var runCmd = &cobra.Command{
	Use:   "run [steps]",
	Short: "Walk the terrain for N steps (default 50)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 50
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}

		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		eng, err := loadEngine(cfg)
		if err != nil {
			return err
		}

		walkVerbose(eng, steps)

		stats := eng.Stats()
		fmt.Printf("\n%d steps done. Coverage %.3f (%d/%d fragments), %d snaps total.\n",
			steps, stats.Coverage, stats.UniqueVisited, eng.Graph().NodeCount(), stats.Snaps)

		return saveEngine(cfg, eng)
	},
}

// walkVerbose steps the engine, reporting progress every 20 steps and
// every snap as it happens.
func walkVerbose(eng *core.Engine, steps int) {
	for i := 1; i <= steps; i++ {
		id, entropy, snap := eng.Step()

		if snap != nil {
			fmt.Printf("  *** SNAP at step %d: entropy fell %.4f entering %s\n",
				snap.Step, snap.Delta, snap.Node)
			fmt.Printf("      %q\n", snap.Preview)
		}

		if i%20 == 0 || i == steps {
			state := eng.State()
			dir := "R"
			if len(state.Turns) > 0 && state.Turns[len(state.Turns)-1] < 0 {
				dir = "L"
			}
			fmt.Printf("  step %4d [%s] H=%.3f -> %s\n", state.Step, dir, entropy, id)
		}
	}
}

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Take a single step through the terrain",
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

		id, entropy, snap := eng.Step()
		frag := eng.Graph().Fragment(id)

		fmt.Printf("step %d -> %s (entropy %.3f)\n", eng.State().Step, id, entropy)
		if frag != nil {
			fmt.Printf("  %s\n", text.Truncate(frag.Content, 120))
		}
		if snap != nil {
			fmt.Printf("  *** SNAP: entropy fell %.4f\n", snap.Delta)
		}

		return saveEngine(cfg, eng)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stepCmd)
}
