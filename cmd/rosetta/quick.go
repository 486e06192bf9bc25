package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xnoubis/rosetta/pkg/core"
	"github.com/xnoubis/rosetta/pkg/core/text"
	"github.com/xnoubis/rosetta/pkg/ingest"
)

// demoText is a small self-contained corpus for the quick demo. It mixes
// several topics so the walk has distinct regions to wander between.
const demoText = `The key to the archive hung on a nail behind the stationmaster's desk,
and nobody had touched it in thirty years. Dust settled on the ledgers
like snow on a closed road.

Out past the rail yard the river ran fast in spring, carrying melt from
the high passes. Fishermen worked the eddies at dawn, reading the water
the way clerks read columns of figures.

The telegraph office kept its own hours. Messages arrived in bursts,
clusters of urgency separated by long silences, and the operator learned
to sleep between storms of clicking brass.

In the archive itself the folios were bound in grey linen. Each carried
a pressed flower from the year of its binding, a private calendar no
index ever recorded.

The stationmaster's daughter drew maps of imaginary branch lines,
stations named for birds, junctions where no track had ever been laid.
She pinned them above the key and called the wall her timetable.

When the line closed, the last train carried out the furniture, the
clocks, and the signal lamps. The key stayed on its nail. Some locks
are kept not to be opened but to be remembered.`

var quickCmd = &cobra.Command{
	Use:   "quick",
	Short: "Demo: build a terrain from built-in text, walk it, search it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		embedder, err := newEmbedder(cfg)
		if err != nil {
			return err
		}

		fmt.Println("== Building terrain from demo text ==")
		inputs, err := ingest.NewCollector(embedder).FromText("demo", demoText)
		if err != nil {
			return err
		}
		eng, err := core.Build(inputs, cfg.BuildOptions())
		if err != nil {
			return err
		}
		applySeed(eng)
		fmt.Printf("%d fragments, k=%d, starting at %s\n\n",
			eng.Graph().NodeCount(), eng.Graph().K(), eng.State().Current)

		fmt.Println("== Walking 50 steps ==")
		walkVerbose(eng, 50)

		stats := eng.Stats()
		fmt.Printf("\ncoverage %.3f (%d/%d), %d snaps\n\n",
			stats.Coverage, stats.UniqueVisited, eng.Graph().NodeCount(), stats.Snaps)

		fmt.Println("== Searching for \"key\" ==")
		vec, err := embedder.Embed("key")
		if err != nil {
			return err
		}
		matches, err := eng.Lookup(vec, 3)
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Printf("  [%.3f] %s: %s\n", m.Similarity, m.ID, text.Truncate(m.Content, 80))
		}

		return saveEngine(cfg, eng)
	},
}

func init() {
	rootCmd.AddCommand(quickCmd)
}
