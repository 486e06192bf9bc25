package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xnoubis/rosetta/pkg/core"
	"github.com/xnoubis/rosetta/pkg/core/text"
	"github.com/xnoubis/rosetta/pkg/embeddings"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Walk the terrain interactively",
	Long: `Interactive loop over the persisted terrain.

Commands:
  s          take one step
  r N        run N steps
  w          where am I (current fragment)
  n          list the current fragment's neighbors
  m QUERY    semantic lookup for QUERY
  snaps      list recorded snap events
  path       show the path walked so far
  q          save and quit`,
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
		embedder, err := newEmbedder(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("Terrain: %d fragments. Cursor at %s. Type 'q' to quit.\n",
			eng.Graph().NodeCount(), eng.State().Current)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "q" {
				break
			}
			exploreDispatch(eng, embedder, line)
		}

		return saveEngine(cfg, eng)
	},
}

func exploreDispatch(eng *core.Engine, embedder embeddings.Embedder, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "s":
		id, entropy, snap := eng.Step()
		fmt.Printf("step %d -> %s (entropy %.3f)\n", eng.State().Step, id, entropy)
		if frag := eng.Graph().Fragment(id); frag != nil {
			fmt.Printf("  %s\n", text.Truncate(frag.Content, 120))
		}
		if snap != nil {
			fmt.Printf("  *** SNAP: entropy fell %.4f\n", snap.Delta)
		}

	case "r":
		n := 10
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		walkVerbose(eng, n)

	case "w":
		frag := eng.Current()
		if frag == nil {
			fmt.Println("cursor points nowhere")
			return
		}
		fmt.Printf("%s (visits %d, hue %.2f)\n", frag.ID, frag.Visits, frag.Hue)
		fmt.Printf("  %s\n", text.Truncate(frag.Content, 200))

	case "n":
		cur := eng.State().Current
		for _, id := range eng.Graph().Neighbors(cur) {
			frag := eng.Graph().Fragment(id)
			fmt.Printf("  %s: %s\n", id, text.Truncate(frag.Content, 80))
		}

	case "m":
		if len(fields) < 2 {
			fmt.Println("usage: m QUERY")
			return
		}
		query := strings.Join(fields[1:], " ")
		vec, err := embedder.Embed(query)
		if err != nil {
			fmt.Println("embed error:", err)
			return
		}
		matches, err := eng.Lookup(vec, 5)
		if err != nil {
			fmt.Println("lookup error:", err)
			return
		}
		for _, m := range matches {
			fmt.Printf("  [%.3f] %s: %s\n", m.Similarity, m.ID, text.Truncate(m.Content, 80))
		}

	case "snaps":
		printSnaps(eng)

	case "path":
		fmt.Println(strings.Join(eng.State().Path, " -> "))

	default:
		fmt.Println("commands: s, r N, w, n, m QUERY, snaps, path, q")
	}
}

func printSnaps(eng *core.Engine) {
	snaps := eng.State().Snaps
	if len(snaps) == 0 {
		fmt.Println("no snap events recorded")
		return
	}
	for _, snap := range snaps {
		fmt.Printf("  step %d (delta %.4f) at %s\n", snap.Step, snap.Delta, snap.Node)
		fmt.Printf("    %q\n", snap.Preview)
	}
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
