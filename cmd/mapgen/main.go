package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
	"github.com/lawnchairsociety/hexcrawl/internal/layout"
	"github.com/lawnchairsociety/hexcrawl/internal/walls"
)

func main() {
	seed := flag.Int64("seed", 1, "Generation seed")
	rings := flag.Int("rings", -1, "Rings to generate (-1 for the default)")
	inputFile := flag.String("input", "", "Render this layout snapshot instead of generating")
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	yamlFile := flag.String("yaml", "", "Also write the layout snapshot to this file")
	showLegend := flag.Bool("legend", true, "Show legend")
	showWalls := flag.Bool("walls", false, "Show a histogram of wall edge types")
	showRooms := flag.Bool("rooms", true, "List rooms below the map")
	flag.Parse()

	snap, err := loadOrGenerate(*inputFile, *seed, *rings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *yamlFile != "" {
		if err := snap.Save(*yamlFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("Hex Dungeon (Seed: %d, Rings: %d, Room Size: %d)\n", snap.Seed, snap.MaxRings, snap.RoomSize))
	output.WriteString(fmt.Sprintf("Generated: %s\n", snap.GeneratedAt.Format("2006-01-02 15:04:05")))
	output.WriteString(fmt.Sprintf("Rooms: %d  Hallways: %d  Cells: %d\n", len(snap.Rooms), len(snap.Hallways), snap.CellCount()))
	output.WriteString(fmt.Sprintf("Fingerprint: %s\n", snap.Fingerprint()))
	output.WriteString(strings.Repeat("=", 60) + "\n\n")

	renderMap(&output, snap)

	if *showRooms {
		output.WriteString("\n")
		renderRoomDetails(&output, snap)
	}

	if *showWalls {
		table, err := walls.Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building wall table: %v\n", err)
			os.Exit(1)
		}
		output.WriteString("\n")
		renderWallHistogram(&output, snap, table)
	}

	if *showLegend {
		output.WriteString(getLegend())
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(output.String())
	}
}

// loadOrGenerate reads the snapshot at path, or runs a generator to
// completion when path is empty.
func loadOrGenerate(path string, seed int64, rings int) (*layout.Snapshot, error) {
	if path != "" {
		return layout.Load(path)
	}

	cfg := dungeon.DefaultConfig()
	cfg.Seed = seed
	cfg.StepDelay = 0
	if rings >= 0 {
		cfg.MaxRings = rings
	}

	gen, err := dungeon.NewGenerator(cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := gen.RunToCompletion(); err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	return layout.Capture(gen.World(), cfg), nil
}
