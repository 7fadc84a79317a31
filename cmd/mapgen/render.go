package main

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
	"github.com/lawnchairsociety/hexcrawl/internal/hex"
	"github.com/lawnchairsociety/hexcrawl/internal/layout"
	"github.com/lawnchairsociety/hexcrawl/internal/walls"
)

// offset is an odd-r offset position: odd rows are shifted half a cell right.
type offset struct {
	Col, Row int
}

func toOffset(c hex.Coord) offset {
	return offset{Col: c.Q + (c.R-(c.R&1))/2, Row: c.R}
}

// cellSymbol returns the map glyph for one cell.
func cellSymbol(kind dungeon.RoleKind, origin bool) byte {
	switch {
	case origin:
		return 'o'
	case kind == dungeon.RoleRoom:
		return '#'
	case kind == dungeon.RoleHallway:
		return '.'
	default:
		return ' '
	}
}

func renderMap(output *strings.Builder, snap *layout.Snapshot) {
	roles := snap.Roles()
	if len(roles) == 0 {
		output.WriteString("  (No cells to display)\n")
		return
	}

	origins := make(map[hex.Coord]bool, len(snap.Rooms))
	for _, r := range snap.Rooms {
		origins[r.Origin] = true
	}

	// Find bounds
	grid := make(map[offset]byte, len(roles))
	minCol, maxCol, minRow, maxRow := 1<<30, -1<<30, 1<<30, -1<<30
	for c, kind := range roles {
		o := toOffset(c)
		grid[o] = cellSymbol(kind, origins[c])
		minCol, maxCol = min(minCol, o.Col), max(maxCol, o.Col)
		minRow, maxRow = min(minRow, o.Row), max(maxRow, o.Row)
	}

	// Each cell is 2 chars wide; odd rows start one char in.
	for row := minRow; row <= maxRow; row++ {
		var line strings.Builder
		if row&1 == 1 {
			line.WriteByte(' ')
		}
		for col := minCol; col <= maxCol; col++ {
			sym, ok := grid[offset{Col: col, Row: row}]
			if !ok {
				sym = ' '
			}
			line.WriteByte(sym)
			line.WriteByte(' ')
		}
		output.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}
}

func renderRoomDetails(output *strings.Builder, snap *layout.Snapshot) {
	output.WriteString("Room Details:\n")

	links := make(map[hex.Coord]int)
	for _, h := range snap.Hallways {
		links[h.From]++
		links[h.To]++
	}

	for _, r := range snap.Rooms {
		details := fmt.Sprintf("  [%d] %-8s origin %-9s %3d cells  %d lobes  %d hallways",
			r.Ring, r.Coord.String(), r.Origin.String(), len(r.Cells), len(r.Disks), links[r.Coord])
		output.WriteString(details + "\n")
	}
}

// wallHistogram counts the edge type of every occupied cell.
func wallHistogram(snap *layout.Snapshot, table *walls.Table) map[walls.EdgeType]int {
	roles := snap.Roles()
	counts := make(map[walls.EdgeType]int)
	for c := range roles {
		var open [walls.Sides]bool
		for i, n := range c.Neighbors() {
			_, known := roles[n]
			open[i] = !known
		}
		counts[table.Resolve(walls.MaskFromSides(open)).Type]++
	}
	return counts
}

func renderWallHistogram(output *strings.Builder, snap *layout.Snapshot, table *walls.Table) {
	output.WriteString("Wall Edges:\n")

	counts := wallHistogram(snap, table)
	peak := 0
	for _, n := range counts {
		peak = max(peak, n)
	}
	for _, et := range walls.EdgeTypes() {
		n := counts[et]
		if n == 0 {
			continue
		}
		bar := strings.Repeat("*", max(1, n*40/peak))
		output.WriteString(fmt.Sprintf("  %-18s %5d %s\n", et.String(), n, bar))
	}
}

func getLegend() string {
	return `
Legend:
  o   Room origin
  #   Room floor
  .   Hallway

  Rows use odd-r offset layout: odd rows are shifted half a cell right.
`
}
