package dungeon

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/lawnchairsociety/hexcrawl/internal/hex"
	"github.com/lawnchairsociety/hexcrawl/internal/walls"
)

// Tile is the render description of one cell.
type Tile struct {
	Coord    hex.Coord  `json:"coord"`
	Position hex.Vec3   `json:"position"`
	Mask     walls.Mask `json:"mask"`
	Edge     walls.Edge `json:"edge"`
	Variant  int        `json:"variant"`
}

// Tiles describes each coordinate against the current index. Variants are
// derived from the seed and the coordinate alone, so a cell keeps its
// variant however and whenever it is queried.
func (w *World) Tiles(coords []hex.Coord) []Tile {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Tile, 0, len(coords))
	for _, c := range coords {
		mask := w.wallMask(c)
		out = append(out, Tile{
			Coord:    c,
			Position: c.ToWorld(0, w.tileSize),
			Mask:     mask,
			Edge:     w.table.Resolve(mask),
			Variant:  w.variant(c),
		})
	}
	return out
}

func (w *World) variant(c hex.Coord) int {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(w.seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(c.Q)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(c.R)))
	sum := blake2b.Sum256(buf[:])

	// Top 53 bits give a uniform float in [0, 1).
	selection := float64(binary.LittleEndian.Uint64(sum[:8])>>11) / (1 << 53)
	return w.variants.Pick(selection)
}
