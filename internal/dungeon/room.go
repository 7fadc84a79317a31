package dungeon

import (
	"github.com/lawnchairsociety/hexcrawl/internal/hex"
)

// Disk is one lobe carved into a room footprint.
type Disk struct {
	Center hex.Coord `json:"center" yaml:"center"`
	Radius int       `json:"radius" yaml:"radius"`
}

// Room is a carved region of the fine grid, keyed by its coarse ring
// coordinate. Rooms are never modified after the step that created them.
type Room struct {
	Coord  hex.Coord
	Ring   int
	Origin hex.Coord
	Disks  []Disk

	// Coords lists the room's cells in carve order.
	Coords []hex.Coord

	cells map[hex.Coord]struct{}
}

func newRoom(rc hex.Coord, ring, roomSize int) *Room {
	return &Room{
		Coord:  rc,
		Ring:   ring,
		Origin: rc.Scale(roomSize),
		cells:  make(map[hex.Coord]struct{}),
	}
}

func (r *Room) add(c hex.Coord) {
	r.Coords = append(r.Coords, c)
	r.cells[c] = struct{}{}
}

// Contains reports whether c is one of the room's cells.
func (r *Room) Contains(c hex.Coord) bool {
	_, ok := r.cells[c]
	return ok
}

// Size returns the number of cells in the room.
func (r *Room) Size() int {
	return len(r.Coords)
}

// HallwayKey identifies a hallway by the coarse coordinates of the rooms it
// joins.
type HallwayKey struct {
	From hex.Coord
	To   hex.Coord
}

// Hallway is the carved path between two rooms. Coords never include a room
// cell.
type Hallway struct {
	From   *Room
	To     *Room
	Coords []hex.Coord
}

// Key returns the hallway's identifying room pair.
func (h *Hallway) Key() HallwayKey {
	return HallwayKey{From: h.From.Coord, To: h.To.Coord}
}

// RoleKind classifies a fine-grid cell.
type RoleKind int

const (
	RoleEmpty RoleKind = iota
	RoleRoom
	RoleHallway
)

// String returns the string representation of a RoleKind
func (k RoleKind) String() string {
	switch k {
	case RoleEmpty:
		return "empty"
	case RoleRoom:
		return "room"
	case RoleHallway:
		return "hallway"
	default:
		return "unknown"
	}
}

// CellRole is what a cell belongs to. Room is set for RoleRoom; Hallways
// lists every hallway crossing the cell for RoleHallway.
type CellRole struct {
	Kind     RoleKind
	Room     *Room
	Hallways []*Hallway
}
