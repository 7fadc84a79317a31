package dungeon

import (
	"math"
	"sync"

	"github.com/lawnchairsociety/hexcrawl/internal/hex"
	"github.com/lawnchairsociety/hexcrawl/internal/walls"
	"github.com/lawnchairsociety/hexcrawl/internal/weighted"
)

// World is the cell and room index built by a Generator. Only the
// generator mutates it, holding the write lock for a whole ring step, so
// readers never observe a partial step.
type World struct {
	mu sync.RWMutex

	seed     int64
	tileSize float64
	table    *walls.Table
	variants *weighted.Chooser[int]

	cells    map[hex.Coord]CellRole
	rooms    map[hex.Coord]*Room
	roomList []*Room
	hallways map[HallwayKey]*Hallway
	hallList []*Hallway
}

func newWorld(cfg Config, table *walls.Table) (*World, error) {
	variants, err := cfg.variantChooser()
	if err != nil {
		return nil, err
	}
	return &World{
		seed:     cfg.Seed,
		tileSize: cfg.TileSize,
		table:    table,
		variants: variants,
		cells:    make(map[hex.Coord]CellRole),
		rooms:    make(map[hex.Coord]*Room),
		hallways: make(map[HallwayKey]*Hallway),
	}, nil
}

// CellRoleAt returns the role of a fine-grid cell, or false for an empty
// cell.
func (w *World) CellRoleAt(c hex.Coord) (CellRole, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	role, ok := w.cells[c]
	if !ok {
		return CellRole{Kind: RoleEmpty}, false
	}
	if role.Hallways != nil {
		role.Hallways = append([]*Hallway(nil), role.Hallways...)
	}
	return role, true
}

// Occupied reports whether c holds any role.
func (w *World) Occupied(c hex.Coord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.cells[c]
	return ok
}

// RoomAt returns the room at a coarse room coordinate.
func (w *World) RoomAt(rc hex.Coord) (*Room, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.rooms[rc]
	return r, ok
}

// HallwayBetween returns the hallway joining two rooms in either direction.
func (w *World) HallwayBetween(a, b hex.Coord) (*Hallway, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if h, ok := w.hallways[HallwayKey{From: a, To: b}]; ok {
		return h, true
	}
	h, ok := w.hallways[HallwayKey{From: b, To: a}]
	return h, ok
}

// Rooms returns every room in spawn order.
func (w *World) Rooms() []*Room {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]*Room(nil), w.roomList...)
}

// RoomsInRing returns the rooms of one ring in spawn order.
func (w *World) RoomsInRing(ring int) []*Room {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.roomsInRing(ring)
}

func (w *World) roomsInRing(ring int) []*Room {
	var out []*Room
	for _, r := range w.roomList {
		if r.Ring == ring {
			out = append(out, r)
		}
	}
	return out
}

// Hallways returns every hallway in carve order.
func (w *World) Hallways() []*Hallway {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]*Hallway(nil), w.hallList...)
}

// CellCount returns the number of cells holding a role.
func (w *World) CellCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.cells)
}

// Counts returns the room, hallway and cell totals under one lock.
func (w *World) Counts() (rooms, hallways, cells int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.roomList), len(w.hallList), len(w.cells)
}

// TileSize returns the grid to world scale.
func (w *World) TileSize() float64 {
	return w.tileSize
}

// NearestUnvisitedRoom returns the room whose origin is closest to from on
// the XZ plane, ignoring rooms in visited. maxWorldDistance <= 0 means no
// limit. Ties go to the earlier spawned room.
func (w *World) NearestUnvisitedRoom(from hex.Vec3, visited map[hex.Coord]bool, maxWorldDistance float64) (*Room, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	limit := math.Inf(1)
	if maxWorldDistance > 0 {
		limit = maxWorldDistance
	}

	var best *Room
	bestDist := math.Inf(1)
	for _, r := range w.roomList {
		if visited[r.Coord] {
			continue
		}
		d := r.Origin.ToWorld(from.Y, w.tileSize).PlanarDistance(from)
		if d > limit || d >= bestDist {
			continue
		}
		best, bestDist = r, d
	}
	return best, best != nil
}

// WallMask marks each side of c whose neighbor holds no role.
func (w *World) WallMask(c hex.Coord) walls.Mask {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.wallMask(c)
}

func (w *World) wallMask(c hex.Coord) walls.Mask {
	var open [walls.Sides]bool
	for i, n := range c.Neighbors() {
		_, known := w.cells[n]
		open[i] = !known
	}
	return walls.MaskFromSides(open)
}

// claim records a room cell. The caller holds the write lock and has
// checked the cell is free.
func (w *World) claim(c hex.Coord, r *Room) {
	w.cells[c] = CellRole{Kind: RoleRoom, Room: r}
}

func (w *World) addRoom(r *Room) {
	w.rooms[r.Coord] = r
	w.roomList = append(w.roomList, r)
}

// addHallway commits a hallway, merging it into cells that already carry
// other hallways.
func (w *World) addHallway(h *Hallway) {
	for _, c := range h.Coords {
		role := w.cells[c]
		role.Kind = RoleHallway
		role.Hallways = append(role.Hallways, h)
		w.cells[c] = role
	}
	w.hallways[h.Key()] = h
	w.hallList = append(w.hallList, h)
}
