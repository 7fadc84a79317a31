package dungeon

import (
	"testing"

	"github.com/lawnchairsociety/hexcrawl/internal/hex"
	"github.com/lawnchairsociety/hexcrawl/internal/walls"
)

func TestCellRoleAtEmpty(t *testing.T) {
	g, err := NewGenerator(testConfig(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	role, ok := g.World().CellRoleAt(hex.New(3, -1))
	if ok || role.Kind != RoleEmpty {
		t.Errorf("CellRoleAt on an empty world = %+v, %v", role, ok)
	}
	if m := g.World().WallMask(hex.Origin); m != 0b111111 {
		t.Errorf("WallMask on an empty world = %s, want all open", m)
	}
}

func TestHallwayRolesMerge(t *testing.T) {
	cfg := testConfig(1)
	w, err := newWorld(cfg, walls.MustBuild())
	if err != nil {
		t.Fatal(err)
	}

	a := newRoom(hex.New(0, 0), 0, cfg.RoomSize)
	b := newRoom(hex.New(1, 0), 1, cfg.RoomSize)
	c := newRoom(hex.New(0, 1), 1, cfg.RoomSize)
	shared := hex.New(5, 0)

	first := &Hallway{From: a, To: b, Coords: []hex.Coord{hex.New(4, 0), shared}}
	second := &Hallway{From: a, To: c, Coords: []hex.Coord{shared, hex.New(5, 1)}}
	w.addHallway(first)
	w.addHallway(second)

	role, ok := w.CellRoleAt(shared)
	if !ok || role.Kind != RoleHallway {
		t.Fatalf("shared cell role = %+v", role)
	}
	if len(role.Hallways) != 2 || role.Hallways[0] != first || role.Hallways[1] != second {
		t.Errorf("shared cell hallways = %v, want both in carve order", role.Hallways)
	}

	// The returned slice is a copy.
	role.Hallways[0] = nil
	again, _ := w.CellRoleAt(shared)
	if again.Hallways[0] != first {
		t.Error("mutating a returned role changed the index")
	}

	if n := len(w.Hallways()); n != 2 {
		t.Errorf("Hallways() = %d entries, want 2", n)
	}
	if w.CellCount() != 3 {
		t.Errorf("CellCount() = %d, want 3", w.CellCount())
	}
}

func TestNearestUnvisitedRoom(t *testing.T) {
	g := generate(t, testConfig(8))
	w := g.World()
	origin := hex.Origin.ToWorld(0, w.TileSize())

	room, ok := w.NearestUnvisitedRoom(origin, nil, 0)
	if !ok || room.Coord != hex.Origin {
		t.Fatalf("nearest to origin = %v, %v, want the origin room", room, ok)
	}

	// Ring 1 origins sit 12 cells out, which is 12*sqrt(3) ≈ 20.78 world units.
	visited := map[hex.Coord]bool{hex.Origin: true}
	if _, ok := w.NearestUnvisitedRoom(origin, visited, 20); ok {
		t.Error("found a room inside a radius that holds only visited rooms")
	}
	room, ok = w.NearestUnvisitedRoom(origin, visited, 21)
	if !ok || room.Ring != 1 {
		t.Fatalf("nearest unvisited = %v, %v, want a ring 1 room", room, ok)
	}

	all := make(map[hex.Coord]bool)
	for _, r := range w.Rooms() {
		all[r.Coord] = true
	}
	if _, ok := w.NearestUnvisitedRoom(origin, all, 0); ok {
		t.Error("found a room with every room visited")
	}

	// Height never affects planar distance.
	raised := origin
	raised.Y = 50
	if room, _ := w.NearestUnvisitedRoom(raised, nil, 1); room == nil || room.Coord != hex.Origin {
		t.Error("height changed the nearest room")
	}
}

func TestWallMaskAndTiles(t *testing.T) {
	g, err := NewGenerator(testConfig(6), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Step(); err != nil {
		t.Fatal(err)
	}
	w := g.World()
	room, _ := w.RoomAt(hex.Origin)

	// The first lobe has radius >= 1, so the origin is fully enclosed.
	if m := w.WallMask(room.Origin); m != 0 {
		t.Errorf("WallMask(origin) = %s, want no open sides", m)
	}
	far := hex.New(1000, 0)
	if m := w.WallMask(far); m != 0b111111 {
		t.Errorf("WallMask(far) = %s, want all open", m)
	}

	tiles := w.Tiles(room.Coords)
	if len(tiles) != room.Size() {
		t.Fatalf("Tiles returned %d entries for %d cells", len(tiles), room.Size())
	}
	open := 0
	for _, tile := range tiles {
		if tile.Mask != w.WallMask(tile.Coord) {
			t.Errorf("tile %s mask %s disagrees with WallMask", tile.Coord, tile.Mask)
		}
		if walls.Canonical(tile.Edge.Type).Rotate(tile.Edge.Rotation) != tile.Mask {
			t.Errorf("tile %s edge %s/%d does not rotate to %s", tile.Coord, tile.Edge.Type, tile.Edge.Rotation, tile.Mask)
		}
		if tile.Variant < 0 || tile.Variant >= len(g.Config().FloorVariantWeights) {
			t.Errorf("tile %s variant %d out of range", tile.Coord, tile.Variant)
		}
		if hex.FromWorld(tile.Position, w.TileSize()) != tile.Coord {
			t.Errorf("tile %s position %v does not map back", tile.Coord, tile.Position)
		}
		if tile.Mask.Count() > 0 {
			open++
		}
	}
	if open == 0 {
		t.Error("a finite room has no boundary cells")
	}
}

func TestTileVariantsAreStable(t *testing.T) {
	a := generate(t, testConfig(12)).World()
	b := generate(t, testConfig(12)).World()

	coords := []hex.Coord{hex.New(0, 0), hex.New(4, -2), hex.New(-30, 7), hex.New(100, 100)}
	first := a.Tiles(coords)
	reversed := []hex.Coord{coords[3], coords[2], coords[1], coords[0]}
	second := b.Tiles(reversed)
	for i := range coords {
		if first[i].Variant != second[len(coords)-1-i].Variant {
			t.Errorf("variant of %s changed between worlds or query order", coords[i])
		}
	}

	counts := make([]int, len(DefaultConfig().FloorVariantWeights))
	for _, tile := range a.Tiles(hex.NewSpiral(hex.Origin, 0, 20).Take(2000)) {
		counts[tile.Variant]++
	}
	// Weights 6:3:1 over ~1300 cells.
	if counts[0] <= counts[1] || counts[1] <= counts[2] || counts[2] == 0 {
		t.Errorf("variant distribution %v does not follow the weights", counts)
	}
}
