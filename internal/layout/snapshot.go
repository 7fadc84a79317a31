// Package layout serializes generated dungeons to YAML snapshots.
package layout

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
	"github.com/lawnchairsociety/hexcrawl/internal/hex"
)

// Snapshot is the serialized form of a generated world
type Snapshot struct {
	Seed        int64         `yaml:"seed"`
	RoomSize    int           `yaml:"room_size"`
	MaxRings    int           `yaml:"max_rings"`
	GeneratedAt time.Time     `yaml:"generated_at"`
	Rooms       []RoomData    `yaml:"rooms"`
	Hallways    []HallwayData `yaml:"hallways"`
}

// RoomData represents a serialized room
type RoomData struct {
	Coord  hex.Coord      `yaml:"coord,flow"`
	Ring   int            `yaml:"ring"`
	Origin hex.Coord      `yaml:"origin,flow"`
	Disks  []dungeon.Disk `yaml:"disks"`
	Cells  Cells          `yaml:"cells"`
}

// HallwayData represents a serialized hallway
type HallwayData struct {
	From  hex.Coord `yaml:"from,flow"`
	To    hex.Coord `yaml:"to,flow"`
	Cells Cells     `yaml:"cells"`
}

// Capture copies the world's rooms and hallways in spawn order.
func Capture(w *dungeon.World, cfg dungeon.Config) *Snapshot {
	snap := &Snapshot{
		Seed:        cfg.Seed,
		RoomSize:    cfg.RoomSize,
		MaxRings:    cfg.MaxRings,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}

	for _, room := range w.Rooms() {
		snap.Rooms = append(snap.Rooms, RoomData{
			Coord:  room.Coord,
			Ring:   room.Ring,
			Origin: room.Origin,
			Disks:  slices.Clone(room.Disks),
			Cells:  Cells(slices.Clone(room.Coords)),
		})
	}
	for _, h := range w.Hallways() {
		snap.Hallways = append(snap.Hallways, HallwayData{
			From:  h.From.Coord,
			To:    h.To.Coord,
			Cells: Cells(slices.Clone(h.Coords)),
		})
	}
	return snap
}

// Save writes the snapshot as YAML, creating the directory if needed.
func (s *Snapshot) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create layout directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse layout YAML: %w", err)
	}
	return &snap, nil
}

// CellCount returns the number of distinct cells in the snapshot.
func (s *Snapshot) CellCount() int {
	return len(s.Roles())
}

// Roles rebuilds the cell classification. Room cells win over hallway
// cells, matching the generator's index.
func (s *Snapshot) Roles() map[hex.Coord]dungeon.RoleKind {
	roles := make(map[hex.Coord]dungeon.RoleKind)
	for _, h := range s.Hallways {
		for _, c := range h.Cells {
			roles[c] = dungeon.RoleHallway
		}
	}
	for _, r := range s.Rooms {
		for _, c := range r.Cells {
			roles[c] = dungeon.RoleRoom
		}
	}
	return roles
}

// Fingerprint hashes the room and hallway cell sets with BLAKE2b-256. It
// ignores GeneratedAt and the order rooms, hallways and cells are listed
// in, so two runs with the same seed share a fingerprint.
func (s *Snapshot) Fingerprint() string {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only a key longer than 64 bytes fails.
		panic(err)
	}

	rooms := slices.Clone(s.Rooms)
	slices.SortFunc(rooms, func(a, b RoomData) int { return compare(a.Coord, b.Coord) })
	for _, r := range rooms {
		fmt.Fprintf(h, "room %s ring %d\n", r.Coord, r.Ring)
		writeCells(h, r.Cells)
	}

	halls := slices.Clone(s.Hallways)
	slices.SortFunc(halls, func(a, b HallwayData) int {
		if c := compare(a.From, b.From); c != 0 {
			return c
		}
		return compare(a.To, b.To)
	})
	for _, hw := range halls {
		fmt.Fprintf(h, "hallway %s %s\n", hw.From, hw.To)
		writeCells(h, hw.Cells)
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}

func writeCells(w io.Writer, cells Cells) {
	sorted := slices.Clone(cells)
	slices.SortFunc(sorted, compare)
	for _, c := range sorted {
		fmt.Fprintf(w, "%s;", c)
	}
	fmt.Fprintln(w)
}

func compare(a, b hex.Coord) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
