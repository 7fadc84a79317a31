package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
	"github.com/lawnchairsociety/hexcrawl/internal/layout"
)

// getDualTestDatabases returns both SQLite and PostgreSQL databases for testing.
// If PostgreSQL is not available, it returns only SQLite.
func getDualTestDatabases(t *testing.T) map[string]*Database {
	dbs := make(map[string]*Database)

	// Always include SQLite
	sqliteDB, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open SQLite database: %v", err)
	}
	dbs["sqlite"] = sqliteDB

	// Include PostgreSQL if available
	if pgConfig := getPostgresTestConfig(); pgConfig != nil {
		pgDB, err := OpenWithConfig(*pgConfig)
		if err != nil {
			t.Logf("PostgreSQL not available: %v", err)
		} else {
			clearLayouts(t, pgDB)
			dbs["postgres"] = pgDB
		}
	}

	t.Cleanup(func() {
		for name, db := range dbs {
			if name == "postgres" {
				clearLayouts(t, db)
			}
			db.Close()
		}
	})

	return dbs
}

// testSnapshot generates a full layout for the seed.
func testSnapshot(t *testing.T, seed int64) *layout.Snapshot {
	t.Helper()
	cfg := dungeon.DefaultConfig()
	cfg.Seed = seed
	cfg.StepDelay = 0

	g, err := dungeon.NewGenerator(cfg, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if err := g.RunToCompletion(); err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	return layout.Capture(g.World(), cfg)
}

// TestDual_SaveAndLoadLayout tests the archive round trip on both databases
func TestDual_SaveAndLoadLayout(t *testing.T) {
	snap := testSnapshot(t, 9)

	for name, db := range getDualTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			id, err := db.SaveLayout(snap)
			if err != nil {
				t.Fatalf("SaveLayout failed: %v", err)
			}
			if id == "" {
				t.Fatal("SaveLayout returned an empty id")
			}

			loaded, err := db.LoadLayout(id)
			if err != nil {
				t.Fatalf("LoadLayout failed: %v", err)
			}
			if loaded.Seed != snap.Seed || loaded.RoomSize != snap.RoomSize || loaded.MaxRings != snap.MaxRings {
				t.Errorf("header = seed %d size %d rings %d", loaded.Seed, loaded.RoomSize, loaded.MaxRings)
			}
			if !loaded.GeneratedAt.Equal(snap.GeneratedAt) {
				t.Errorf("GeneratedAt = %v, want %v", loaded.GeneratedAt, snap.GeneratedAt)
			}
			if len(loaded.Rooms) != len(snap.Rooms) || len(loaded.Hallways) != len(snap.Hallways) {
				t.Fatalf("loaded %d rooms/%d hallways, want %d/%d",
					len(loaded.Rooms), len(loaded.Hallways), len(snap.Rooms), len(snap.Hallways))
			}
			for i, room := range loaded.Rooms {
				if len(room.Disks) != len(snap.Rooms[i].Disks) {
					t.Errorf("room %s has %d disks, want %d", room.Coord, len(room.Disks), len(snap.Rooms[i].Disks))
				}
				// Cells span several batched INSERTs.
				if len(room.Cells) != len(snap.Rooms[i].Cells) {
					t.Errorf("room %s has %d cells, want %d", room.Coord, len(room.Cells), len(snap.Rooms[i].Cells))
				}
			}
			if loaded.Fingerprint() != snap.Fingerprint() {
				t.Error("fingerprint changed across the archive")
			}
		})
	}
}

// TestDual_DuplicateLayout tests that archiving the same layout twice is detected
func TestDual_DuplicateLayout(t *testing.T) {
	snap := testSnapshot(t, 10)

	for name, db := range getDualTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			id, err := db.SaveLayout(snap)
			if err != nil {
				t.Fatalf("SaveLayout failed: %v", err)
			}

			again, err := db.SaveLayout(snap)
			if !errors.Is(err, ErrLayoutExists) {
				t.Fatalf("second SaveLayout error = %v, want ErrLayoutExists", err)
			}
			if again != id {
				t.Errorf("second SaveLayout id = %q, want %q", again, id)
			}

			found, err := db.FindLayout(snap.Fingerprint())
			if err != nil || found != id {
				t.Errorf("FindLayout = %q, %v; want %q", found, err, id)
			}
			if _, err := db.FindLayout("nope"); !errors.Is(err, ErrLayoutNotFound) {
				t.Errorf("FindLayout(nope) error = %v, want ErrLayoutNotFound", err)
			}
		})
	}
}

// TestDual_ListLayouts tests summaries carry room and hallway counts
func TestDual_ListLayouts(t *testing.T) {
	a := testSnapshot(t, 11)
	b := testSnapshot(t, 12)

	for name, db := range getDualTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			ids := map[string]*layout.Snapshot{}
			for _, snap := range []*layout.Snapshot{a, b} {
				id, err := db.SaveLayout(snap)
				if err != nil {
					t.Fatalf("SaveLayout failed: %v", err)
				}
				ids[id] = snap
			}

			list, err := db.ListLayouts()
			if err != nil {
				t.Fatalf("ListLayouts failed: %v", err)
			}
			if len(list) != 2 {
				t.Fatalf("ListLayouts returned %d rows, want 2", len(list))
			}
			for _, s := range list {
				snap, ok := ids[s.ID]
				if !ok {
					t.Errorf("unexpected layout %s", s.ID)
					continue
				}
				if s.Seed != snap.Seed || s.Rooms != len(snap.Rooms) || s.Hallways != len(snap.Hallways) {
					t.Errorf("summary %+v does not match snapshot", s)
				}
				if s.Fingerprint != snap.Fingerprint() {
					t.Errorf("summary fingerprint %q, want %q", s.Fingerprint, snap.Fingerprint())
				}
			}
		})
	}
}

// TestDual_DeleteLayout tests deletion removes every row
func TestDual_DeleteLayout(t *testing.T) {
	snap := testSnapshot(t, 13)

	for name, db := range getDualTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			id, err := db.SaveLayout(snap)
			if err != nil {
				t.Fatalf("SaveLayout failed: %v", err)
			}
			if err := db.DeleteLayout(id); err != nil {
				t.Fatalf("DeleteLayout failed: %v", err)
			}
			if _, err := db.LoadLayout(id); !errors.Is(err, ErrLayoutNotFound) {
				t.Errorf("LoadLayout after delete error = %v, want ErrLayoutNotFound", err)
			}
			if err := db.DeleteLayout(id); !errors.Is(err, ErrLayoutNotFound) {
				t.Errorf("second DeleteLayout error = %v, want ErrLayoutNotFound", err)
			}

			var cells int
			if err := db.db.QueryRow(db.qb.Build("SELECT COUNT(*) FROM layout_cells WHERE layout_id = ?"), id).Scan(&cells); err != nil {
				t.Fatalf("count query failed: %v", err)
			}
			if cells != 0 {
				t.Errorf("%d cells left after delete", cells)
			}

			// The fingerprint is free again.
			if _, err := db.SaveLayout(snap); err != nil {
				t.Errorf("SaveLayout after delete failed: %v", err)
			}
		})
	}
}
