package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
	"github.com/lawnchairsociety/hexcrawl/internal/hex"
	"github.com/lawnchairsociety/hexcrawl/internal/layout"
)

var (
	// ErrLayoutNotFound is returned when no layout has the requested ID.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrLayoutExists is returned by SaveLayout when a layout with the same
	// fingerprint is already archived.
	ErrLayoutExists = errors.New("layout already archived")
)

// LayoutSummary is one row of ListLayouts.
type LayoutSummary struct {
	ID          string
	Seed        int64
	RoomSize    int
	MaxRings    int
	Fingerprint string
	GeneratedAt time.Time
	CreatedAt   time.Time
	Rooms       int
	Hallways    int
}

// SaveLayout archives a snapshot in one transaction and returns its new ID.
// If the same layout is already archived, the existing ID is returned along
// with ErrLayoutExists.
func (d *Database) SaveLayout(snap *layout.Snapshot) (string, error) {
	id := uuid.NewString()
	fingerprint := snap.Fingerprint()

	err := d.saveLayout(id, fingerprint, snap)
	if err == nil {
		return id, nil
	}
	if !d.dialect.IsDuplicateKeyError(err) {
		return "", err
	}

	existing, lookupErr := d.FindLayout(fingerprint)
	if lookupErr != nil {
		return "", fmt.Errorf("duplicate layout lookup: %w", lookupErr)
	}
	return existing, ErrLayoutExists
}

func (d *Database) saveLayout(id, fingerprint string, snap *layout.Snapshot) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(d.qb.Build(`
		INSERT INTO layouts (id, seed, room_size, max_rings, fingerprint, generated_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		id, snap.Seed, snap.RoomSize, snap.MaxRings, fingerprint,
		snap.GeneratedAt.Unix(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert layout: %w", err)
	}

	var rooms, disks, cells, halls, hallCells [][]any
	for i, room := range snap.Rooms {
		rooms = append(rooms, []any{id, i, room.Coord.Q, room.Coord.R, room.Ring, room.Origin.Q, room.Origin.R})
		for j, disk := range room.Disks {
			disks = append(disks, []any{id, i, j, disk.Center.Q, disk.Center.R, disk.Radius})
		}
		for j, c := range room.Cells {
			cells = append(cells, []any{id, i, j, c.Q, c.R})
		}
	}
	for i, h := range snap.Hallways {
		halls = append(halls, []any{id, i, h.From.Q, h.From.R, h.To.Q, h.To.R})
		for j, c := range h.Cells {
			hallCells = append(hallCells, []any{id, i, j, c.Q, c.R})
		}
	}

	batches := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"layout_rooms", []string{"layout_id", "seq", "q", "r", "ring", "origin_q", "origin_r"}, rooms},
		{"layout_room_disks", []string{"layout_id", "room_seq", "seq", "center_q", "center_r", "radius"}, disks},
		{"layout_cells", []string{"layout_id", "room_seq", "seq", "q", "r"}, cells},
		{"layout_hallways", []string{"layout_id", "seq", "from_q", "from_r", "to_q", "to_r"}, halls},
		{"layout_hallway_cells", []string{"layout_id", "hallway_seq", "seq", "q", "r"}, hallCells},
	}
	for _, b := range batches {
		if err := d.insertRows(tx, b.table, b.columns, b.rows); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", b.table, err)
		}
	}

	return tx.Commit()
}

// insertRows writes rows in as few statements as the dialect's parameter
// limit allows.
func (d *Database) insertRows(tx *sql.Tx, table string, columns []string, rows [][]any) error {
	per := d.qb.RowsPerStatement(len(columns))
	args := make([]any, 0, per*len(columns))
	for len(rows) > 0 {
		n := min(per, len(rows))
		args = args[:0]
		for _, row := range rows[:n] {
			args = append(args, row...)
		}
		if _, err := tx.Exec(d.qb.Insert(table, columns, n), args...); err != nil {
			return err
		}
		rows = rows[n:]
	}
	return nil
}

// FindLayout returns the ID of the archived layout with the fingerprint.
func (d *Database) FindLayout(fingerprint string) (string, error) {
	var id string
	err := d.db.QueryRow(d.qb.Build(`SELECT id FROM layouts WHERE fingerprint = ?`), fingerprint).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrLayoutNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find layout: %w", err)
	}
	return id, nil
}

// LoadLayout rebuilds an archived snapshot.
func (d *Database) LoadLayout(id string) (*layout.Snapshot, error) {
	snap := &layout.Snapshot{}
	var generatedAt int64
	err := d.db.QueryRow(d.qb.Build(`SELECT seed, room_size, max_rings, generated_at FROM layouts WHERE id = ?`), id).
		Scan(&snap.Seed, &snap.RoomSize, &snap.MaxRings, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLayoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	snap.GeneratedAt = time.Unix(generatedAt, 0).UTC()

	// Each query is drained before the next; SQLite runs on one connection.
	err = d.each(`SELECT q, r, ring, origin_q, origin_r FROM layout_rooms WHERE layout_id = ? ORDER BY seq`, id, func(rows *sql.Rows) error {
		var room layout.RoomData
		if err := rows.Scan(&room.Coord.Q, &room.Coord.R, &room.Ring, &room.Origin.Q, &room.Origin.R); err != nil {
			return err
		}
		snap.Rooms = append(snap.Rooms, room)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	err = d.each(`SELECT room_seq, center_q, center_r, radius FROM layout_room_disks WHERE layout_id = ? ORDER BY room_seq, seq`, id, func(rows *sql.Rows) error {
		var seq int
		var disk dungeon.Disk
		if err := rows.Scan(&seq, &disk.Center.Q, &disk.Center.R, &disk.Radius); err != nil {
			return err
		}
		if seq < 0 || seq >= len(snap.Rooms) {
			return fmt.Errorf("disk references missing room %d", seq)
		}
		snap.Rooms[seq].Disks = append(snap.Rooms[seq].Disks, disk)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load disks: %w", err)
	}

	err = d.each(`SELECT room_seq, q, r FROM layout_cells WHERE layout_id = ? ORDER BY room_seq, seq`, id, func(rows *sql.Rows) error {
		var seq int
		var c hex.Coord
		if err := rows.Scan(&seq, &c.Q, &c.R); err != nil {
			return err
		}
		if seq < 0 || seq >= len(snap.Rooms) {
			return fmt.Errorf("cell references missing room %d", seq)
		}
		snap.Rooms[seq].Cells = append(snap.Rooms[seq].Cells, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load room cells: %w", err)
	}

	err = d.each(`SELECT from_q, from_r, to_q, to_r FROM layout_hallways WHERE layout_id = ? ORDER BY seq`, id, func(rows *sql.Rows) error {
		var h layout.HallwayData
		if err := rows.Scan(&h.From.Q, &h.From.R, &h.To.Q, &h.To.R); err != nil {
			return err
		}
		snap.Hallways = append(snap.Hallways, h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load hallways: %w", err)
	}

	err = d.each(`SELECT hallway_seq, q, r FROM layout_hallway_cells WHERE layout_id = ? ORDER BY hallway_seq, seq`, id, func(rows *sql.Rows) error {
		var seq int
		var c hex.Coord
		if err := rows.Scan(&seq, &c.Q, &c.R); err != nil {
			return err
		}
		if seq < 0 || seq >= len(snap.Hallways) {
			return fmt.Errorf("cell references missing hallway %d", seq)
		}
		snap.Hallways[seq].Cells = append(snap.Hallways[seq].Cells, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load hallway cells: %w", err)
	}

	return snap, nil
}

// ListLayouts returns every archived layout, newest first.
func (d *Database) ListLayouts() ([]LayoutSummary, error) {
	var out []LayoutSummary
	err := d.each(`
		SELECT l.id, l.seed, l.room_size, l.max_rings, l.fingerprint, l.generated_at, l.created_at,
			(SELECT COUNT(*) FROM layout_rooms r WHERE r.layout_id = l.id),
			(SELECT COUNT(*) FROM layout_hallways h WHERE h.layout_id = l.id)
		FROM layouts l
		ORDER BY l.created_at DESC, l.id`, nil, func(rows *sql.Rows) error {
		var s LayoutSummary
		var generatedAt, createdAt int64
		if err := rows.Scan(&s.ID, &s.Seed, &s.RoomSize, &s.MaxRings, &s.Fingerprint,
			&generatedAt, &createdAt, &s.Rooms, &s.Hallways); err != nil {
			return err
		}
		s.GeneratedAt = time.Unix(generatedAt, 0).UTC()
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	return out, nil
}

// DeleteLayout removes a layout and all of its rows.
func (d *Database) DeleteLayout(id string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	children := []string{"layout_hallway_cells", "layout_hallways", "layout_cells", "layout_room_disks", "layout_rooms"}
	for _, table := range children {
		if _, err := tx.Exec(d.qb.Build(`DELETE FROM `+table+` WHERE layout_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	result, err := tx.Exec(d.qb.Build(`DELETE FROM layouts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrLayoutNotFound
	}
	return tx.Commit()
}

// each runs a query and calls fn for every row. A nil arg runs the query
// without parameters.
func (d *Database) each(query string, arg any, fn func(*sql.Rows) error) error {
	var args []any
	if arg != nil {
		args = append(args, arg)
	}
	rows, err := d.db.Query(d.qb.Build(query), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
