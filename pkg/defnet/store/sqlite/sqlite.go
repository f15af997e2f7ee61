// Package sqlite is the SQLite-backed store.Store implementation.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cellgrid/defnet/pkg/defnet"
	"github.com/cellgrid/defnet/pkg/defnet/store"
	"github.com/cellgrid/defnet/pkg/defnet/transform"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and initializes
// the schema.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	design TEXT,
	version TEXT,
	technology TEXT,
	units_per_micron INTEGER NOT NULL,
	units_default INTEGER NOT NULL DEFAULT 0,
	divider_char TEXT,
	bus_bit_chars TEXT,
	parsed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS instances (
	run_id TEXT NOT NULL,
	instance_id INTEGER NOT NULL,
	instance_name TEXT NOT NULL,
	cell_name TEXT NOT NULL,
	placed INTEGER NOT NULL DEFAULT 0,
	x INTEGER,
	y INTEGER,
	raw_x TEXT,
	raw_y TEXT,
	orientation TEXT,
	PRIMARY KEY(run_id, instance_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS instance_index (
	run_id TEXT NOT NULL,
	instance_name TEXT NOT NULL,
	instance_id INTEGER NOT NULL,
	PRIMARY KEY(run_id, instance_name),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS nets (
	run_id TEXT NOT NULL,
	net_id INTEGER NOT NULL,
	net_name TEXT NOT NULL,
	PRIMARY KEY(run_id, net_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS net_index (
	run_id TEXT NOT NULL,
	net_name TEXT NOT NULL,
	net_id INTEGER NOT NULL,
	PRIMARY KEY(run_id, net_name),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS net_connections (
	run_id TEXT NOT NULL,
	net_id INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	instance_name TEXT NOT NULL,
	pin_name TEXT NOT NULL,
	PRIMARY KEY(run_id, net_id, seq),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_design ON runs(design, parsed_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveDataset stores a dataset, replacing any run with the same id.
func (s *sqliteStore) SaveDataset(ctx context.Context, ds *defnet.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const runStmt = `
INSERT INTO runs (id, design, version, technology, units_per_micron, units_default, divider_char, bus_bit_chars, parsed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	design=excluded.design,
	version=excluded.version,
	technology=excluded.technology,
	units_per_micron=excluded.units_per_micron,
	units_default=excluded.units_default,
	divider_char=excluded.divider_char,
	bus_bit_chars=excluded.bus_bit_chars,
	parsed_at=excluded.parsed_at;
`
	_, err = tx.ExecContext(ctx, runStmt,
		ds.ID,
		ds.Header.Design,
		ds.Header.Version,
		ds.Header.Technology,
		ds.Header.Units.DatabaseUnitsPerMicron,
		boolToInt(ds.Header.Units.DefaultUsed),
		ds.Header.DividerChar,
		ds.Header.BusBitChars,
		ds.ParsedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	for _, table := range []string{"instances", "instance_index", "nets", "net_index", "net_connections"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE run_id=?", table), ds.ID); err != nil {
			return err
		}
	}

	if err := insertInstances(ctx, tx, ds); err != nil {
		return err
	}
	if err := insertNets(ctx, tx, ds); err != nil {
		return err
	}

	return tx.Commit()
}

func insertInstances(ctx context.Context, tx *sql.Tx, ds *defnet.Dataset) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO instances (run_id, instance_id, instance_name, cell_name, placed, x, y, raw_x, raw_y, orientation)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for id, info := range ds.IDToInstance {
		var placed int
		var x, y sql.NullInt64
		var rawX, rawY, orientation sql.NullString
		if p := info.Placement; p != nil {
			placed = 1
			orientation = sql.NullString{String: p.Orientation, Valid: true}
			if p.Numeric() {
				x = sql.NullInt64{Int64: int64(p.X), Valid: true}
				y = sql.NullInt64{Int64: int64(p.Y), Valid: true}
			} else {
				rawX = sql.NullString{String: p.RawX, Valid: true}
				rawY = sql.NullString{String: p.RawY, Valid: true}
			}
		}
		if _, err := stmt.ExecContext(ctx, ds.ID, id, info.InstanceName, info.CellName, placed, x, y, rawX, rawY, orientation); err != nil {
			return err
		}
	}

	idx, err := tx.PrepareContext(ctx, `INSERT INTO instance_index (run_id, instance_name, instance_id) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer idx.Close()

	for name, id := range ds.InstanceToID {
		if _, err := idx.ExecContext(ctx, ds.ID, name, id); err != nil {
			return err
		}
	}
	return nil
}

func insertNets(ctx context.Context, tx *sql.Tx, ds *defnet.Dataset) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO nets (run_id, net_id, net_name) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	connStmt, err := tx.PrepareContext(ctx, `
INSERT INTO net_connections (run_id, net_id, seq, instance_name, pin_name)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer connStmt.Close()

	for id, info := range ds.IDToNet {
		if _, err := stmt.ExecContext(ctx, ds.ID, id, info.NetName); err != nil {
			return err
		}
		for seq, conn := range info.Connections {
			if _, err := connStmt.ExecContext(ctx, ds.ID, id, seq, conn.InstanceName, conn.PinName); err != nil {
				return err
			}
		}
	}

	idx, err := tx.PrepareContext(ctx, `INSERT INTO net_index (run_id, net_name, net_id) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer idx.Close()

	for name, id := range ds.NetToID {
		if _, err := idx.ExecContext(ctx, ds.ID, name, id); err != nil {
			return err
		}
	}
	return nil
}

// GetDataset returns the dataset with the given run id.
func (s *sqliteStore) GetDataset(ctx context.Context, id string) (*defnet.Dataset, bool, error) {
	ds := &defnet.Dataset{
		ID:           id,
		InstanceToID: make(map[string]int),
		IDToInstance: make(map[int]defnet.InstanceInfo),
		NetToID:      make(map[string]int),
		IDToNet:      make(map[int]defnet.NetInfo),
	}

	var unitsDefault int
	var parsedAt string
	err := s.db.QueryRowContext(ctx, `
SELECT design, version, technology, units_per_micron, units_default, divider_char, bus_bit_chars, parsed_at
FROM runs WHERE id=?`, id).Scan(
		&ds.Header.Design,
		&ds.Header.Version,
		&ds.Header.Technology,
		&ds.Header.Units.DatabaseUnitsPerMicron,
		&unitsDefault,
		&ds.Header.DividerChar,
		&ds.Header.BusBitChars,
		&parsedAt,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	ds.Header.Units.Distance = "MICRONS"
	ds.Header.Units.DefaultUsed = unitsDefault != 0
	if t, err := time.Parse(time.RFC3339, parsedAt); err == nil {
		ds.ParsedAt = t
	}

	if err := s.loadInstances(ctx, ds); err != nil {
		return nil, false, err
	}
	if err := s.loadNets(ctx, ds); err != nil {
		return nil, false, err
	}
	return ds, true, nil
}

func (s *sqliteStore) loadInstances(ctx context.Context, ds *defnet.Dataset) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT instance_id, instance_name, cell_name, placed, x, y, raw_x, raw_y, orientation
FROM instances WHERE run_id=?`, ds.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, placed int
		var info defnet.InstanceInfo
		var x, y sql.NullInt64
		var rawX, rawY, orientation sql.NullString
		if err := rows.Scan(&id, &info.InstanceName, &info.CellName, &placed, &x, &y, &rawX, &rawY, &orientation); err != nil {
			return err
		}
		if placed != 0 {
			info.Placement = &transform.Placement{
				X:           int(x.Int64),
				Y:           int(y.Int64),
				RawX:        rawX.String,
				RawY:        rawY.String,
				Orientation: orientation.String,
			}
		}
		ds.IDToInstance[id] = info
	}
	if err := rows.Err(); err != nil {
		return err
	}

	idx, err := s.db.QueryContext(ctx, `SELECT instance_name, instance_id FROM instance_index WHERE run_id=?`, ds.ID)
	if err != nil {
		return err
	}
	defer idx.Close()

	for idx.Next() {
		var name string
		var id int
		if err := idx.Scan(&name, &id); err != nil {
			return err
		}
		ds.InstanceToID[name] = id
	}
	return idx.Err()
}

func (s *sqliteStore) loadNets(ctx context.Context, ds *defnet.Dataset) error {
	rows, err := s.db.QueryContext(ctx, `SELECT net_id, net_name FROM nets WHERE run_id=?`, ds.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		ds.IDToNet[id] = defnet.NetInfo{NetName: name}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	conns, err := s.db.QueryContext(ctx, `
SELECT net_id, instance_name, pin_name
FROM net_connections WHERE run_id=? ORDER BY net_id, seq`, ds.ID)
	if err != nil {
		return err
	}
	defer conns.Close()

	for conns.Next() {
		var id int
		var conn transform.Connection
		if err := conns.Scan(&id, &conn.InstanceName, &conn.PinName); err != nil {
			return err
		}
		info := ds.IDToNet[id]
		info.Connections = append(info.Connections, conn)
		ds.IDToNet[id] = info
	}
	if err := conns.Err(); err != nil {
		return err
	}

	idx, err := s.db.QueryContext(ctx, `SELECT net_name, net_id FROM net_index WHERE run_id=?`, ds.ID)
	if err != nil {
		return err
	}
	defer idx.Close()

	for idx.Next() {
		var name string
		var id int
		if err := idx.Scan(&name, &id); err != nil {
			return err
		}
		ds.NetToID[name] = id
	}
	return idx.Err()
}

// GetLatestByDesign returns the most recently parsed dataset for a design.
func (s *sqliteStore) GetLatestByDesign(ctx context.Context, design string) (*defnet.Dataset, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
SELECT id FROM runs WHERE design=? ORDER BY parsed_at DESC LIMIT 1`, design).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return s.GetDataset(ctx, id)
}

// ListRuns returns stored runs, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT r.id, r.design, r.parsed_at,
	(SELECT COUNT(*) FROM instances i WHERE i.run_id = r.id),
	(SELECT COUNT(*) FROM nets n WHERE n.run_id = r.id)
FROM runs r ORDER BY r.parsed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var parsedAt string
		if err := rows.Scan(&run.ID, &run.Design, &parsedAt, &run.Instances, &run.Nets); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, parsedAt); err == nil {
			run.ParsedAt = t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
