package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// catalog mirrors run metadata into SQLite so listing does not have to
// walk and parse every run directory. The JSON/CSV files stay the source
// of truth for payloads.
type catalog struct {
	db *sql.DB
}

func openCatalog(dbPath string) (*catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open catalog: %w", err)
	}

	c := &catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migrate catalog: %w", err)
	}
	return c, nil
}

func (c *catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		dt REAL NOT NULL,
		tmax REAL NOT NULL,
		steps INTEGER NOT NULL,
		bodies INTEGER NOT NULL,
		integrator TEXT NOT NULL,
		energy_drift REAL NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := c.db.Exec(schema)
	return err
}

func (c *catalog) close() error {
	return c.db.Close()
}

func (c *catalog) insert(meta *RunMetadata) error {
	_, err := c.db.Exec(
		`INSERT INTO runs (id, name, created_at, dt, tmax, steps, bodies, integrator, energy_drift)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, meta.Timestamp.Unix(), meta.Dt, meta.TMax,
		meta.Steps, meta.Bodies, meta.Integrator, meta.EnergyDrift,
	)
	return err
}

func (c *catalog) list() ([]RunMetadata, error) {
	rows, err := c.db.Query(
		`SELECT id, name, created_at, dt, tmax, steps, bodies, integrator, energy_drift
		 FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var meta RunMetadata
		var createdAt int64
		if err := rows.Scan(&meta.ID, &meta.Name, &createdAt, &meta.Dt, &meta.TMax,
			&meta.Steps, &meta.Bodies, &meta.Integrator, &meta.EnergyDrift); err != nil {
			return nil, err
		}
		meta.Timestamp = time.Unix(createdAt, 0).UTC()
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}
