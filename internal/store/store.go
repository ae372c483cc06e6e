// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists batch outcomes and extracted poses to a SQLite
// index so results can be queried across batches without re-parsing CSVs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/dock-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "dock.db"
)

// Store manages the docking results SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the index database at <output>/index/dock.db and
// creates the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.OutputDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			receptor TEXT NOT NULL,
			ligand TEXT NOT NULL,
			config_path TEXT,
			output_path TEXT,
			raw_output TEXT,
			succeeded INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS poses (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			pose INTEGER NOT NULL,
			affinity REAL NOT NULL,
			rmsd_lb REAL NOT NULL,
			rmsd_ub REAL NOT NULL,
			grid_x REAL,
			grid_y REAL,
			grid_z REAL,
			size_x REAL,
			size_y REAL,
			size_z REAL,
			grid_space REAL,
			exhaustiveness INTEGER,
			seed INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_pair ON runs(receptor, ligand)`,
		`CREATE INDEX IF NOT EXISTS idx_poses_run_id ON poses(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_poses_affinity ON poses(affinity)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IndexBatch records one batch: a run row per outcome and a pose row per
// extracted record, in a single transaction. Poses are matched to their
// run by the (receptor, ligand) key, which is unique within a batch.
func (s *Store) IndexBatch(ctx context.Context, outcomes []types.TaskOutcome, poses []types.PoseRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	runIDs := make(map[[2]string]int64, len(outcomes))

	for _, o := range outcomes {
		succeeded := 1
		if o.Failed() {
			succeeded = 0
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO runs (receptor, ligand, config_path, output_path, raw_output, succeeded, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.Receptor, o.Ligand, o.ConfigPath, o.OutputPath, o.Raw, succeeded, now)
		if err != nil {
			return fmt.Errorf("inserting run %s/%s: %w", o.Receptor, o.Ligand, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading run id: %w", err)
		}
		runIDs[[2]string{o.Receptor, o.Ligand}] = id
	}

	for _, p := range poses {
		runID, ok := runIDs[[2]string{p.Receptor, p.Ligand}]
		if !ok {
			return fmt.Errorf("pose %s/%s #%d has no matching run in this batch", p.Receptor, p.Ligand, p.Pose)
		}

		var gridX, gridY, gridZ, sizeX, sizeY, sizeZ, gridSpace sql.NullFloat64
		var exhaustiveness, seed sql.NullInt64
		if m := p.Metadata; m != nil {
			gridX = sql.NullFloat64{Float64: m.GridX, Valid: true}
			gridY = sql.NullFloat64{Float64: m.GridY, Valid: true}
			gridZ = sql.NullFloat64{Float64: m.GridZ, Valid: true}
			sizeX = sql.NullFloat64{Float64: m.SizeX, Valid: true}
			sizeY = sql.NullFloat64{Float64: m.SizeY, Valid: true}
			sizeZ = sql.NullFloat64{Float64: m.SizeZ, Valid: true}
			gridSpace = sql.NullFloat64{Float64: m.GridSpace, Valid: true}
			exhaustiveness = sql.NullInt64{Int64: int64(m.Exhaustiveness), Valid: true}
			seed = sql.NullInt64{Int64: int64(m.Seed), Valid: true}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO poses (run_id, pose, affinity, rmsd_lb, rmsd_ub,
				grid_x, grid_y, grid_z, size_x, size_y, size_z, grid_space, exhaustiveness, seed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, p.Pose, p.Affinity, p.RMSDLower, p.RMSDUpper,
			gridX, gridY, gridZ, sizeX, sizeY, sizeZ, gridSpace, exhaustiveness, seed); err != nil {
			return fmt.Errorf("inserting pose %s/%s #%d: %w", p.Receptor, p.Ligand, p.Pose, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// QueryOptions holds filters for pose queries.
type QueryOptions struct {
	// Receptor and Ligand filter by exact identifier when non-empty.
	Receptor string
	Ligand   string

	// BestOnly restricts results to each run's rank-1 pose.
	BestOnly bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// PoseRow is a pose joined with its run's pair identifiers.
type PoseRow struct {
	Receptor  string  `json:"receptor" yaml:"receptor"`
	Ligand    string  `json:"ligand" yaml:"ligand"`
	Pose      int     `json:"pose" yaml:"pose"`
	Affinity  float64 `json:"affinity" yaml:"affinity"`
	RMSDLower float64 `json:"rmsd_lower" yaml:"rmsd_lower"`
	RMSDUpper float64 `json:"rmsd_upper" yaml:"rmsd_upper"`
	Seed      *int    `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Poses queries extracted poses ordered by ascending affinity (best
// binding first), with optional pair filters.
func (s *Store) Poses(ctx context.Context, opts QueryOptions) ([]PoseRow, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var qb strings.Builder
	var args []any

	qb.WriteString(
		`SELECT r.receptor, r.ligand, p.pose, p.affinity, p.rmsd_lb, p.rmsd_ub, p.seed
		FROM poses p
		JOIN runs r ON r.id = p.run_id
		WHERE 1=1`)

	if opts.Receptor != "" {
		qb.WriteString(` AND r.receptor = ?`)
		args = append(args, opts.Receptor)
	}
	if opts.Ligand != "" {
		qb.WriteString(` AND r.ligand = ?`)
		args = append(args, opts.Ligand)
	}
	if opts.BestOnly {
		qb.WriteString(` AND p.pose = 1`)
	}

	qb.WriteString(` ORDER BY p.affinity ASC, r.receptor, r.ligand LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying poses: %w", err)
	}
	defer rows.Close()

	var results []PoseRow
	for rows.Next() {
		var row PoseRow
		var seed sql.NullInt64
		if err := rows.Scan(&row.Receptor, &row.Ligand, &row.Pose,
			&row.Affinity, &row.RMSDLower, &row.RMSDUpper, &seed); err != nil {
			return nil, fmt.Errorf("scanning pose row: %w", err)
		}
		if seed.Valid {
			v := int(seed.Int64)
			row.Seed = &v
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pose rows: %w", err)
	}
	return results, nil
}
