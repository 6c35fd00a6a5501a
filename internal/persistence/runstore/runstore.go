// Package runstore records epidemic runs and their per-turn population
// counts in a SQLite database.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"epi-ca/internal/sims/epidemic"
)

// Store is a SQLite-backed run index. It is safe for concurrent use by the
// sweep workers; writes are serialized on a single connection.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// RunInfo describes one recorded run.
type RunInfo struct {
	ID        int64
	Label     string
	Seed      int64
	Size      int
	Turns     int
	Ring      bool
	StartedAt time.Time
	Config    epidemic.Config
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("runstore: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL,
			seed INTEGER NOT NULL,
			size INTEGER NOT NULL,
			turns INTEGER NOT NULL,
			ring INTEGER NOT NULL,
			vaccination REAL NOT NULL,
			config_json TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			turn INTEGER NOT NULL,
			susceptible INTEGER NOT NULL,
			affected INTEGER NOT NULL,
			recovered INTEGER NOT NULL,
			dead INTEGER NOT NULL,
			vaccinated INTEGER NOT NULL,
			PRIMARY KEY (run_id, turn)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_label ON runs(label);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun inserts a run row and returns a recorder for its turns.
func (s *Store) BeginRun(ctx context.Context, label string, cfg epidemic.Config, seed int64) (*Run, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (label, seed, size, turns, ring, vaccination, config_json, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		label, seed, cfg.Size, cfg.Turns, boolInt(cfg.Params.Ring), cfg.Params.Vaccination,
		string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Run{store: s, id: id}, nil
}

// Runs lists recorded runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, seed, size, turns, ring, config_json, started_at FROM runs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var (
			info    RunInfo
			ring    int
			cfgJSON string
			started string
		)
		if err := rows.Scan(&info.ID, &info.Label, &info.Seed, &info.Size, &info.Turns, &ring, &cfgJSON, &started); err != nil {
			return nil, err
		}
		info.Ring = ring != 0
		if err := json.Unmarshal([]byte(cfgJSON), &info.Config); err != nil {
			return nil, fmt.Errorf("run %d config: %w", info.ID, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			info.StartedAt = t
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Series rebuilds the normalized time series of a run.
func (s *Store) Series(ctx context.Context, runID int64) (epidemic.Series, error) {
	var series epidemic.Series
	var cfgJSON string
	if err := s.db.QueryRowContext(ctx, `SELECT config_json FROM runs WHERE id = ?`, runID).Scan(&cfgJSON); err != nil {
		return series, fmt.Errorf("run %d: %w", runID, err)
	}
	var cfg epidemic.Config
	if err := json.Unmarshal([]byte(cfgJSON), &cfg); err != nil {
		return series, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT susceptible, affected, recovered, dead, vaccinated FROM turns WHERE run_id = ? ORDER BY turn`, runID)
	if err != nil {
		return series, err
	}
	defer rows.Close()
	for rows.Next() {
		var raw epidemic.RawCounts
		if err := rows.Scan(&raw[epidemic.Susceptible], &raw[epidemic.Affected], &raw[epidemic.Recovered], &raw[epidemic.Dead], &raw[epidemic.Vaccinated]); err != nil {
			return series, err
		}
		series.Append(raw.Normalize(cfg.Normalization))
	}
	return series, rows.Err()
}

// Run records the turns of one simulation run.
type Run struct {
	store *Store
	id    int64
}

// ID returns the database id of the run.
func (r *Run) ID() int64 { return r.id }

// ObserveTurn stores the raw counts of a committed turn.
func (r *Run) ObserveTurn(f epidemic.Frame) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, err := r.store.db.Exec(
		`INSERT INTO turns (run_id, turn, susceptible, affected, recovered, dead, vaccinated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.id, f.Turn,
		f.Raw[epidemic.Susceptible], f.Raw[epidemic.Affected], f.Raw[epidemic.Recovered],
		f.Raw[epidemic.Dead], f.Raw[epidemic.Vaccinated])
	if err != nil {
		return fmt.Errorf("insert turn %d of run %d: %w", f.Turn, r.id, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
