package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

// DB is the concrete storage backed by SQLite.
type DB struct {
	conn *sql.DB
}

// OpenSQLite opens (and creates if missing) a SQLite DB at path.
func OpenSQLite(path string) (*DB, error) {
	// Pragmas via DSN keep it portable with the modernc driver.
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"
	c, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{conn: c}, nil
}

func (db *DB) Close() error { return db.conn.Close() }

// CreateSchema ensures all tables exist.
func (db *DB) CreateSchema() error {
	_, err := db.conn.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id           TEXT PRIMARY KEY,
  started_at   TEXT,          -- RFC3339
  repo_name    TEXT,
  ruff_version TEXT,
  run_json     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS suggestions (
  run_id     TEXT NOT NULL,
  code       TEXT NOT NULL,
  bucket     TEXT NOT NULL,   -- respected|autofixable|applicable
  linter     TEXT,
  name       TEXT,
  fixable    TEXT,            -- Always|Sometimes|No
  preview    INTEGER NOT NULL DEFAULT 0,
  violations INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (run_id, code),
  FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_suggestions_run ON suggestions(run_id);
CREATE INDEX IF NOT EXISTS idx_suggestions_code ON suggestions(code);

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT UNIQUE NOT NULL,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'viewer',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  expires_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS audit (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts TEXT NOT NULL,
  username TEXT,
  action TEXT NOT NULL,
  resource TEXT,
  meta_json TEXT
);

CREATE TABLE IF NOT EXISTS snoozes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code        TEXT NOT NULL,
  reason      TEXT NOT NULL,
  expires_at  TEXT NOT NULL,     -- RFC3339Nano
  created_by  TEXT NOT NULL,
  created_at  TEXT NOT NULL,
  revoked_at  TEXT               -- NULL = active
);
`)
	if err != nil {
		return err
	}
	return nil
}

// SaveRun upserts a run JSON and (re)writes its suggestion rows. A code
// appears in at most one bucket per run, so (run_id, code) is the key.
func (db *DB) SaveRun(run *ruleset.Run) error {
	b, err := json.Marshal(run)
	if err != nil {
		return err
	}
	ts := run.StartedAt.UTC().Format(time.RFC3339Nano)

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, started_at, repo_name, ruff_version, run_json)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET started_at=excluded.started_at, repo_name=excluded.repo_name, ruff_version=excluded.ruff_version, run_json=excluded.run_json`,
		run.ID, ts, run.RepoName, run.RuffVersion, string(b),
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM suggestions WHERE run_id = ?`, run.ID); err != nil {
		return err
	}
	if run.SuggestionCount() > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO suggestions
			(run_id, code, bucket, linter, name, fixable, preview, violations)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range run.Respected {
			if _, err := stmt.Exec(run.ID, r.Code, ruleset.BucketRespected, r.Linter, r.Name, r.Fix.Label(), r.Preview, 0); err != nil {
				return err
			}
		}
		for _, r := range run.Autofixable {
			if _, err := stmt.Exec(run.ID, r.Code, ruleset.BucketAutofixable, r.Linter, r.Name, r.Fix.Label(), r.Preview, 0); err != nil {
				return err
			}
		}
		for _, vr := range run.Applicable {
			if _, err := stmt.Exec(run.ID, vr.Code, ruleset.BucketApplicable, vr.Linter, vr.Name, vr.Fix.Label(), vr.Preview, vr.Violations); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadRun returns the full run (from stored JSON).
func (db *DB) LoadRun(id string) (ruleset.Run, error) {
	var s string
	row := db.conn.QueryRow(`SELECT run_json FROM runs WHERE id = ?`, id)
	if err := row.Scan(&s); err != nil {
		return ruleset.Run{}, err
	}
	var run ruleset.Run
	if err := json.Unmarshal([]byte(s), &run); err != nil {
		return ruleset.Run{}, fmt.Errorf("run %s: %w", id, err)
	}
	return run, nil
}

// LoadLatestRun returns the most recently started run.
func (db *DB) LoadLatestRun() (ruleset.Run, error) {
	var s string
	row := db.conn.QueryRow(`SELECT run_json FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`)
	if err := row.Scan(&s); err != nil {
		return ruleset.Run{}, err
	}
	var run ruleset.Run
	if err := json.Unmarshal([]byte(s), &run); err != nil {
		return ruleset.Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}
