package storage

import (
	"database/sql"
	"time"
)

// ListRuns returns a lightweight list of runs with suggestion counts.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT r.id, r.started_at, r.repo_name, r.ruff_version,
		       (SELECT COUNT(1) FROM suggestions s WHERE s.run_id = r.id) AS suggestions
		  FROM runs r
		 ORDER BY r.started_at DESC, r.id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var rr RunRow
		var startedAtStr string
		if err := rows.Scan(&rr.ID, &startedAtStr, &rr.RepoName, &rr.RuffVersion, &rr.Suggestions); err != nil {
			return nil, err
		}
		// Parse RFC3339Nano first, fallback to RFC3339
		if t, err := time.Parse(time.RFC3339Nano, startedAtStr); err == nil {
			rr.StartedAt = t
		} else if t2, err2 := time.Parse(time.RFC3339, startedAtStr); err2 == nil {
			rr.StartedAt = t2
		} else {
			// leave zero time if unparsable (shouldn't happen)
			rr.StartedAt = time.Time{}
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListSuggestions returns a run's stored suggestion rows, optionally limited
// to one bucket. Applicable rows come out cheapest first, like the report.
func (db *DB) ListSuggestions(runID, bucket string) ([]SuggestionRow, error) {
	q := `
		SELECT code, bucket, linter, name, fixable, preview, violations
		  FROM suggestions
		 WHERE run_id = ?`
	args := []any{runID}
	if bucket != "" {
		q += ` AND bucket = ?`
		args = append(args, bucket)
	}
	q += `
		 ORDER BY
		       (CASE bucket WHEN 'respected' THEN 1 WHEN 'autofixable' THEN 2 ELSE 3 END),
		       violations, linter, code`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SuggestionRow
	for rows.Next() {
		var s SuggestionRow
		if err := rows.Scan(&s.Code, &s.Bucket, &s.Linter, &s.Name, &s.Fixable, &s.Preview, &s.Violations); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// HasRun reports whether a run ID exists.
func (db *DB) HasRun(id string) (bool, error) {
	const q = `SELECT 1 FROM runs WHERE id = ? LIMIT 1`
	var one int
	err := db.conn.QueryRow(q, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
