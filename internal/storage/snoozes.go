package storage

import (
	"database/sql"
	"strings"
	"time"
)

// Snooze suppresses one rule code from future reports until it expires or
// is revoked.
type Snooze struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	Reason    string     `json:"reason"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func (db *DB) CreateSnooze(code, reason, createdBy string, expires time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := db.conn.Exec(`
INSERT INTO snoozes(code, reason, expires_at, created_by, created_at)
VALUES(?,?,?,?,?)`,
		strings.ToUpper(strings.TrimSpace(code)), reason, expires.UTC().Format(time.RFC3339Nano), createdBy, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *DB) RevokeSnooze(id int64) error {
	// the revoker goes to audit; snoozes only track revoked_at
	return execOne(db.conn, `UPDATE snoozes SET revoked_at=? WHERE id=? AND revoked_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
}

func (db *DB) ListSnoozes(activeOnly bool) ([]Snooze, error) {
	q := `
SELECT id, code, reason, expires_at, created_by, created_at, revoked_at
FROM snoozes`
	args := []any{}
	if activeOnly {
		q += ` WHERE (revoked_at IS NULL) AND (expires_at > ?)`
		args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	}
	q += ` ORDER BY id DESC`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snooze
	for rows.Next() {
		var (
			s           Snooze
			exp, ca, ra sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Code, &s.Reason, &exp, &s.CreatedBy, &ca, &ra); err != nil {
			return nil, err
		}
		if exp.Valid {
			if t, e := time.Parse(time.RFC3339Nano, exp.String); e == nil {
				s.ExpiresAt = t
			}
		}
		if ca.Valid {
			if t, e := time.Parse(time.RFC3339Nano, ca.String); e == nil {
				s.CreatedAt = t
			}
		}
		if ra.Valid {
			if t, e := time.Parse(time.RFC3339Nano, ra.String); e == nil {
				s.RevokedAt = &t
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
