// Package resultdb indexes evaluation results in SQLite so success rates and
// failure breakdowns are queryable after the fact. Writes are synchronous:
// an evaluation is a short sequential batch, not a hot loop.
package resultdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"blockstack.ai/internal/protocol"
)

type DB struct {
	db *sql.DB
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
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
	return &DB{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
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
			method TEXT NOT NULL,
			run TEXT NOT NULL,
			domain TEXT NOT NULL,
			steps INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			ok INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (method, run, domain)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_method_ok ON runs(method, ok);`,
		`CREATE TABLE IF NOT EXISTS run_errors (
			method TEXT NOT NULL,
			run TEXT NOT NULL,
			domain TEXT NOT NULL,
			seq INTEGER NOT NULL,
			message TEXT NOT NULL,
			PRIMARY KEY (method, run, domain, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error { return d.db.Close() }

// WriteResult upserts one plan execution result, replacing any previous
// record and its errors for the same method/run/domain.
func (d *DB) WriteResult(r protocol.ResultMsg) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ok := 0
	if r.OK() {
		ok = 1
	}
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO runs (method, run, domain, steps, skipped, ok, raw_json, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Method, r.Run, r.Domain, r.Steps, r.Skipped, ok, string(raw), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`DELETE FROM run_errors WHERE method = ? AND run = ? AND domain = ?`,
		r.Method, r.Run, r.Domain,
	); err != nil {
		return err
	}
	for i, msg := range r.Errors {
		if _, err := tx.Exec(
			`INSERT INTO run_errors (method, run, domain, seq, message) VALUES (?, ?, ?, ?, ?)`,
			r.Method, r.Run, r.Domain, i, msg,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SuccessRates returns, per method, the fraction of recorded plans that
// completed with zero errors.
func (d *DB) SuccessRates() (map[string]float64, error) {
	rows, err := d.db.Query(
		`SELECT method, SUM(ok), COUNT(*) FROM runs GROUP BY method`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var method string
		var succeeded, total int
		if err := rows.Scan(&method, &succeeded, &total); err != nil {
			return nil, err
		}
		if total > 0 {
			out[method] = float64(succeeded) / float64(total)
		}
	}
	return out, rows.Err()
}

// Errors returns the recorded error messages for one run, in order.
func (d *DB) Errors(method, run, domain string) ([]string, error) {
	rows, err := d.db.Query(
		`SELECT message FROM run_errors WHERE method = ? AND run = ? AND domain = ? ORDER BY seq`,
		method, run, domain,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}
