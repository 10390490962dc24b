// Package history provides SQLite-backed storage of past check runs.
// The check engine only ever writes here; reads serve the history and
// digest commands and never influence a run's outcome.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/setevik/hostwatch/internal/metric"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps an SQLite connection for run storage.
type DB struct {
	db *sql.DB
}

// Open opens or creates an SQLite database at the given path.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// RecordRun stores one finished run with all of its classifications.
func (d *DB) RecordRun(rr *metric.RunResult) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	hard, soft, ok := rr.Counts()
	_, err = tx.Exec(`
		INSERT INTO runs (id, host, started, worst, hard, soft, ok)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rr.ID,
		rr.Host,
		rr.Started.UTC().Format(time.RFC3339Nano),
		rr.Worst().String(),
		hard,
		soft,
		ok,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for i, c := range rr.Classifications {
		s := c.Sample
		_, err = tx.Exec(`
			INSERT INTO classifications (run_id, position, metric, label, context, value, soft, hard, host, sampled, severity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rr.ID,
			i,
			string(s.Metric),
			s.Label,
			s.Context,
			s.Value,
			nullFloat(s.Soft),
			nullFloat(s.Hard),
			s.Host,
			s.Time.UTC().Format(time.RFC3339Nano),
			c.Severity.String(),
		)
		if err != nil {
			return fmt.Errorf("inserting classification %s: %w", s.Metric, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID      string
	Host    string
	Started time.Time
	Worst   metric.Severity
	Hard    int
	Soft    int
	OK      int
}

// QueryFilter controls which rows Runs and Classifications return.
type QueryFilter struct {
	Since    time.Time
	Until    time.Time
	Host     string
	Metric   string
	Severity string
	Limit    int
}

// Runs returns recorded runs matching the filter, newest first.
func (d *DB) Runs(f QueryFilter) ([]RunSummary, error) {
	query := `SELECT id, host, started, worst, hard, soft, ok FROM runs WHERE 1=1`
	var args []interface{}

	if !f.Since.IsZero() {
		query += " AND started >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	if !f.Until.IsZero() {
		query += " AND started <= ?"
		args = append(args, f.Until.UTC().Format(time.RFC3339Nano))
	}
	if f.Host != "" {
		query += " AND host = ?"
		args = append(args, f.Host)
	}

	query += " ORDER BY started DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var startedStr, worstStr string
		if err := rows.Scan(&r.ID, &r.Host, &startedStr, &worstStr, &r.Hard, &r.Soft, &r.OK); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.Started, _ = time.Parse(time.RFC3339Nano, startedStr)
		worst, err := metric.ParseSeverity(worstStr)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		r.Worst = worst
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Classifications returns recorded classifications matching the filter,
// newest first.
func (d *DB) Classifications(f QueryFilter) ([]metric.Classification, error) {
	query := `SELECT metric, label, context, value, soft, hard, host, sampled, severity
		FROM classifications WHERE 1=1`
	var args []interface{}

	if !f.Since.IsZero() {
		query += " AND sampled >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	if !f.Until.IsZero() {
		query += " AND sampled <= ?"
		args = append(args, f.Until.UTC().Format(time.RFC3339Nano))
	}
	if f.Host != "" {
		query += " AND host = ?"
		args = append(args, f.Host)
	}
	if f.Metric != "" {
		query += " AND metric = ?"
		args = append(args, f.Metric)
	}
	if f.Severity != "" {
		query += " AND severity = ?"
		args = append(args, f.Severity)
	}

	query += " ORDER BY sampled DESC, position DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying classifications: %w", err)
	}
	defer rows.Close()

	var cs []metric.Classification
	for rows.Next() {
		c, err := scanClassification(rows)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, rows.Err()
}

// CountRuns returns how many runs are recorded.
func (d *DB) CountRuns() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return count, nil
}

// Purge deletes runs older than the given retention duration along with
// their classifications. Returns how many runs were removed.
func (d *DB) Purge(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339Nano)

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM classifications WHERE run_id IN (SELECT id FROM runs WHERE started < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("purging old classifications: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM runs WHERE started < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging old runs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing purge: %w", err)
	}
	return result.RowsAffected()
}

func nullFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func scanClassification(rows *sql.Rows) (metric.Classification, error) {
	var c metric.Classification
	var name, sampledStr, sevStr string
	var context sql.NullString
	var soft, hard sql.NullFloat64

	err := rows.Scan(
		&name,
		&c.Sample.Label,
		&context,
		&c.Sample.Value,
		&soft,
		&hard,
		&c.Sample.Host,
		&sampledStr,
		&sevStr,
	)
	if err != nil {
		return c, fmt.Errorf("scanning classification row: %w", err)
	}

	c.Sample.Metric = metric.Name(name)
	c.Sample.Context = context.String
	if soft.Valid {
		v := soft.Float64
		c.Sample.Soft = &v
	}
	if hard.Valid {
		v := hard.Float64
		c.Sample.Hard = &v
	}
	c.Sample.Time, _ = time.Parse(time.RFC3339Nano, sampledStr)

	sev, err := metric.ParseSeverity(sevStr)
	if err != nil {
		return c, fmt.Errorf("classification for %s: %w", name, err)
	}
	c.Severity = sev

	return c, nil
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id      TEXT PRIMARY KEY,
			host    TEXT NOT NULL,
			started TEXT NOT NULL,
			worst   TEXT NOT NULL,
			hard    INTEGER NOT NULL,
			soft    INTEGER NOT NULL,
			ok      INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS classifications (
			run_id   TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			metric   TEXT NOT NULL,
			label    TEXT NOT NULL,
			context  TEXT,
			value    REAL NOT NULL,
			soft     REAL,
			hard     REAL,
			host     TEXT NOT NULL,
			sampled  TEXT NOT NULL,
			severity TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_host_started ON runs(host, started)`,
		`CREATE INDEX IF NOT EXISTS idx_classifications_run ON classifications(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_classifications_sampled ON classifications(metric, sampled)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Debug("history schema up to date")
	return nil
}
