package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/esmgis/platcrawl/internal/model"
)

// dbFileName is the history database file inside the data directory.
const dbFileName = "platcrawl.db"

// HistoryDB provides SQLite-based storage for run history.
// It manages connection pooling and provides methods for recording and
// querying past runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files,
	// mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per invocation plus the full summary as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date_started DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		total_processed INTEGER NOT NULL,
		total_failed INTEGER NOT NULL,
		total_stored INTEGER NOT NULL,
		aborted INTEGER NOT NULL DEFAULT 0,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_date ON runs(date_started);

	-- Per-community breakdown of each run
	CREATE TABLE IF NOT EXISTS community_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		community TEXT NOT NULL,
		seed TEXT NOT NULL,
		traversal_processed INTEGER NOT NULL,
		traversal_failed INTEGER NOT NULL,
		discovered INTEGER NOT NULL,
		additional_processed INTEGER NOT NULL,
		additional_failed INTEGER NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_community_runs_run ON community_runs(run_id);
	CREATE INDEX IF NOT EXISTS idx_community_runs_community ON community_runs(community);

	-- Content hashes of stored documents, updated after each run
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		community TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		size INTEGER NOT NULL,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_community ON documents(community);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRunSummary records a completed run and its per-community rows.
func (hdb *HistoryDB) SaveRunSummary(ctx context.Context, summary *model.RunSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to serialize run summary: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (date_started, elapsed_ms, total_processed, total_failed, total_stored, aborted, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.DateStarted.UTC().Format(time.RFC3339),
		summary.Elapsed.Milliseconds(),
		summary.TotalProcessed(),
		summary.TotalFailed(),
		summary.TotalStored,
		boolToInt(summary.Aborted()),
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run ID: %w", err)
	}

	for _, r := range summary.Communities {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO community_runs (run_id, community, seed, traversal_processed, traversal_failed, discovered, additional_processed, additional_failed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID,
			r.Community,
			r.SeedID,
			r.TraversalProcessed,
			r.TraversalFailed,
			len(r.Discovered),
			r.AdditionalProcessed,
			r.AdditionalFailed,
			r.ErrorMessage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert community run for %s: %w", r.Community, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// UpsertDocuments records or refreshes the content hashes of stored
// documents. An unchanged hash only bumps last_seen; a changed hash
// replaces the record, which is how a re-uploaded plat sheet surfaces
// in the history.
func (hdb *HistoryDB) UpsertDocuments(ctx context.Context, records []model.DocumentRecord) error {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO documents (id, community, sha256, size)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		sha256 = excluded.sha256,
		size = excluded.size,
		last_seen = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare document upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Community, rec.SHA256, rec.Size); err != nil {
			return fmt.Errorf("failed to upsert document %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit documents: %w", err)
	}
	return nil
}

// RunRecord is a row of the run history, without the full summary JSON.
type RunRecord struct {
	ID             int64
	DateStarted    time.Time
	Elapsed        time.Duration
	TotalProcessed int
	TotalFailed    int
	TotalStored    int
	Aborted        bool
}

// RecentRuns returns up to limit runs, newest first.
func (hdb *HistoryDB) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id, date_started, elapsed_ms, total_processed, total_failed, total_stored, aborted
	FROM runs
	ORDER BY date_started DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started string
		var elapsedMS int64
		var aborted int
		if err := rows.Scan(&rec.ID, &started, &elapsedMS, &rec.TotalProcessed, &rec.TotalFailed, &rec.TotalStored, &aborted); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		rec.DateStarted = parseTimestamp(started)
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		rec.Aborted = aborted != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run rows: %w", err)
	}
	return records, nil
}

// DocumentCount returns the number of document records in the history.
func (hdb *HistoryDB) DocumentCount(ctx context.Context) (int, error) {
	var n int
	if err := hdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// parseTimestamp parses the timestamp formats SQLite may return.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
