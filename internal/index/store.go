package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"filedex/internal/logging"
	"filedex/internal/metrics"
)

// Default timeout for store operations
const defaultTimeout = 5 * time.Second

// FileRecord is one indexed filesystem entry.
type FileRecord struct {
	ID         int64
	Name       string
	Path       string
	ParentPath string
	Ext        string
	IsFile     bool
	Size       int64
	ModTime    time.Time
	RunCount   int
}

// Store persists the file index in SQLite.
type Store struct {
	db      *sql.DB
	dbPath  string
	mu      sync.RWMutex
	txStart time.Time
}

// NewStore opens (or creates) the index database at dbPath. The parent
// directory must already exist and be writable; use startup.LoadConfig to
// validate directories before calling this. Pass ":memory:" for an
// in-memory index.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("Index database path: %s", dbPath)

	// WAL mode and a busy timeout keep concurrent readers from tripping
	// over the walker's batch writes
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)
	if dbPath == ":memory:" {
		connStr = dbPath
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	// An in-memory database exists per connection; more than one
	// connection would see separate empty databases
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(time.Hour)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close index database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to index database: %w", err)
	}

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close index database after schema failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize index schema: %w", err)
	}

	logging.Info("Index database initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		parent_path TEXT NOT NULL,
		ext TEXT NOT NULL DEFAULT '',
		is_file INTEGER NOT NULL DEFAULT 1,
		size INTEGER NOT NULL DEFAULT 0,
		mod_time INTEGER NOT NULL,
		run_count INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_files_name ON files(name COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_files_parent_path ON files(parent_path);
	CREATE INDEX IF NOT EXISTS idx_files_mod_time ON files(mod_time);
	CREATE INDEX IF NOT EXISTS idx_files_run_count ON files(run_count);

	-- Composite index backing the duplicate-candidate query (ext + size)
	CREATE INDEX IF NOT EXISTS idx_files_ext_size ON files(ext, size);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the index database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginBatch starts a transaction for batch upserts. The caller is
// responsible for calling EndBatch when done.
func (s *Store) BeginBatch() (*sql.Tx, error) {
	s.mu.Lock()
	txStart := time.Now()

	// Transaction lifetime is managed by EndBatch, not a timeout
	tx, err := s.db.BeginTx(context.Background(), nil)
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	s.txStart = txStart
	return tx, nil
}

// EndBatch commits or rolls back a transaction.
func (s *Store) EndBatch(tx *sql.Tx, err error) error {
	duration := time.Since(s.txStart).Seconds()

	if err != nil {
		metrics.DBQueryDuration.WithLabelValues("batch_rollback").Observe(duration)
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBQueryDuration.WithLabelValues("batch_commit").Observe(duration)
	return tx.Commit()
}

// UpsertFile inserts or updates a file record within a transaction.
func (s *Store) UpsertFile(tx *sql.Tx, rec *FileRecord) error {
	query := `
	INSERT INTO files (name, path, parent_path, ext, is_file, size, mod_time, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
	ON CONFLICT(path) DO UPDATE SET
		name = excluded.name,
		parent_path = excluded.parent_path,
		ext = excluded.ext,
		is_file = excluded.is_file,
		size = excluded.size,
		mod_time = excluded.mod_time,
		updated_at = strftime('%s', 'now')
	`

	isFile := 0
	if rec.IsFile {
		isFile = 1
	}

	_, err := tx.ExecContext(context.Background(), query,
		rec.Name,
		rec.Path,
		rec.ParentPath,
		rec.Ext,
		isFile,
		rec.Size,
		rec.ModTime.Unix(),
	)
	return err
}

// DeleteMissing removes entries not touched since cutoffTime. Must be
// called within a transaction; the walker uses it to drop files that
// disappeared between runs.
func (s *Store) DeleteMissing(tx *sql.Tx, cutoffTime time.Time) (int64, error) {
	result, err := tx.ExecContext(context.Background(),
		"DELETE FROM files WHERE updated_at < ?",
		cutoffTime.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// RemovePath deletes a single entry by path. Used after the duplicate
// scanner deletes a file so the index does not serve a stale record.
func (s *Store) RemovePath(path string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("remove_path", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path)
	return err
}

// IncrementRunCount bumps the run counter for a path. It reports whether
// the path exists in the index.
func (s *Store) IncrementRunCount(path string) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("increment_run_count", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx,
		"UPDATE files SET run_count = run_count + 1 WHERE path = ?", path)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	return rows > 0, err
}

// CountEntries returns the number of indexed entries.
func (s *Store) CountEntries() (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_entries", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&count)
	return count, err
}

// UpdateDBMetrics publishes database connection gauges.
func (s *Store) UpdateDBMetrics() {
	stats := s.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// recordQuery records store query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}
