package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/yashikota/maildigest/internal/model"
)

// SeenDB is the durable ledger of previously-seen image fingerprints.
// Fingerprints are globally unique across all documents ever processed,
// not scoped to a single document or run.
//
// A SeenDB opened in pass-through mode (see OpenOrPassthrough) has no
// backing storage: HasAndRecord reports every fingerprint as novel.
type SeenDB struct {
	// db is the underlying SQL database connection.
	// Nil when the ledger is operating in pass-through mode.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SeenDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// read performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default ledger options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// dbFileName is the ledger file name inside the data directory.
const dbFileName = "seen_images.db"

// Open opens or creates the seen-image ledger in the specified directory.
// Schema initialization is idempotent: opening an already-initialized
// ledger is safe.
func Open(dbDir string, opts Options) (*SeenDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("ledger not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check ledger path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
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
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	// SQLite supports only one writer; a single pooled connection also
	// serializes check-and-insert calls within this process.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SeenDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// OpenOrPassthrough opens the ledger, degrading to pass-through mode when
// storage initialization fails. In pass-through mode deduplication is
// disabled and every image is treated as novel. The degradation is logged
// as a warning, not an error, and never crashes the host process.
func OpenOrPassthrough(dbDir string, opts Options, logger *slog.Logger) *SeenDB {
	if logger == nil {
		logger = slog.Default()
	}

	sdb, err := Open(dbDir, opts)
	if err != nil {
		logger.Warn("seen-image ledger unavailable, deduplication disabled",
			"dir", dbDir,
			"error", err,
		)
		return &SeenDB{}
	}
	return sdb
}

// Passthrough reports whether the ledger is operating without backing
// storage.
func (s *SeenDB) Passthrough() bool {
	return s.db == nil
}

// Close closes the database connection.
// Closing a pass-through ledger is a no-op.
func (s *SeenDB) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// createTables creates the ledger schema if it doesn't exist.
func (s *SeenDB) createTables() error {
	schema := `
	-- Seen images are an append-only set keyed by content fingerprint.
	CREATE TABLE IF NOT EXISTS seen_images (
		fingerprint TEXT PRIMARY KEY,
		first_seen  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// HasAndRecord atomically checks whether the fingerprint was already seen
// and records it if not. It returns true if the fingerprint was already
// present (duplicate) and false if this call newly inserted it (first
// sighting).
//
// The reference behavior left a race window open: two identical images
// checked in true parallel could both read "not present" before either
// inserted. We close that window instead of matching it - the
// check-and-insert is a single conflict-ignoring INSERT, so it is atomic
// even under parallel callers. This is an intentional semantic tightening.
//
// In pass-through mode every fingerprint is reported as a first sighting.
// Query errors are absorbed the same way: the image is treated as novel
// and the error is returned for the caller to log, because losing a
// duplicate check must never lose an image.
func (s *SeenDB) HasAndRecord(ctx context.Context, fp model.Fingerprint) (bool, error) {
	if s.db == nil {
		return false, nil
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO seen_images (fingerprint) VALUES (?) ON CONFLICT (fingerprint) DO NOTHING",
		string(fp),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record fingerprint: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	// Zero affected rows means the fingerprint was already present.
	return affected == 0, nil
}

// Count returns the number of recorded fingerprints.
// In pass-through mode it returns zero.
func (s *SeenDB) Count(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, nil
	}

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM seen_images").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fingerprints: %w", err)
	}
	return count, nil
}
