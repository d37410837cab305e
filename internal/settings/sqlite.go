package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

var migrations = []string{
	`CREATE TABLE options (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE post_meta (
		post_id INTEGER NOT NULL,
		meta_key TEXT NOT NULL,
		meta_value TEXT NOT NULL,
		PRIMARY KEY (post_id, meta_key)
	)`,
}

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, zero CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the settings database at path, creating it when
// missing, and brings the schema up to date. ":memory:" keeps everything in
// process.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn, err := dataSource(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: an in-memory database is per connection, and SQLite
	// has a single writer anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// dataSource prepares the on-disk file (0600, parent dir 0700) and returns
// the DSN with busy timeout and WAL pragmas.
func dataSource(path string) (string, error) {
	if path == memoryPath {
		return memoryPath, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating database directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("creating database file: %w", err)
	}
	_ = f.Close()

	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	return path + "?" + q.Encode(), nil
}

// migrate applies each pending migration in its own transaction together
// with its schema_version row.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var applied int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&applied); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for version := applied + 1; version <= len(migrations); version++ {
		if err := s.applyMigration(version); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) applyMigration(version int) error {
	slog.Info("applying settings migration", "version", version)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(migrations[version-1]); err != nil {
		return fmt.Errorf("migration %d: %w", version, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording migration %d: %w", version, err)
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Settings record ---

func (s *SQLiteStore) Load(ctx context.Context) (Record, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM options WHERE name = ?", Name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("loading settings: %w", err)
	}

	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Record{}, fmt.Errorf("decoding settings: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) Save(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO options (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		Name, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM options WHERE name = ?", Name); err != nil {
		return fmt.Errorf("clearing settings: %w", err)
	}
	return nil
}

// --- Post meta ---

func (s *SQLiteStore) OptIn(ctx context.Context, postID int64) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT meta_value FROM post_meta WHERE post_id = ? AND meta_key = ?",
		postID, OptInMetaKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading opt-in flag: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) SetOptIn(ctx context.Context, postID int64, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO post_meta (post_id, meta_key, meta_value) VALUES (?, ?, ?)
		ON CONFLICT(post_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`,
		postID, OptInMetaKey, value)
	if err != nil {
		return fmt.Errorf("writing opt-in flag: %w", err)
	}
	return nil
}
