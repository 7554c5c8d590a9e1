package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different scribe
// version.
var ErrSchemaMismatch = errors.New("history schema version mismatch")

// Entry is one stored transcription.
type Entry struct {
	ID             string
	SessionID      string
	Model          string
	AudioPath      string
	Language       string
	AudioDuration  float64
	ProcessingTime float64
	Transcript     string
	Payload        string
	CompletedAt    time.Time
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db         *sql.DB
	path       string
	maxEntries int
}

// Open opens (or creates) the history database at path, retaining at most
// maxEntries rows.
func Open(ctx context.Context, path string, maxEntries int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	store := &Store{db: db, path: path, maxEntries: maxEntries}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Add inserts an entry, assigning an ID when empty, and prunes rows beyond
// the cap, oldest first.
func (s *Store) Add(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcriptions
			(id, session_id, model, audio_path, language, audio_duration, processing_time, transcript, payload, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SessionID, entry.Model, entry.AudioPath, entry.Language,
		entry.AudioDuration, entry.ProcessingTime, entry.Transcript, entry.Payload,
		entry.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert transcription: %w", err)
	}
	if err := s.prune(ctx); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (s *Store) prune(ctx context.Context) error {
	if s.maxEntries <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM transcriptions WHERE id NOT IN (
			SELECT id FROM transcriptions ORDER BY completed_at DESC, id DESC LIMIT ?
		)`, s.maxEntries)
	if err != nil {
		return fmt.Errorf("prune transcriptions: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first, up to limit (or all
// when limit <= 0). Payloads are omitted to keep listings light.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, session_id, model, audio_path, language, audio_duration, processing_time, transcript, completed_at
		FROM transcriptions ORDER BY completed_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var completed string
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Model, &entry.AudioPath,
			&entry.Language, &entry.AudioDuration, &entry.ProcessingTime, &entry.Transcript,
			&completed); err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		entry.CompletedAt, _ = time.Parse(time.RFC3339Nano, completed)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcriptions: %w", err)
	}
	return entries, nil
}

// Get returns one entry with its full payload. A unique id prefix is
// accepted in place of the full id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, model, audio_path, language, audio_duration, processing_time, transcript, payload, completed_at
		FROM transcriptions WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2`, id, escapeLikePrefix(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get transcription: %w", err)
	}
	defer rows.Close()

	var entry Entry
	var completed string
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get transcription: %w", err)
		}
		return nil, nil
	}
	if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Model, &entry.AudioPath,
		&entry.Language, &entry.AudioDuration, &entry.ProcessingTime, &entry.Transcript,
		&entry.Payload, &completed); err != nil {
		return nil, fmt.Errorf("get transcription: %w", err)
	}
	if rows.Next() {
		return nil, fmt.Errorf("transcription id %q is ambiguous", id)
	}
	entry.CompletedAt, _ = time.Parse(time.RFC3339Nano, completed)
	return &entry, nil
}

// escapeLikePrefix neutralizes LIKE metacharacters so an id prefix matches
// literally instead of as a pattern.
func escapeLikePrefix(prefix string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(prefix)
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM transcriptions").Scan(&count); err != nil {
		return 0, fmt.Errorf("count transcriptions: %w", err)
	}
	return count, nil
}

// Clear removes every stored entry and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transcriptions")
	if err != nil {
		return 0, fmt.Errorf("clear transcriptions: %w", err)
	}
	removed, _ := res.RowsAffected()
	return removed, nil
}
