package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"kudos/internal/achievement"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the journal database after a mismatch.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one presentation record. AckedAt and the mark-read fields stay
// empty until the user dismisses the notification.
type Entry struct {
	ID              string
	NotificationID  string
	AchievementID   string
	AchievementType achievement.Type
	Title           string
	ShownAt         time.Time
	AckedAt         time.Time
	MarkReadOK      bool
	MarkReadError   string
}

// Acknowledged reports whether the presentation has been dismissed.
func (e Entry) Acknowledged() bool {
	return !e.AckedAt.IsZero()
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordShown inserts a presentation row when a notification is shown.
func (s *Store) RecordShown(ctx context.Context, presentationID string, item achievement.Notification, shownAt time.Time) error {
	return s.execWithRetry(ctx,
		`INSERT INTO presentations (id, notification_id, achievement_id, achievement_type, title, shown_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		presentationID, item.ID, item.AchievementID, string(item.Achievement.Type),
		item.Achievement.Title, shownAt.UTC(),
	)
}

// RecordAcknowledged marks the presentation dismissed and stores the
// mark-read outcome. markReadErr empty means the remote call succeeded.
func (s *Store) RecordAcknowledged(ctx context.Context, presentationID string, ackedAt time.Time, markReadErr error) error {
	ok := 1
	msg := ""
	if markReadErr != nil {
		ok = 0
		msg = markReadErr.Error()
	}
	return s.execWithRetry(ctx,
		`UPDATE presentations SET acked_at = ?, mark_read_ok = ?, mark_read_error = ? WHERE id = ?`,
		ackedAt.UTC(), ok, msg, presentationID,
	)
}

// Recent returns the newest presentations, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, notification_id, achievement_id, achievement_type, title, shown_at,
		        acked_at, mark_read_ok, mark_read_error
		 FROM presentations ORDER BY shown_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query presentations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			achType    string
			ackedAt    sql.NullTime
			markReadOK sql.NullInt64
		)
		if err := rows.Scan(&entry.ID, &entry.NotificationID, &entry.AchievementID, &achType,
			&entry.Title, &entry.ShownAt, &ackedAt, &markReadOK, &entry.MarkReadError); err != nil {
			return nil, fmt.Errorf("scan presentation: %w", err)
		}
		entry.AchievementType = achievement.Type(achType)
		if ackedAt.Valid {
			entry.AckedAt = ackedAt.Time
		}
		entry.MarkReadOK = markReadOK.Valid && markReadOK.Int64 == 1
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presentations: %w", err)
	}
	return entries, nil
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
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
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

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
