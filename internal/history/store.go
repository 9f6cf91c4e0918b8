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

	_ "modernc.org/sqlite"

	"vibecut/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. History is
// disposable, so a mismatch asks the operator to delete the database.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recordColumns = "id, status, format, width, height, framerate, clip_count, media_count, input_count, dropped_count, duration_seconds, compiler_version, output_bytes, error_kind, error_message, created_at, finished_at"

// Store persists render history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	dbPath := strings.TrimSpace(cfg.Paths.HistoryDB)
	if dbPath == "" {
		return nil, errors.New("history database path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
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
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset history)",
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

// Start records a render that has begun. CreatedAt defaults to now.
func (s *Store) Start(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("render id required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO renders (
            id, status, format, width, height, framerate, clip_count, media_count,
            compiler_version, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		StatusRunning,
		rec.Format,
		rec.Width,
		rec.Height,
		rec.Framerate,
		rec.ClipCount,
		rec.MediaCount,
		rec.CompilerVersion,
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert render: %w", err)
	}
	return nil
}

// Finish stores the outcome of a render started with Start.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE renders
         SET status = ?, input_count = ?, dropped_count = ?, duration_seconds = ?,
             output_bytes = ?, error_kind = ?, error_message = ?, finished_at = ?
         WHERE id = ?`,
		outcome.Status,
		outcome.InputCount,
		outcome.DroppedCount,
		outcome.Duration,
		outcome.OutputBytes,
		nullableString(outcome.ErrorKind),
		nullableString(outcome.ErrorMessage),
		time.Now().UTC().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("update render: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("render %s not found", id)
	}
	return nil
}

// Get fetches one render. It returns nil when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM renders WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get render: %w", err)
	}
	return rec, nil
}

// List returns the most recent renders, newest first. A non-positive limit
// returns every render.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM renders ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list renders: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Prune deletes finished renders created before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM renders WHERE status != ? AND created_at < ?`,
		StatusRunning,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("prune renders: %w", err)
	}
	return res.RowsAffected()
}

// MarkAbandoned fails renders left running by a previous process.
func (s *Store) MarkAbandoned(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE renders SET status = ?, error_kind = ?, error_message = ?, finished_at = ? WHERE status = ?`,
		StatusFailed,
		"unexpected",
		"render interrupted by service restart",
		time.Now().UTC().Format(timeLayout),
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned renders: %w", err)
	}
	return res.RowsAffected()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec         Record
		status      string
		errorKind   sql.NullString
		errorMsg    sql.NullString
		createdRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&rec.ID,
		&status,
		&rec.Format,
		&rec.Width,
		&rec.Height,
		&rec.Framerate,
		&rec.ClipCount,
		&rec.MediaCount,
		&rec.InputCount,
		&rec.DroppedCount,
		&rec.Duration,
		&rec.CompilerVersion,
		&rec.OutputBytes,
		&errorKind,
		&errorMsg,
		&createdRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	rec.ErrorKind = errorKind.String
	rec.ErrorMessage = errorMsg.String
	rec.CreatedAt = parseTime(createdRaw)
	if finishedRaw.Valid {
		if ts := parseTime(finishedRaw.String); !ts.IsZero() {
			rec.FinishedAt = &ts
		}
	}
	return &rec, nil
}

func parseTime(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
