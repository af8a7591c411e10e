package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/edukits/curriculum-builder-go/internal/config"
	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
)

// SQLiteStore persists records in a single SQLite database file.
type SQLiteStore struct {
	conn *sql.DB
	path string
	ttl  time.Duration
}

// NewSQLiteStore opens (or creates) the database at dbPath, applies
// pragmas and initializes the schema. ttl <= 0 disables expiry.
func NewSQLiteStore(dbPath string, ttl time.Duration) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(config.DatabaseConnMaxLifetime)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", config.DatabaseBusyTimeout.Milliseconds()),
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{conn: conn, path: dbPath, ttl: ttl}, nil
}

// NewTestSQLiteStore creates an in-memory SQLite store for tests.
func NewTestSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStore(":memory:", 0)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// CreateContext inserts a curriculum context and returns its id.
func (s *SQLiteStore) CreateContext(ctx context.Context, record *CurriculumContext) (string, error) {
	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `INSERT INTO contexts (id, subject, grade_level, topic, context_text, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.conn.ExecContext(ctx, query,
		id, record.Subject, record.GradeLevel, record.Topic, record.ContextText, createdAt.Unix())
	if err != nil {
		return "", apperrors.NewStoreError("create_context", err)
	}
	return id, nil
}

// GetContext returns the context with the given id, or (nil, nil) when
// absent or expired.
func (s *SQLiteStore) GetContext(ctx context.Context, id string) (*CurriculumContext, error) {
	query := `SELECT id, subject, grade_level, topic, context_text, created_at FROM contexts WHERE id = ? AND created_at > ?`

	var record CurriculumContext
	var createdAt int64
	err := s.conn.QueryRowContext(ctx, query, id, s.ttlCutoff()).Scan(
		&record.ID, &record.Subject, &record.GradeLevel, &record.Topic, &record.ContextText, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get_context", err)
	}
	record.CreatedAt = time.Unix(createdAt, 0)
	return &record, nil
}

// CreateScheme inserts a scheme and returns its id.
func (s *SQLiteStore) CreateScheme(ctx context.Context, record *Scheme) (string, error) {
	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return "", apperrors.NewStoreError("create_scheme", err)
	}

	query := `INSERT INTO schemes (id, payload, content, context_id, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.conn.ExecContext(ctx, query, id, string(payload), record.Content, record.ContextID, createdAt.Unix()); err != nil {
		return "", apperrors.NewStoreError("create_scheme", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetScheme(ctx context.Context, id string) (*Scheme, error) {
	query := `SELECT id, payload, content, context_id, created_at FROM schemes WHERE id = ? AND created_at > ?`
	return s.scanScheme(s.conn.QueryRowContext(ctx, query, id, s.ttlCutoff()), "get_scheme")
}

// GetSchemeByContext returns the most recent scheme for a context id.
func (s *SQLiteStore) GetSchemeByContext(ctx context.Context, contextID string) (*Scheme, error) {
	query := `SELECT id, payload, content, context_id, created_at FROM schemes
		WHERE context_id = ? AND created_at > ? ORDER BY created_at DESC LIMIT 1`
	return s.scanScheme(s.conn.QueryRowContext(ctx, query, contextID, s.ttlCutoff()), "get_scheme_by_context")
}

func (s *SQLiteStore) scanScheme(row *sql.Row, op string) (*Scheme, error) {
	var record Scheme
	var payload string
	var createdAt int64
	err := row.Scan(&record.ID, &payload, &record.Content, &record.ContextID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError(op, err)
	}
	if err := json.Unmarshal([]byte(payload), &record.Payload); err != nil {
		return nil, apperrors.NewStoreError(op, err)
	}
	record.CreatedAt = time.Unix(createdAt, 0)
	return &record, nil
}

// CreateLessonPlan inserts a lesson plan and returns its id.
func (s *SQLiteStore) CreateLessonPlan(ctx context.Context, record *LessonPlan) (string, error) {
	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return "", apperrors.NewStoreError("create_lesson_plan", err)
	}

	query := `INSERT INTO lesson_plans (id, scheme_id, payload, content, context_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.conn.ExecContext(ctx, query, id, record.SchemeID, string(payload), record.Content, record.ContextID, createdAt.Unix()); err != nil {
		return "", apperrors.NewStoreError("create_lesson_plan", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetLessonPlan(ctx context.Context, id string) (*LessonPlan, error) {
	query := `SELECT id, scheme_id, payload, content, context_id, created_at FROM lesson_plans WHERE id = ? AND created_at > ?`
	return s.scanLessonPlan(s.conn.QueryRowContext(ctx, query, id, s.ttlCutoff()), "get_lesson_plan")
}

func (s *SQLiteStore) GetLessonPlanByContext(ctx context.Context, contextID string) (*LessonPlan, error) {
	query := `SELECT id, scheme_id, payload, content, context_id, created_at FROM lesson_plans
		WHERE context_id = ? AND created_at > ? ORDER BY created_at DESC LIMIT 1`
	return s.scanLessonPlan(s.conn.QueryRowContext(ctx, query, contextID, s.ttlCutoff()), "get_lesson_plan_by_context")
}

func (s *SQLiteStore) scanLessonPlan(row *sql.Row, op string) (*LessonPlan, error) {
	var record LessonPlan
	var payload string
	var createdAt int64
	err := row.Scan(&record.ID, &record.SchemeID, &payload, &record.Content, &record.ContextID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError(op, err)
	}
	if err := json.Unmarshal([]byte(payload), &record.Payload); err != nil {
		return nil, apperrors.NewStoreError(op, err)
	}
	record.CreatedAt = time.Unix(createdAt, 0)
	return &record, nil
}

// CreateLessonNotes inserts lesson notes and returns their id.
func (s *SQLiteStore) CreateLessonNotes(ctx context.Context, record *LessonNotes) (string, error) {
	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return "", apperrors.NewStoreError("create_lesson_notes", err)
	}

	query := `INSERT INTO lesson_notes (id, scheme_id, lesson_plan_id, payload, content, context_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.conn.ExecContext(ctx, query, id, record.SchemeID, record.LessonPlanID, string(payload), record.Content, record.ContextID, createdAt.Unix()); err != nil {
		return "", apperrors.NewStoreError("create_lesson_notes", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetLessonNotes(ctx context.Context, id string) (*LessonNotes, error) {
	query := `SELECT id, scheme_id, lesson_plan_id, payload, content, context_id, created_at FROM lesson_notes WHERE id = ? AND created_at > ?`
	return s.scanLessonNotes(s.conn.QueryRowContext(ctx, query, id, s.ttlCutoff()), "get_lesson_notes")
}

func (s *SQLiteStore) GetLessonNotesByContext(ctx context.Context, contextID string) (*LessonNotes, error) {
	query := `SELECT id, scheme_id, lesson_plan_id, payload, content, context_id, created_at FROM lesson_notes
		WHERE context_id = ? AND created_at > ? ORDER BY created_at DESC LIMIT 1`
	return s.scanLessonNotes(s.conn.QueryRowContext(ctx, query, contextID, s.ttlCutoff()), "get_lesson_notes_by_context")
}

func (s *SQLiteStore) scanLessonNotes(row *sql.Row, op string) (*LessonNotes, error) {
	var record LessonNotes
	var payload string
	var createdAt int64
	err := row.Scan(&record.ID, &record.SchemeID, &record.LessonPlanID, &payload, &record.Content, &record.ContextID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError(op, err)
	}
	if err := json.Unmarshal([]byte(payload), &record.Payload); err != nil {
		return nil, apperrors.NewStoreError(op, err)
	}
	record.CreatedAt = time.Unix(createdAt, 0)
	return &record, nil
}

// Cleanup deletes expired rows from all tables and returns the total
// number of rows removed.
func (s *SQLiteStore) Cleanup(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-s.ttl).Unix()
	var total int64
	for _, table := range []string{"lesson_notes", "lesson_plans", "schemes", "contexts"} {
		result, err := s.conn.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE created_at <= ?", table), cutoff)
		if err != nil {
			return total, apperrors.NewStoreError("cleanup", err)
		}
		if n, err := result.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}

// ttlCutoff returns the Unix timestamp below which rows are considered
// expired. Zero when no TTL is configured, so every row qualifies.
func (s *SQLiteStore) ttlCutoff() int64 {
	if s.ttl <= 0 {
		return 0
	}
	return time.Now().Add(-s.ttl).Unix()
}
