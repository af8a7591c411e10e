package store

import (
	"context"
	"database/sql"
	"fmt"
)

// initSchema creates all tables and indexes used by the SQLite store.
// Pragmas (WAL, busy_timeout) are configured in sqlite.go when the
// connection is opened.
func initSchema(db *sql.DB) error {
	if err := createContextsTable(db); err != nil {
		return err
	}
	if err := createSchemesTable(db); err != nil {
		return err
	}
	if err := createLessonPlansTable(db); err != nil {
		return err
	}
	return createLessonNotesTable(db)
}

func createContextsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS contexts (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		grade_level TEXT NOT NULL,
		topic TEXT NOT NULL,
		context_text TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_contexts_created_at ON contexts(created_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create contexts table: %w", err)
	}

	return nil
}

func createSchemesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS schemes (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		content TEXT NOT NULL,
		context_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schemes_context_id ON schemes(context_id);
	CREATE INDEX IF NOT EXISTS idx_schemes_created_at ON schemes(created_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create schemes table: %w", err)
	}

	return nil
}

func createLessonPlansTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS lesson_plans (
		id TEXT PRIMARY KEY,
		scheme_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		content TEXT NOT NULL,
		context_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lesson_plans_scheme_id ON lesson_plans(scheme_id);
	CREATE INDEX IF NOT EXISTS idx_lesson_plans_context_id ON lesson_plans(context_id);
	CREATE INDEX IF NOT EXISTS idx_lesson_plans_created_at ON lesson_plans(created_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create lesson_plans table: %w", err)
	}

	return nil
}

func createLessonNotesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS lesson_notes (
		id TEXT PRIMARY KEY,
		scheme_id TEXT NOT NULL,
		lesson_plan_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		content TEXT NOT NULL,
		context_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lesson_notes_lesson_plan_id ON lesson_notes(lesson_plan_id);
	CREATE INDEX IF NOT EXISTS idx_lesson_notes_context_id ON lesson_notes(context_id);
	CREATE INDEX IF NOT EXISTS idx_lesson_notes_created_at ON lesson_notes(created_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create lesson_notes table: %w", err)
	}

	return nil
}
