// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/KDigitalAi/Assessments/internal/database"
)

// Open returns a migrated SQLite database living in t.TempDir().
func Open(t *testing.T) *sql.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "assessments.db")

	if err := database.Migrate(database.DriverSQLite, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := database.Connect(context.Background(), database.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateContentTables creates the upstream chunk tables the catalog reads.
// In production they belong to the ingestion service.
func CreateContentTables(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, ddl := range []string{
		`CREATE TABLE pdf_embeddings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pdf_id TEXT,
			pdf_title TEXT,
			content TEXT
		)`,
		`CREATE TABLE video_embeddings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			video_id TEXT,
			video_title TEXT,
			content TEXT
		)`,
	} {
		if _, err := db.Exec(ddl); err != nil {
			t.Fatalf("create content table: %v", err)
		}
	}
}
