package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMigrate_SQLiteIsRepeatable(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "m.db")

	if err := Migrate(DriverSQLite, dsn); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := Migrate(DriverSQLite, dsn); err != nil {
		t.Fatalf("second migrate should be a no-op, got: %v", err)
	}

	db, err := Connect(context.Background(), DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"courses", "assessments", "skill_assessment_questions"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s, got: %v", table, err)
		}
	}
}

func TestMigrate_SourceBackRefIsUnique(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "u.db")
	if err := Migrate(DriverSQLite, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := Connect(context.Background(), DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	insert := `INSERT INTO assessments (id, title, blueprint) VALUES ($1, $2, $3)`
	if _, err := db.Exec(insert, "a-1", "first", `{"source_id":"doc-1"}`); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Exec(insert, "a-2", "second", `{"source_id":"doc-1"}`); err == nil {
		t.Fatal("expected unique violation for duplicate source_id")
	}
	if _, err := db.Exec(insert, "a-3", "legacy", `{"pdf_id":"doc-1"}`); err != nil {
		t.Errorf("expected blueprint without source_id to be allowed, got: %v", err)
	}
}

func TestMigrate_UnknownDriver(t *testing.T) {
	if err := Migrate("mysql", "whatever"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
