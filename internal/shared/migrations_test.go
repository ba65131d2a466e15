package shared

import (
	"path/filepath"
	"testing"
)

func TestMigrations(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) < 2 {
			t.Fatalf("expected at least two migrations, got %d", len(migrations))
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}
	})

	t.Run("RunMigrations and rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if v, err := MigrationVersion(db); err != nil || v != 1 {
			t.Fatalf("expected version 1 after migrating, got %d (%v)", v, err)
		}

		if _, err := db.Exec("SELECT 1 FROM run_tracks LIMIT 1"); err != nil {
			t.Errorf("run_tracks table should exist after migrations: %v", err)
		}

		var seq int
		if err := db.QueryRow("SELECT value FROM runs_sequence WHERE id = 1").Scan(&seq); err != nil || seq != 0 {
			t.Errorf("expected sequence seeded at 0, got %d (%v)", seq, err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM run_tracks LIMIT 1"); err == nil {
			t.Error("run_tracks table should be gone after rollback")
		}
		if v, _ := MigrationVersion(db); v != 0 {
			t.Errorf("expected version 0 after rollback, got %d", v)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback first migration: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing is left to roll back")
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		for i := 0; i < 2; i++ {
			if err := RunMigrations(db); err != nil {
				t.Fatalf("run %d failed: %v", i+1, err)
			}
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})

	t.Run("OpenDatabase", func(t *testing.T) {
		db, err := OpenDatabase(DatabaseConfig{Path: filepath.Join(t.TempDir(), "plx.db"), MaxOpenConns: 1, MaxIdleConns: 1})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("SELECT 1 FROM runs LIMIT 1"); err != nil {
			t.Errorf("runs table should exist: %v", err)
		}
	})
}
