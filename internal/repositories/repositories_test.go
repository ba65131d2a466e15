package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// every connection to :memory: is a new database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestRun(source string) *models.Run {
	run := models.NewRun(0, source, "Radio 1 Playlist", "ytmusic", false)
	run.RecordBatch(&models.BatchResult{
		Matches: []models.TrackMatch{
			{Position: 0, Query: models.Query{Artist: "Adele", Title: "Hello"}, Verdict: models.Matched(models.TierExact, models.Candidate{CatalogID: "v1"})},
			{Position: 1, Query: models.Query{Artist: "Band", Title: "Song"}, Verdict: models.NoMatch()},
		},
		Resolved: 1,
	})
	return run
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun("https://www.bbc.co.uk/sounds/play/live:bbc_radio_one")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun("https://www.bbc.co.uk/a")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if retrieved.Source() != run.Source() || retrieved.Service() != "ytmusic" || retrieved.Status() != models.RunPending {
			t.Errorf("unexpected run %+v", retrieved)
		}
		if retrieved.Total() != 2 || retrieved.Resolved() != 1 {
			t.Errorf("expected counts 2/1, got %d/%d", retrieved.Total(), retrieved.Resolved())
		}

		tracks := retrieved.Tracks()
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		want := models.RunTrack{Position: 0, Artist: "Adele", Title: "Hello", Tier: models.TierExact, CatalogID: "v1"}
		if tracks[0] != want {
			t.Errorf("got %+v, want %+v", tracks[0], want)
		}
		if tracks[1].Tier != models.TierNoMatch || tracks[1].CatalogID != "" {
			t.Errorf("unexpected second track %+v", tracks[1])
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun("https://www.bbc.co.uk/a")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.SetPlaylist("PL1", "https://music.youtube.com/playlist?list=PL1")
		run.SetStatus(models.RunCompleted, nil)
		run.SetTracks(run.Tracks()[:1])

		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if retrieved.Status() != models.RunCompleted || retrieved.PlaylistID() != "PL1" {
			t.Errorf("unexpected run after update %+v", retrieved)
		}
		if len(retrieved.Tracks()) != 1 {
			t.Errorf("expected tracks to be rewritten, got %d", len(retrieved.Tracks()))
		}
	})

	t.Run("Failed Status", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun(0, "https://www.bbc.co.uk/a", "", "spotify", true)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.SetStatus(models.RunFailed, errors.New("not authenticated"))
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if retrieved.ErrorMessage() != "not authenticated" || !retrieved.Guided() {
			t.Errorf("unexpected run %+v", retrieved)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun("https://www.bbc.co.uk/a")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}

		if _, err := repo.Get(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound after delete, got %v", err)
		}

		if err := repo.Delete(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound deleting twice, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for _, source := range []string{"https://www.bbc.co.uk/a", "https://www.bbc.co.uk/b", "https://www.bbc.co.uk/c"} {
			if err := repo.Create(newTestRun(source)); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}
		spotify := models.NewRun(0, "https://www.bbc.co.uk/d", "", "spotify", false)
		if err := repo.Create(spotify); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		runs, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 4 {
			t.Fatalf("expected 4 runs, got %d", len(runs))
		}
		if runs[0].Sequence() != 4 || runs[3].Sequence() != 1 {
			t.Errorf("expected newest first, got %d..%d", runs[0].Sequence(), runs[3].Sequence())
		}
		if runs[0].Tracks() != nil {
			t.Error("list should not load tracks")
		}

		runs, err = repo.List(map[string]any{"service": "ytmusic", "limit": 2})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 || runs[0].Source() != "https://www.bbc.co.uk/c" {
			t.Errorf("unexpected filtered runs %d", len(runs))
		}
	})

	t.Run("Errors", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)

		t.Run("Get NotFound", func(t *testing.T) {
			if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrRunNotFound) {
				t.Errorf("expected ErrRunNotFound, got %v", err)
			}
		})

		t.Run("Update NotFound", func(t *testing.T) {
			run := newTestRun("https://www.bbc.co.uk/a")
			run.SetID("nonexistent-id")
			if err := repo.Update(run); !errors.Is(err, shared.ErrRunNotFound) {
				t.Errorf("expected ErrRunNotFound, got %v", err)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			run := models.NewRun(0, "", "", "ytmusic", false)
			if err := repo.Create(run); err == nil {
				t.Fatal("expected validation error for empty source")
			}
		})
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	next := func(t *testing.T, table string, commit bool) (int, error) {
		t.Helper()
		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("failed to begin transaction: %v", err)
		}
		defer tx.Rollback()

		seq, err := NextSequence(tx, table)
		if err == nil && commit {
			if err := tx.Commit(); err != nil {
				t.Fatalf("failed to commit: %v", err)
			}
		}
		return seq, err
	}

	t.Run("increments", func(t *testing.T) {
		for want := 1; want <= 2; want++ {
			got, err := next(t, "runs", true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("expected sequence %d, got %d", want, got)
			}
		}
	})

	t.Run("rollback keeps the number", func(t *testing.T) {
		if _, err := next(t, "runs", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := next(t, "runs", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 3 {
			t.Errorf("expected sequence 3 after a rollback, got %d", got)
		}
	})

	t.Run("missing table", func(t *testing.T) {
		if _, err := next(t, "missing", false); err == nil {
			t.Error("expected error for table without sequence")
		}
	})
}
