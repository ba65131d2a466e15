package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// RunRepository implements models.Repository[*models.Run] for build history.
//
// Per-track verdicts live in run_tracks and are rewritten whole on every save.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `
	id, sequence, source, playlist_name, service, guided, status, total,
	resolved, failed, playlist_id, playlist_url, error_message,
	created_at, updated_at, deleted_at`

// Create inserts a new run and its tracks with generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = tx.Exec(query,
		run.ID(),
		run.Sequence(),
		run.Source(),
		run.PlaylistName(),
		run.Service(),
		run.Guided(),
		string(run.Status()),
		run.Total(),
		run.Resolved(),
		run.Failed(),
		run.PlaylistID(),
		run.PlaylistURL(),
		run.ErrorMessage(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := writeRunTracks(tx, run); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// Get retrieves a run and its tracks by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	tracks, err := r.tracks(id)
	if err != nil {
		return nil, err
	}
	run.SetTracks(tracks)

	return run, nil
}

// Update saves the status, counts, playlist and tracks of an existing run
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE runs
		SET playlist_name = ?, status = ?, total = ?, resolved = ?, failed = ?,
			playlist_id = ?, playlist_url = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := tx.Exec(query,
		run.PlaylistName(),
		string(run.Status()),
		run.Total(),
		run.Resolved(),
		run.Failed(),
		run.PlaylistID(),
		run.PlaylistURL(),
		run.ErrorMessage(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID())
	}

	if _, err := tx.Exec("DELETE FROM run_tracks WHERE run_id = ?", run.ID()); err != nil {
		return fmt.Errorf("failed to clear run tracks: %w", err)
	}
	if err := writeRunTracks(tx, run); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// List retrieves runs newest first, without their tracks.
//
// Supported criteria: "service", "status", "source" (strings) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	for _, key := range []string{"service", "status", "source"} {
		if value, ok := criteria[key].(string); ok && value != "" {
			query += fmt.Sprintf(" AND %s = ?", key)
			args = append(args, value)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func (r *RunRepository) tracks(runID string) ([]models.RunTrack, error) {
	rows, err := r.db.Query(`
		SELECT position, artist, title, tier, catalog_id
		FROM run_tracks
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.RunTrack
	for rows.Next() {
		var (
			track models.RunTrack
			tier  string
		)
		if err := rows.Scan(&track.Position, &track.Artist, &track.Title, &tier, &track.CatalogID); err != nil {
			return nil, fmt.Errorf("failed to scan run track: %w", err)
		}
		if track.Tier, err = models.ParseTier(tier); err != nil {
			return nil, fmt.Errorf("failed to scan run track: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

func writeRunTracks(tx *sql.Tx, run *models.Run) error {
	if len(run.Tracks()) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_tracks (run_id, position, artist, title, tier, catalog_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run track insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range run.Tracks() {
		if _, err := stmt.Exec(run.ID(), t.Position, t.Artist, t.Title, t.Tier.String(), t.CatalogID); err != nil {
			return fmt.Errorf("failed to insert run track %d: %w", t.Position, err)
		}
	}

	return nil
}

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		id           string
		sequence     int
		source       string
		playlistName string
		service      string
		guided       bool
		status       string
		total        int
		resolved     int
		failed       int
		playlistID   string
		playlistURL  string
		errorMessage string
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &source, &playlistName, &service, &guided, &status, &total,
		&resolved, &failed, &playlistID, &playlistURL, &errorMessage, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	run := models.NewRun(sequence, source, playlistName, service, guided)
	run.SetID(id)
	run.SetStatus(models.RunStatus(status), nil)
	run.SetCounts(total, resolved, failed)
	run.SetPlaylist(playlistID, playlistURL)
	run.SetErrorMessage(errorMessage)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
