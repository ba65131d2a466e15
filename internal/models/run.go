package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a [Run].
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunMatched   RunStatus = "matched" // matching finished, nothing pushed (dry run)
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run records one build of a playlist from a tracklist.
//
// The matcher never reads runs back: they are history, not a match cache.
type Run struct {
	id           string
	sequence     int
	source       string
	playlistName string
	service      string
	guided       bool
	status       RunStatus
	total        int
	resolved     int
	failed       int
	playlistID   string
	playlistURL  string
	errorMessage string
	tracks       []RunTrack
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// RunTrack is the verdict recorded for one position of a run.
type RunTrack struct {
	Position  int
	Artist    string
	Title     string
	Tier      Tier
	CatalogID string
}

// NewRun creates a pending run for the given source page and catalog service.
func NewRun(sequence int, source, playlistName, service string, guided bool) *Run {
	now := time.Now()
	return &Run{
		sequence:     sequence,
		source:       source,
		playlistName: playlistName,
		service:      service,
		guided:       guided,
		status:       RunPending,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (r *Run) ID() string { return r.id }
func (r *Run) Sequence() int { return r.sequence }
func (r *Run) Source() string { return r.source }
func (r *Run) PlaylistName() string { return r.playlistName }
func (r *Run) Service() string { return r.service }
func (r *Run) Guided() bool { return r.guided }
func (r *Run) Status() RunStatus { return r.status }
func (r *Run) Total() int { return r.total }
func (r *Run) Resolved() int { return r.resolved }
func (r *Run) Failed() int { return r.failed }
func (r *Run) PlaylistID() string { return r.playlistID }
func (r *Run) PlaylistURL() string { return r.playlistURL }
func (r *Run) ErrorMessage() string { return r.errorMessage }
func (r *Run) Tracks() []RunTrack { return r.tracks }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time { return r.deletedAt }
func (r *Run) SetID(id string) { r.id = id }
func (r *Run) SetSequence(seq int) { r.sequence = seq }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }
func (r *Run) SetTracks(tracks []RunTrack) { r.tracks = tracks }
func (r *Run) SetErrorMessage(msg string) { r.errorMessage = msg }

// SetStatus moves the run to status and records the error message, if any.
func (r *Run) SetStatus(status RunStatus, err error) {
	r.status = status
	if err != nil {
		r.errorMessage = err.Error()
	}
	r.updatedAt = time.Now()
}

// SetCounts stores the totals of a run.
func (r *Run) SetCounts(total, resolved, failed int) {
	r.total, r.resolved, r.failed = total, resolved, failed
}

// SetPlaylist stores where the run was pushed to.
func (r *Run) SetPlaylist(id, url string) {
	r.playlistID, r.playlistURL = id, url
}

// RecordBatch copies the counts and per-track verdicts of a finished batch into the run.
func (r *Run) RecordBatch(b *BatchResult) {
	r.SetCounts(b.Total(), b.Resolved, b.SearchFailures)
	tracks := make([]RunTrack, 0, len(b.Matches))
	for _, m := range b.Matches {
		tracks = append(tracks, RunTrack{
			Position:  m.Position,
			Artist:    m.Query.Artist,
			Title:     m.Query.Title,
			Tier:      m.Verdict.Tier,
			CatalogID: m.Verdict.CatalogID,
		})
	}
	r.tracks = tracks
}

// Validate checks the required fields of a run.
func (r *Run) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run id is required")
	}
	if r.source == "" {
		return fmt.Errorf("run source is required")
	}
	if r.service == "" {
		return fmt.Errorf("run service is required")
	}
	switch r.status {
	case RunPending, RunMatched, RunCompleted, RunFailed:
	default:
		return fmt.Errorf("invalid run status: %q", r.status)
	}
	return nil
}
