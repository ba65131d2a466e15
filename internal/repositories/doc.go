// Package repositories implements SQLite persistence for build history.
//
// [RunRepository] implements models.Repository[*models.Run]. Runs are soft deleted
// via deleted_at timestamps and excluded from queries by default; the per-track
// verdicts of a run are stored in run_tracks and removed with it.
//
// Sequence numbers provide stable, human-readable ordering (run #42) independent of UUIDs and creation timestamps.
// [NextSequence] allocates them from a per-table counter inside the insert transaction.
package repositories
