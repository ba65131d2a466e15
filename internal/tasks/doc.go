// Package tasks builds playlists from scraped tracklists with real-time progress reporting.
//
// # Core Operations
//
// [Engine] exposes three operations:
//
//  1. [Engine.Build] : tracklist page → catalog playlist
//     - Logs in to the catalog; nothing is searched until this succeeds
//     - Scrapes the tracklist with the configured selector schema
//     - Matches every track through matcher.Batch (exact, normalized, then guided)
//     - Writes the resolved tracks unless this is a dry run
//
//  2. [Engine.Push] : write resolved catalog ids to a playlist
//     - Creates a new playlist, or with replace overwrites the latest owned
//     playlist of the same name (entries cleared, description rewritten)
//
//  3. [Engine.Search] : match a single query and return the raw candidates
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # History
//
// The optional [RunRecorder] (repositories.RunRepository) stores every build with
// its per-track verdicts. History is write-only from the engine's point of view:
// earlier runs never influence matching.
package tasks
