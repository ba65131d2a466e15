package tasks

import (
	"fmt"

	"github.com/desertthunder/plx/internal/models"
)

// ProgressUpdate represents a progress event during a build.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Authenticate Phase = iota
	FetchTracklist
	SearchTracks
	MatchTracks
	FindPlaylist
	CreatePlaylist
	ClearPlaylist
	AddTracks
	UpdateDescription
)

func (p Phase) String() string {
	switch p {
	case Authenticate:
		return "authenticate"
	case FetchTracklist:
		return "fetch_tracklist"
	case SearchTracks:
		return "search_tracks"
	case MatchTracks:
		return "match_tracks"
	case FindPlaylist:
		return "find_playlist"
	case CreatePlaylist:
		return "create_playlist"
	case ClearPlaylist:
		return "clear_playlist"
	case AddTracks:
		return "add_tracks"
	case UpdateDescription:
		return "update_description"
	default:
		return ""
	}
}

func authenticateUpdate(service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Logging in to %s...", service),
	}
}

func fetchingTracklistUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracklist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching tracklist from %s...", url),
	}
}

func foundTracklistUpdate(tl *models.Tracklist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracklist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found tracklist: %s (%d tracks)", tl.Name, len(tl.Tracks)),
		Data:    tl,
	}
}

func searchTracksUpdate(step, total int, q models.Query) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searched %s", step, total, q.Label()),
	}
}

func matchTracksUpdate(step, total int, q models.Query) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Matched %s", step, total, q.Label()),
	}
}

func findPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FindPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Looking for existing playlist %q...", name),
	}
}

func createPlaylistUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func clearPlaylistUpdate(pl *models.Playlist, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClearPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removing %d tracks from %s...", entries, pl.Name),
		Data:    pl,
	}
}

func addTracksUpdate(pl *models.Playlist, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s...", count, pl.Name),
	}
}

func updateDescriptionUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdateDescription,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Updating description of %s...", pl.Name),
	}
}
