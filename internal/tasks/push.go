package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// Push writes catalogIDs, in order, to the playlist named after tl.
//
// Without replace a new playlist is always created. With replace the most recent
// owned playlist carrying exactly that name is emptied and refilled, and its
// description rewritten; when there is none a new playlist is created instead.
// A failed description update is logged and leaves PushReport.Description empty.
func (e *Engine) Push(ctx context.Context, tl *models.Tracklist, catalogIDs []string, replace bool, progress chan<- ProgressUpdate) (*models.PushReport, error) {
	if len(catalogIDs) == 0 {
		return nil, fmt.Errorf("%w: nothing to add to %q", shared.ErrNoMatches, tl.Name)
	}

	report := &models.PushReport{Mode: models.PushCreated}

	var target *models.Playlist
	if replace {
		e.sendProgress(progress, findPlaylistUpdate(tl.Name))

		existing, err := e.findPlaylist(ctx, tl.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			target = existing
			report.Mode = models.PushReplaced
		} else {
			report.Mode = models.PushCreatedNoExisting
		}
	}

	if target == nil {
		created, err := e.catalog.CreatePlaylist(ctx, tl.Name, tl.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to create playlist %q: %w", tl.Name, err)
		}
		target = created
		report.Description = tl.Description
		e.sendProgress(progress, createPlaylistUpdate(target))
	} else {
		cut, err := e.clearPlaylist(ctx, target, progress)
		if err != nil {
			return nil, err
		}
		report.Cut = cut
	}

	e.sendProgress(progress, addTracksUpdate(target, len(catalogIDs)))
	if err := e.catalog.AddEntries(ctx, target.ID, catalogIDs); err != nil {
		return nil, fmt.Errorf("failed to add tracks to %q: %w", target.Name, err)
	}
	report.Pushed = len(catalogIDs)

	if report.Mode == models.PushReplaced {
		e.sendProgress(progress, updateDescriptionUpdate(target))
		err := e.catalog.UpdateMetadata(ctx, target.ID, models.PlaylistMeta{Description: tl.Description})
		if err != nil {
			e.logger.Warn("failed to update playlist description", "playlist", target.ID, "error", err)
		} else {
			report.Description = tl.Description
			target.Description = tl.Description
		}
	}

	target.TrackCount = report.Pushed
	report.Playlist = *target

	e.logger.Info("playlist written", "playlist", target.ID, "mode", report.Mode, "pushed", report.Pushed, "cut", report.Cut)
	return report, nil
}

// findPlaylist returns the last owned, non-deleted playlist named name, or nil.
func (e *Engine) findPlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	playlists, err := e.catalog.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	var found *models.Playlist
	for i := range playlists {
		p := &playlists[i]
		if p.Owned && !p.Deleted && p.Name == name {
			found = p
		}
	}
	return found, nil
}

func (e *Engine) clearPlaylist(ctx context.Context, pl *models.Playlist, progress chan<- ProgressUpdate) (int, error) {
	entries, err := e.catalog.PlaylistEntries(ctx, pl.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to read entries of %q: %w", pl.Name, err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	e.sendProgress(progress, clearPlaylistUpdate(pl, len(entries)))
	if err := e.catalog.RemoveEntries(ctx, pl.ID, entries); err != nil {
		return 0, fmt.Errorf("failed to clear %q: %w", pl.Name, err)
	}
	return len(entries), nil
}
