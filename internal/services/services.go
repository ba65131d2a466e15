package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

const (
	ServiceYouTube = "ytmusic"
	ServiceSpotify = "spotify"
)

// Catalog is a music service that can be searched and written to.
type Catalog interface {
	// Name returns the display name of the service.
	Name() string

	// Authenticate prepares the client for authenticated calls. It must
	// succeed before any other method is used.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Search runs a free-text search and returns at most maxResults results in
	// service ranking order.
	Search(ctx context.Context, query string, maxResults int) ([]models.Candidate, error)

	// GetPlaylists lists the playlists in the user's library.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// CreatePlaylist creates an empty private playlist.
	CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error)

	// PlaylistEntries lists the items of a playlist.
	PlaylistEntries(ctx context.Context, playlistID string) ([]models.PlaylistEntry, error)

	// RemoveEntries deletes items from a playlist.
	RemoveEntries(ctx context.Context, playlistID string, entries []models.PlaylistEntry) error

	// AddEntries appends catalog ids to a playlist in order.
	AddEntries(ctx context.Context, playlistID string, catalogIDs []string) error

	// UpdateMetadata edits the name and/or description of a playlist.
	UpdateMetadata(ctx context.Context, playlistID string, meta models.PlaylistMeta) error
}

// NewCatalog builds the adapter selected by config.Catalog.Service. The
// returned catalog is not yet authenticated; see [Credentials].
func NewCatalog(config *shared.Config) (Catalog, error) {
	switch config.Catalog.Service {
	case ServiceYouTube, "":
		return NewYouTubeService(config.Credentials.YouTube.ProxyURL, nil), nil
	case ServiceSpotify:
		return NewSpotifyService(SpotifyCredentials(config.Credentials.Spotify))
	default:
		return nil, fmt.Errorf("%w: unknown catalog service %q", shared.ErrInvalidConfig, config.Catalog.Service)
	}
}

// Credentials returns the Authenticate argument for the configured service.
func Credentials(config *shared.Config) map[string]string {
	if config.Catalog.Service == ServiceSpotify {
		return SpotifyCredentials(config.Credentials.Spotify)
	}
	return map[string]string{"auth_file": config.Credentials.YouTube.AuthFile}
}

func chunk(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
