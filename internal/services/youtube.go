// YouTube Music [Catalog] implementation
//
// Communicates with the FastAPI proxy server (music/) running on port 8080.
// The proxy wraps the ytmusicapi Python library.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

const (
	defaultYTBaseURL  = "http://localhost:8080"
	ytPlaylistURL     = "https://music.youtube.com/playlist?list="
	ytPrivacyPrivate  = "PRIVATE"
	ytLikedPlaylistID = "LM"
)

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeSearchResult is one item of GET /api/search.
type YouTubeSearchResult struct {
	ResultType string          `json:"resultType"`
	VideoID    string          `json:"videoId"`
	Title      string          `json:"title"`
	Artists    []YouTubeArtist `json:"artists"`
	Album      *youtubeAlbum   `json:"album"`
	Duration   string          `json:"duration"`
}

// YouTubeTrack is a playlist item; SetVideoID identifies the item for removal.
type YouTubeTrack struct {
	VideoID    string          `json:"videoId"`
	SetVideoID string          `json:"setVideoId"`
	Title      string          `json:"title"`
	Artists    []YouTubeArtist `json:"artists"`
}

// YouTubePlaylist represents a playlist from YouTube Music.
type YouTubePlaylist struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Privacy     string         `json:"privacy"`
	TrackCount  int            `json:"trackCount"`
	Tracks      []YouTubeTrack `json:"tracks,omitempty"`
}

// YouTubeSetupResponse is returned by the proxy's browser auth setup endpoint.
type YouTubeSetupResponse struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
	AuthContent map[string]any `json:"auth_content"`
}

// YouTubeService implements [Catalog] for YouTube Music via the proxy.
type YouTubeService struct {
	proxy proxyClient
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string, client *http.Client) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &YouTubeService{
		proxy: proxyClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client},
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// Authenticate stores the auth file path sent with every request.
//
// Expects credentials["auth_file"] to contain the path to browser.json or oauth.json.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	authFile := credentials["auth_file"]
	if authFile == "" {
		return fmt.Errorf("%w: missing auth_file (run `plx auth youtube`)", shared.ErrMissingCredentials)
	}

	y.proxy.authFile = authFile
	return nil
}

func (y *YouTubeService) authenticated() error {
	if y.proxy.authFile == "" {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return nil
}

// Search calls GET /api/search?q={query}&filter=songs&limit={n}.
func (y *YouTubeService) Search(ctx context.Context, query string, maxResults int) ([]models.Candidate, error) {
	if err := y.authenticated(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("filter", "songs")
	params.Set("limit", strconv.Itoa(maxResults))

	var results []YouTubeSearchResult
	if err := y.proxy.do(ctx, http.MethodGet, "/api/search?"+params.Encode(), nil, &results); err != nil {
		return nil, err
	}

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	candidates := make([]models.Candidate, len(results))
	for i, r := range results {
		candidates[i] = models.Candidate{
			CatalogID: r.VideoID,
			Title:     r.Title,
			Artist:    joinArtists(r.Artists),
			Kind:      youtubeKind(r.ResultType),
		}
		if r.Album != nil {
			candidates[i].Album = r.Album.Name
		}
	}

	return candidates, nil
}

func youtubeKind(resultType string) models.Kind {
	switch resultType {
	case "song", "video":
		return models.KindTrack
	case "artist":
		return models.KindArtist
	case "album", "single", "ep":
		return models.KindAlbum
	case "playlist", "community_playlist", "featured_playlist":
		return models.KindPlaylist
	default:
		return models.KindNavigational
	}
}

func joinArtists(artists []YouTubeArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, " & ")
}

// GetPlaylists calls GET /api/library/playlists. Liked Music is reported as not owned.
func (y *YouTubeService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if err := y.authenticated(); err != nil {
		return nil, err
	}

	var ytPlaylists []struct {
		PlaylistID  string `json:"playlistId"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Count       int    `json:"count"`
	}

	if err := y.proxy.do(ctx, http.MethodGet, "/api/library/playlists", nil, &ytPlaylists); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, len(ytPlaylists))
	for i, ytp := range ytPlaylists {
		playlists[i] = models.Playlist{
			ID:          ytp.PlaylistID,
			Name:        ytp.Title,
			Description: ytp.Description,
			URL:         ytPlaylistURL + ytp.PlaylistID,
			TrackCount:  ytp.Count,
			Owned:       ytp.PlaylistID != ytLikedPlaylistID,
		}
	}

	return playlists, nil
}

// CreatePlaylist calls POST /api/playlists.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if err := y.authenticated(); err != nil {
		return nil, err
	}

	body := map[string]string{
		"title":          name,
		"description":    description,
		"privacy_status": ytPrivacyPrivate,
	}

	var created struct {
		PlaylistID string `json:"playlist_id"`
	}
	if err := y.proxy.do(ctx, http.MethodPost, "/api/playlists", body, &created); err != nil {
		return nil, err
	}
	if created.PlaylistID == "" {
		return nil, fmt.Errorf("%w: create playlist returned no id", shared.ErrAPIRequest)
	}

	return &models.Playlist{
		ID:          created.PlaylistID,
		Name:        name,
		Description: description,
		URL:         ytPlaylistURL + created.PlaylistID,
		Owned:       true,
	}, nil
}

// PlaylistEntries calls GET /api/playlists/{id}.
func (y *YouTubeService) PlaylistEntries(ctx context.Context, playlistID string) ([]models.PlaylistEntry, error) {
	if err := y.authenticated(); err != nil {
		return nil, err
	}

	var playlist YouTubePlaylist
	if err := y.proxy.do(ctx, http.MethodGet, "/api/playlists/"+url.PathEscape(playlistID), nil, &playlist); err != nil {
		return nil, err
	}

	entries := make([]models.PlaylistEntry, len(playlist.Tracks))
	for i, t := range playlist.Tracks {
		entries[i] = models.PlaylistEntry{ID: t.SetVideoID, CatalogID: t.VideoID}
	}
	return entries, nil
}

// RemoveEntries calls DELETE /api/playlists/{id}/items.
func (y *YouTubeService) RemoveEntries(ctx context.Context, playlistID string, entries []models.PlaylistEntry) error {
	if err := y.authenticated(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	type video struct {
		VideoID    string `json:"videoId"`
		SetVideoID string `json:"setVideoId"`
	}
	videos := make([]video, len(entries))
	for i, e := range entries {
		videos[i] = video{VideoID: e.CatalogID, SetVideoID: e.ID}
	}

	endpoint := fmt.Sprintf("/api/playlists/%s/items", url.PathEscape(playlistID))
	return y.proxy.do(ctx, http.MethodDelete, endpoint, map[string]any{"videos": videos}, nil)
}

// AddEntries calls POST /api/playlists/{id}/items.
func (y *YouTubeService) AddEntries(ctx context.Context, playlistID string, catalogIDs []string) error {
	if err := y.authenticated(); err != nil {
		return err
	}
	if len(catalogIDs) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("/api/playlists/%s/items", url.PathEscape(playlistID))
	return y.proxy.do(ctx, http.MethodPost, endpoint, map[string]any{"video_ids": catalogIDs}, nil)
}

// UpdateMetadata calls PUT /api/playlists/{id}.
func (y *YouTubeService) UpdateMetadata(ctx context.Context, playlistID string, meta models.PlaylistMeta) error {
	if err := y.authenticated(); err != nil {
		return err
	}

	body := map[string]string{}
	if meta.Name != "" {
		body["title"] = meta.Name
	}
	if meta.Description != "" {
		body["description"] = meta.Description
	}
	if len(body) == 0 {
		return nil
	}

	return y.proxy.do(ctx, http.MethodPut, "/api/playlists/"+url.PathEscape(playlistID), body, nil)
}

// Health calls GET /health and returns the reported status.
func (y *YouTubeService) Health(ctx context.Context) (string, error) {
	var health struct {
		Status string `json:"status"`
	}
	if err := y.proxy.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return "", err
	}
	return health.Status, nil
}

// SetupBrowser sends raw browser headers to POST /api/setup/browser and returns
// the generated auth file content.
func (y *YouTubeService) SetupBrowser(ctx context.Context, headersRaw string) (*YouTubeSetupResponse, error) {
	var resp YouTubeSetupResponse
	if err := y.proxy.do(ctx, http.MethodPost, "/api/setup/browser", map[string]string{"headers_raw": headersRaw}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, resp.Message)
	}
	return &resp, nil
}
