// Spotify Web API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	spotifyTrackURI  = "spotify:track:"
	spotifyPageLimit = 50
	spotifyBatchSize = 100
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Artists []SpotifyArtist `json:"artists"`
	Album   SpotifyAlbum    `json:"album"`
	URI     string          `json:"uri"`
	IsLocal bool            `json:"is_local"`
}

// Owner is the owner of a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Owner        Owner        `json:"owner"`
	Public       bool         `json:"public"`
	ExternalURLs externalURLs `json:"external_urls"`
	Tracks       struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type spotifyPage[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

// SpotifyService implements [Catalog] for the Spotify Web API.
// Uses [oauth2] for authentication; the client refreshes expired tokens itself.
type SpotifyService struct {
	config     *oauth2.Config
	source     oauth2.TokenSource
	httpClient *http.Client
	apiURL     string
	userID     string
}

// SpotifyCredentials flattens the configured client and token into Authenticate credentials.
func SpotifyCredentials(c shared.SpotifyConfig) map[string]string {
	creds := map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"redirect_uri":  c.RedirectURI,
		"access_token":  c.AccessToken,
		"refresh_token": c.RefreshToken,
	}
	if !c.TokenExpiry.IsZero() {
		creds["token_expiry"] = c.TokenExpiry.Format(time.RFC3339)
	}
	return creds
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 client credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-modify-private",
			"playlist-modify-public",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{config: config, apiURL: spotifyBaseURL}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// Authenticate accepts a stored token ("access_token" and/or "refresh_token",
// optional RFC 3339 "token_expiry") or an "auth_code" to exchange, then looks up
// the current user so owned playlists can be told apart.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	var token *oauth2.Token

	switch {
	case credentials["access_token"] != "" || credentials["refresh_token"] != "":
		token = &oauth2.Token{
			AccessToken:  credentials["access_token"],
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		}
		if expiry, err := time.Parse(time.RFC3339, credentials["token_expiry"]); err == nil {
			token.Expiry = expiry
		}
	case credentials["auth_code"] != "":
		exchanged, err := s.Exchange(ctx, credentials["auth_code"])
		if err != nil {
			return err
		}
		token = exchanged
	default:
		return fmt.Errorf("%w: missing access_token, refresh_token or auth_code (run `plx auth spotify`)", shared.ErrMissingCredentials)
	}

	s.source = s.config.TokenSource(ctx, token)
	s.httpClient = oauth2.NewClient(ctx, s.source)

	user, err := s.UserProfile(ctx)
	if err != nil {
		s.source, s.httpClient = nil, nil
		return err
	}
	s.userID = user.ID
	return nil
}

// Token returns the current, possibly refreshed, token.
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return s.source.Token()
}

// doRequest performs an authenticated request, sending body as JSON when non-nil.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.apiURL+endpoint, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrServiceUnavailable, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)

		base := shared.ErrAPIRequest
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			base = shared.ErrNotAuthenticated
		case http.StatusNotFound:
			base = shared.ErrPlaylistNotFound
		}
		return fmt.Errorf("%w: spotify API error (status %d): %s", base, resp.StatusCode, errResp.Error.Message)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Search calls GET /search?type=track.
func (s *SpotifyService) Search(ctx context.Context, query string, maxResults int) ([]models.Candidate, error) {
	if maxResults <= 0 || maxResults > spotifyPageLimit {
		maxResults = spotifyPageLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(maxResults))

	var response struct {
		Tracks spotifyPage[SpotifyTrack] `json:"tracks"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, len(response.Tracks.Items))
	for i, t := range response.Tracks.Items {
		candidates[i] = models.Candidate{
			CatalogID: t.ID,
			Title:     t.Name,
			Artist:    joinSpotifyArtists(t.Artists),
			Album:     t.Album.Name,
			Kind:      spotifyKind(t),
		}
	}
	return candidates, nil
}

// spotifyKind treats local files as non-tracks: they cannot be added by id.
func spotifyKind(t SpotifyTrack) models.Kind {
	if t.IsLocal || (t.Type != "" && t.Type != "track") {
		return models.KindNavigational
	}
	return models.KindTrack
}

func joinSpotifyArtists(artists []SpotifyArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, " & ")
}

// GetPlaylists pages through GET /me/playlists.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist

	for offset := 0; ; offset += spotifyPageLimit {
		var page spotifyPage[SpotifySimplePlaylist]
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", spotifyPageLimit, offset)
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			playlists = append(playlists, s.playlist(sp))
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
	}

	return playlists, nil
}

func (s *SpotifyService) playlist(sp SpotifySimplePlaylist) models.Playlist {
	return models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		URL:         sp.ExternalURLs.Spotify,
		TrackCount:  sp.Tracks.Total,
		Owned:       s.userID != "" && sp.Owner.ID == s.userID,
	}
}

// CreatePlaylist calls POST /users/{user_id}/playlists with a private playlist.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if s.userID == "" {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	body := map[string]any{"name": name, "description": description, "public": false}

	var created SpotifySimplePlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(s.userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	p := s.playlist(created)
	p.Owned = true
	return &p, nil
}

// PlaylistEntries pages through GET /playlists/{id}/tracks.
func (s *SpotifyService) PlaylistEntries(ctx context.Context, playlistID string) ([]models.PlaylistEntry, error) {
	var entries []models.PlaylistEntry

	for offset := 0; ; offset += spotifyBatchSize {
		var page spotifyPage[struct {
			Track *SpotifyTrack `json:"track"`
		}]
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), spotifyBatchSize, offset)
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.URI == "" {
				continue
			}
			entries = append(entries, models.PlaylistEntry{ID: item.Track.URI, CatalogID: item.Track.ID})
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
	}

	return entries, nil
}

// RemoveEntries calls DELETE /playlists/{id}/tracks in batches of 100.
func (s *SpotifyService) RemoveEntries(ctx context.Context, playlistID string, entries []models.PlaylistEntry) error {
	uris := make([]string, len(entries))
	for i, e := range entries {
		uris[i] = e.ID
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	for _, batch := range chunk(uris, spotifyBatchSize) {
		tracks := make([]map[string]string, len(batch))
		for i, uri := range batch {
			tracks[i] = map[string]string{"uri": uri}
		}
		if err := s.doRequest(ctx, http.MethodDelete, endpoint, map[string]any{"tracks": tracks}, nil); err != nil {
			return err
		}
	}
	return nil
}

// AddEntries calls POST /playlists/{id}/tracks in batches of 100, keeping order.
func (s *SpotifyService) AddEntries(ctx context.Context, playlistID string, catalogIDs []string) error {
	uris := make([]string, len(catalogIDs))
	for i, id := range catalogIDs {
		uris[i] = spotifyTrackURI + id
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	for _, batch := range chunk(uris, spotifyBatchSize) {
		if err := s.doRequest(ctx, http.MethodPost, endpoint, map[string]any{"uris": batch}, nil); err != nil {
			return err
		}
	}
	return nil
}

// UpdateMetadata calls PUT /playlists/{id}.
func (s *SpotifyService) UpdateMetadata(ctx context.Context, playlistID string, meta models.PlaylistMeta) error {
	body := map[string]string{}
	if meta.Name != "" {
		body["name"] = meta.Name
	}
	if meta.Description != "" {
		body["description"] = meta.Description
	}
	if len(body) == 0 {
		return nil
	}

	return s.doRequest(ctx, http.MethodPut, "/playlists/"+url.PathEscape(playlistID), body, nil)
}
