// Package services defines [Catalog], the remote music service playlists are built on, and implements it for YouTube Music and Spotify.
//
// # Catalog Interface
//
// The matcher only needs Search. Building a playlist needs the write half: listing
// the library, creating a playlist, clearing and filling its entries and editing
// its description.
//
// # YouTube Music Implementation
//
// [YouTubeService] communicates with the FastAPI proxy server (music/) wrapping ytmusicapi.
// The auth_file path is sent via X-Auth-File header on each request. Playlist
// entries are identified by setVideoId, which removal requires.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
// Entries are track URIs; additions and removals are sent in batches of 100.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called or rejected
//   - [shared.ErrMissingCredentials] : Authenticate() called without the needed keys
//   - [shared.ErrAPIRequest] : the service answered with an error status
//   - [shared.ErrServiceUnavailable] : the service could not be reached
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
package services
