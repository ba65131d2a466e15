package models

import "fmt"

// Query is a (title, artist) pair scraped from a tracklist. Both fields are
// stored exactly as scraped.
type Query struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Label formats the query as "artist - title".
func (q Query) Label() string {
	return fmt.Sprintf("%s - %s", q.Artist, q.Title)
}

// SearchString is the free-text query sent to a catalog.
func (q Query) SearchString() string {
	return fmt.Sprintf("%s %s", q.Artist, q.Title)
}

// Kind classifies a catalog search result.
type Kind int

const (
	KindUnknown Kind = iota
	KindTrack
	KindArtist
	KindAlbum
	KindPlaylist
	KindNavigational
)

func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindArtist:
		return "artist"
	case KindAlbum:
		return "album"
	case KindPlaylist:
		return "playlist"
	case KindNavigational:
		return "navigational"
	default:
		return "unknown"
	}
}

// Candidate is one result returned by a catalog search. Missing fields are
// empty strings; an empty CatalogID means the result cannot be added to a playlist.
type Candidate struct {
	CatalogID string `json:"catalog_id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album,omitempty"`
	Kind      Kind   `json:"kind"`
}

// Label formats the candidate as "artist - title".
func (c Candidate) Label() string {
	return fmt.Sprintf("%s - %s", c.Artist, c.Title)
}
