package models

// Tracklist is what the scraper extracts from a page.
type Tracklist struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Source      string  `json:"source"`
	Tracks      []Query `json:"tracks"`
}

// Playlist is a playlist as reported by a catalog service.
//
// Owned is false for playlists the authenticated user follows but did not create.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	TrackCount  int    `json:"track_count"`
	Owned       bool   `json:"owned"`
	Deleted     bool   `json:"deleted,omitempty"`
}

// PlaylistEntry is one item of a remote playlist. ID is the service-specific
// handle needed to remove the entry.
type PlaylistEntry struct {
	ID        string `json:"id"`
	CatalogID string `json:"catalog_id"`
}

// PlaylistMeta holds the editable playlist fields. Empty fields are left unchanged.
type PlaylistMeta struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// PushMode records whether a playlist was created or replaced.
type PushMode int

const (
	PushCreated           PushMode = iota // replace was not requested
	PushReplaced                          // an existing playlist was overwritten
	PushCreatedNoExisting                 // replace was requested but nothing matched
)

func (m PushMode) String() string {
	switch m {
	case PushCreated:
		return "created"
	case PushReplaced:
		return "replaced"
	case PushCreatedNoExisting:
		return "created (no existing playlist)"
	default:
		return "unknown"
	}
}

// PushReport summarizes a playlist write.
type PushReport struct {
	Playlist    Playlist `json:"playlist"`
	Mode        PushMode `json:"mode"`
	Pushed      int      `json:"pushed"`
	Cut         int      `json:"cut"`
	Description string   `json:"description"`
}
