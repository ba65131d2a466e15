// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/plx/internal/models"
)

// MockCatalog is an in-memory test double for [services.Catalog].
//
// Search answers from Results keyed by the query string. Playlists and entries
// are kept in memory so writes can be inspected after the fact. Safe for
// concurrent use.
type MockCatalog struct {
	mu sync.Mutex

	Results   map[string][]models.Candidate
	Playlists []models.Playlist
	Entries   map[string][]models.PlaylistEntry

	AuthErr         error
	SearchErrs      map[string]error
	GetPlaylistsErr error
	CreateErr       error
	EntriesErr      error
	RemoveErr       error
	AddErr          error
	UpdateErr       error

	Authenticated bool
	Searches      []string
	Created       []string
	Removed       map[string]int
	Added         map[string][]string
	Updated       map[string]models.PlaylistMeta
}

// NewMockCatalog creates an empty, authenticating [MockCatalog].
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Results: make(map[string][]models.Candidate),
		Entries: make(map[string][]models.PlaylistEntry),
		Removed: make(map[string]int),
		Added:   make(map[string][]string),
		Updated: make(map[string]models.PlaylistMeta),
	}
}

func (m *MockCatalog) Name() string { return "mock" }

func (m *MockCatalog) Authenticate(ctx context.Context, credentials map[string]string) error {
	if m.AuthErr != nil {
		return m.AuthErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Authenticated = true
	return nil
}

func (m *MockCatalog) Search(ctx context.Context, query string, maxResults int) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Authenticated {
		return nil, errors.New("search before authenticate")
	}
	m.Searches = append(m.Searches, query)

	if err := m.SearchErrs[query]; err != nil {
		return nil, err
	}
	results := m.Results[query]
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func (m *MockCatalog) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if m.GetPlaylistsErr != nil {
		return nil, m.GetPlaylistsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Playlist(nil), m.Playlists...), nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p := models.Playlist{
		ID:          fmt.Sprintf("created-%d", len(m.Created)+1),
		Name:        name,
		Description: description,
		URL:         "https://example.com/playlist/" + name,
		Owned:       true,
	}
	m.Created = append(m.Created, p.ID)
	m.Playlists = append(m.Playlists, p)
	return &p, nil
}

func (m *MockCatalog) PlaylistEntries(ctx context.Context, playlistID string) ([]models.PlaylistEntry, error) {
	if m.EntriesErr != nil {
		return nil, m.EntriesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Entries[playlistID], nil
}

func (m *MockCatalog) RemoveEntries(ctx context.Context, playlistID string, entries []models.PlaylistEntry) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed[playlistID] += len(entries)
	delete(m.Entries, playlistID)
	return nil
}

func (m *MockCatalog) AddEntries(ctx context.Context, playlistID string, catalogIDs []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Added[playlistID] = append(m.Added[playlistID], catalogIDs...)
	return nil
}

func (m *MockCatalog) UpdateMetadata(ctx context.Context, playlistID string, meta models.PlaylistMeta) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updated[playlistID] = meta
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
