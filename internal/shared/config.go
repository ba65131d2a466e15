package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Catalog     CatalogConfig            `toml:"catalog"`
	Matching    MatchingConfig           `toml:"matching"`
	Playlist    PlaylistConfig           `toml:"playlist"`
	Log         LogConfig                `toml:"log"`
	Credentials CredentialsConfig        `toml:"credentials"`
	Database    DatabaseConfig           `toml:"database"`
	Server      ServerConfig             `toml:"server"`
	Schemas     map[string]SchemaConfig  `toml:"schemas"`
	Stations    map[string]StationConfig `toml:"stations"`
}

// CatalogConfig selects the streaming service playlists are built on.
type CatalogConfig struct {
	Service    string `toml:"service"` // "ytmusic" or "spotify"
	MaxResults int    `toml:"max_results"`
}

// MatchingConfig tunes the matcher and the search worker pool.
type MatchingConfig struct {
	Guided            bool    `toml:"guided"`
	TreatWithAsFeat   bool    `toml:"treat_with_as_feat"`
	Workers           int     `toml:"workers"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// PlaylistConfig controls how matches are written back.
type PlaylistConfig struct {
	ReplaceExisting bool `toml:"replace_existing"`
}

// LogConfig sets the log level and the file used while prompting.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials and the last issued token.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token,omitempty"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	TokenExpiry  time.Time `toml:"token_expiry,omitempty"`
}

// Update stores a freshly issued token. The refresh token is kept when the
// new token does not carry one.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: token cannot be nil", ErrInvalidInput)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenExpiry = token.Expiry
	return nil
}

// YouTubeConfig points at the ytmusicapi proxy and its browser auth file.
type YouTubeConfig struct {
	ProxyURL string `toml:"proxy_url"`
	AuthFile string `toml:"auth_file"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SchemaConfig is a set of CSS selectors describing one kind of tracklist page.
//
// PlaylistDescriptionSelector may be "meta" to read the page's meta description.
type SchemaConfig struct {
	URLPattern                  string `toml:"url_pattern"`
	TracklistSelector           string `toml:"tracklist_selector"`
	TrackSelector               string `toml:"track_selector"`
	ArtistSelector              string `toml:"artist_selector"`
	AltArtistSelector           string `toml:"alt_artist_selector"`
	TitleSelector               string `toml:"title_selector"`
	PlaylistNameSelector        string `toml:"playlist_name_selector"`
	PlaylistDescriptionSelector string `toml:"playlist_desc_selector"`
}

// StationConfig is a preset tracklist page.
type StationConfig struct {
	URL    string `toml:"url"`
	Schema string `toml:"schema"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path, replacing the file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Schema looks up a selector schema by name.
func (c *Config) Schema(name string) (SchemaConfig, error) {
	schema, ok := c.Schemas[name]
	if !ok {
		return SchemaConfig{}, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	return schema, nil
}

// Station looks up a preset station by name.
func (c *Config) Station(name string) (StationConfig, error) {
	station, ok := c.Stations[name]
	if !ok {
		return StationConfig{}, fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	return station, nil
}

// StationNames returns the preset station names in alphabetical order.
func (c *Config) StationNames() []string {
	names := make([]string, 0, len(c.Stations))
	for name := range c.Stations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
