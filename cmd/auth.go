package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/plx/internal/server"
	"github.com/desertthunder/plx/internal/services"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const oauthTimeout = 2 * time.Minute

// AuthSpotify performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	spotifyService, err := services.NewSpotifyService(services.SpotifyCredentials(config.Credentials.Spotify))
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(ctx, config, spotifyService)
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("%s Authorization successful", ui.Success("✓"))
	r.writePlain("%s Tokens saved to %s\n\n", ui.Success("✓"), r.configPath)
	if config.Catalog.Service != services.ServiceSpotify {
		r.writePlain("Set [catalog] service = \"%s\" to build playlists on Spotify.\n", services.ServiceSpotify)
	}

	return nil
}

// saveTokens stores the token in the loaded config and writes it to the config path, if any.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, config *shared.Config, spotify *services.SpotifyService) (*oauth2.Token, error) {
	state := shared.GenerateID()

	authURL := spotify.AuthURL(state)
	oauthHandler := server.NewOAuthHandler(spotify, state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(oauthHandler)
	router.Redirect("/{$}", authURL)

	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("%s Could not open browser automatically.", ui.Warning("⚠"))
		r.writePlain("Please open this URL in your browser:\n%s\n", authURL)
		r.writePlain("or visit http://%s/\n\n", serverAddr)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(oauthTimeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// AuthYouTube configures YouTube Music authentication from browser headers.
//
// Accepts a cURL command, has the proxy turn its headers into browser.json and
// points credentials.youtube.auth_file at the saved file.
func (r *Runner) AuthYouTube(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	outputPath := cmd.String("output")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("parsing cURL command for YouTube Music headers")

	var headers *shared.BrowserHeaders
	if curlFile != "" {
		headers, err = shared.ReadBrowserHeaders(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		headers, err = shared.ParseBrowserHeaders(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
	}

	headersRaw := headers.Raw()
	r.logger.Debug("generated headers_raw", "length", len(headersRaw))
	r.logger.Info("calling YouTube Music proxy setup endpoint", "proxy", config.Credentials.YouTube.ProxyURL)

	youtube := services.NewYouTubeService(config.Credentials.YouTube.ProxyURL, r.httpClient)
	setupResp, err := youtube.SetupBrowser(ctx, headersRaw)
	if err != nil {
		return fmt.Errorf("setup request failed: %w", err)
	}

	r.logger.Info("setup successful", "message", setupResp.Message)

	if outputPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		outputPath = filepath.Join(homeDir, ".plx", "browser.json")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	authJSON, err := json.MarshalIndent(setupResp.AuthContent, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal auth content: %w", err)
	}

	if err := os.WriteFile(outputPath, authJSON, 0600); err != nil {
		return fmt.Errorf("failed to write auth file: %w", err)
	}

	r.logger.Info("browser.json saved", "path", outputPath)

	config.Credentials.YouTube.AuthFile = outputPath
	if err := shared.SaveConfig(r.configPath, config); err != nil {
		r.logger.Warn("failed to save config", "path", r.configPath, "error", err)
		r.writePlain("Set credentials.youtube.auth_file = \"%s\" in your config.\n", outputPath)
	}

	r.writePlain("%s YouTube Music authentication configured successfully\n", ui.Success("✓"))
	r.writePlain("Auth file saved to: %s\n", outputPath)
	r.writePlainln("Next: plx search \"Artist - Title\"")

	return nil
}

// healthChecker is implemented by catalogs that can report the state of a backing service.
type healthChecker interface {
	Health(ctx context.Context) (string, error)
}

// AuthStatus logs in to the configured catalog and reports the outcome.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("checking auth status", "service", config.Catalog.Service)

	catalog, err := r.getCatalog(config)
	if err != nil {
		return err
	}

	r.writePlain("Catalog: %s\n", catalog.Name())

	if hc, ok := catalog.(healthChecker); ok {
		status, err := hc.Health(ctx)
		if err != nil {
			r.writePlain("Service: %s %v\n", ui.Failure("✗"), err)
			return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
		}
		r.writePlain("Service: %s %s\n", ui.Success("✓"), status)
	}

	if _, err := r.login(ctx, config); err != nil {
		r.writePlain("Authentication: %s Not authenticated\n", ui.Failure("✗"))
		return err
	}

	r.writePlain("Authentication: %s Authenticated\n", ui.Success("✓"))
	return nil
}
