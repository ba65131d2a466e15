package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/plx/internal/shared"
)

// proxyClient talks JSON to the ytmusicapi FastAPI proxy.
type proxyClient struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
}

// do sends body (if non-nil) as JSON and decodes the response into result (if non-nil).
//
// Error responses carry FastAPI's {"detail": "..."} body, which is surfaced in the error.
func (p *proxyClient) do(ctx context.Context, method, endpoint string, body, result any) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+endpoint, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if p.authFile != "" {
		req.Header.Set("X-Auth-File", p.authFile)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrServiceUnavailable, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		base := shared.ErrAPIRequest
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			base = shared.ErrNotAuthenticated
		case http.StatusNotFound:
			base = shared.ErrPlaylistNotFound
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: youtube music proxy (status %d): %s", base, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: youtube music proxy: status %d", base, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
