package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client is the HTTP implementation of Resolver, talking to the catalog
// service that owns playlists, genre/scene/collection trees and search.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a resolver against the given catalog base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Assign requests a candidate list for a source.
func (c *Client) Assign(ctx context.Context, req AssignRequest) (*Resolution, error) {
	return c.post(ctx, "/sources/assign", req)
}

// ResolveTrackDrag requests a candidate list built around one track.
func (c *Client) ResolveTrackDrag(ctx context.Context, req TrackDragRequest) (*Resolution, error) {
	return c.post(ctx, "/sources/resolve-track", req)
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Resolution, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolveFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the log, then bail out.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("Source resolution failed", "path", path, "status", resp.StatusCode, "body", string(msg))
		return nil, fmt.Errorf("%w: status %d", ErrResolveFailed, resp.StatusCode)
	}

	var res Resolution
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrResolveFailed, err)
	}
	return &res, nil
}
