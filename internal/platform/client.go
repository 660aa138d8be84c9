// Package platform is the HTTP client for the externally owned platform
// API: subscriptions, checkout, membership checks, creator directory,
// moderation reports, and the mention notification fan-out. Everything here
// is thin glue; no call is retried.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// APIError is an upstream error response. The message comes verbatim from
// the platform's `error` field and is surfaced directly to the user.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform API error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("platform API error (%d): %s", e.StatusCode, e.Message)
}

// Client calls the platform API with the caller's bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a platform API client.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// MentionFanout is the payload for the mention notification endpoint. The
// server resolves handles to user IDs and creates the notification
// documents.
type MentionFanout struct {
	PostID     string   `json:"postId"`
	AuthorName string   `json:"authorName"`
	Mentions   []string `json:"mentions"`
}

// NotifyMentions submits extracted mentions for server-side fan-out. The
// call is at-most-once: callers treat a failure as a dropped notification,
// not an error to surface.
func (c *Client) NotifyMentions(ctx context.Context, bearer string, fanout MentionFanout) error {
	return c.do(ctx, http.MethodPost, "/api/message-board/notify-mentions", bearer, fanout, nil)
}

// Forward relays a request to the platform API unchanged and returns the
// upstream status and body. Used by the passthrough handlers.
func (c *Client) Forward(ctx context.Context, method, path, bearer string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read platform response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode platform request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read platform response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &payload)
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse platform response: %w", err)
		}
	}
	return nil
}
