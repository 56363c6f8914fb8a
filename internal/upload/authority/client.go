// Package authority is the client side of the Upload-URL Authority: it asks
// the server for a fresh one-time write destination for a single file.
//
// One call is one HTTP round trip. The client never batches and never retries;
// retry policy belongs to the caller.
package authority

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// DestinationsPath is the authority endpoint relative to the server URL.
const DestinationsPath = "/api/uploads/destinations"

// ErrAuthorityUnavailable covers every way of not getting a usable destination.
var ErrAuthorityUnavailable = errors.New("upload authority unavailable")

// Error carries the HTTP status (0 for transport failures) of a failed request.
type Error struct {
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", ErrAuthorityUnavailable, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrAuthorityUnavailable, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrAuthorityUnavailable }

// Destination is a single-use write target. Reusing it for a second transfer
// is undefined.
type Destination struct {
	URL       string
	Key       string
	ExpiresAt time.Time
}

// DestinationResponse is the wire format of the authority response.
type DestinationResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// TokenSource yields the caller's access token for each request.
type TokenSource func() string

// StaticToken returns a TokenSource that always yields token.
func StaticToken(token string) TokenSource {
	return func() string { return token }
}

// Client talks to the authority over HTTP.
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
}

// NewClient returns a client for the server at baseURL. A nil httpClient
// means a client with a 30 second timeout.
func NewClient(baseURL string, token TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if token == nil {
		token = StaticToken("")
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, httpClient: httpClient}
}

// RequestDestination asks for one fresh destination.
func (c *Client) RequestDestination(ctx context.Context) (Destination, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+DestinationsPath, http.NoBody)
	if err != nil {
		return Destination{}, &Error{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Destination{}, &Error{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Destination{}, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("request failed: %s; body: %s", resp.Status, strings.TrimSpace(string(b)))}
	}

	var dr DestinationResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return Destination{}, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if strings.TrimSpace(dr.URL) == "" {
		return Destination{}, &Error{StatusCode: resp.StatusCode, Err: errors.New("response has no destination url")}
	}

	return Destination{URL: dr.URL, Key: dr.Key, ExpiresAt: dr.ExpiresAt}, nil
}
