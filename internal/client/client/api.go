package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/authority"
)

// APIClient calls the listing images endpoints.
type APIClient struct {
	baseURL    string
	token      authority.TokenSource
	httpClient *http.Client
}

// NewAPIClient returns a client for the server at baseURL. A nil httpClient
// means a client with a 30 second timeout.
func NewAPIClient(baseURL string, token authority.TokenSource, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if token == nil {
		token = authority.StaticToken("")
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), token: token, httpClient: httpClient}
}

func (c *APIClient) ListImages(ctx context.Context, listingID string) ([]string, error) {
	var out common.ImageList
	if err := c.do(ctx, http.MethodGet, common.ListingImagesPath(listingID), nil, &out); err != nil {
		return nil, err
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	return out.Images, nil
}

func (c *APIClient) SaveImages(ctx context.Context, listingID string, images []string) error {
	if images == nil {
		images = []string{}
	}
	return c.do(ctx, http.MethodPut, common.ListingImagesPath(listingID), common.ImageList{Images: images}, nil)
}

func (c *APIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	var er common.ErrorResponse
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(b, &er); err != nil || er.Error == "" {
		er.Error = strings.TrimSpace(string(b))
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, er.Error)
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrRejected, er.Error)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return errors.New("request failed: " + resp.Status)
	}
}
