// Package transfer writes a candidate's bytes to a one-time destination and
// turns the destination into a durable reference.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/upload/gallery"
)

var (
	// ErrTransfer matches every non-2xx response from the object store.
	ErrTransfer = errors.New("transfer failed")
	// ErrInvalidDestination is returned for locators that cannot be reduced
	// to a durable object URL.
	ErrInvalidDestination = errors.New("invalid destination")
)

// Error reports a rejected write. StatusCode is 0 when no response arrived.
type Error struct {
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", ErrTransfer, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrTransfer, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrTransfer }

// Executor performs single, non-resumable PUT transfers.
type Executor struct {
	httpClient *http.Client
}

// NewExecutor returns an executor. A nil httpClient means a client with a
// two minute timeout.
func NewExecutor(httpClient *http.Client) *Executor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Executor{httpClient: httpClient}
}

// Transfer PUTs data to destination declaring mediaType. On success it returns
// the destination with its authorization query stripped.
func (e *Executor) Transfer(ctx context.Context, destination string, data []byte, mediaType string) (gallery.Reference, error) {
	locator, err := PersistentLocator(destination)
	if err != nil {
		return gallery.Reference{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, destination, bytes.NewReader(data))
	if err != nil {
		return gallery.Reference{}, &Error{Err: err}
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mediaType)
	req.ContentLength = int64(len(data))

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return gallery.Reference{}, &Error{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return gallery.Reference{}, &Error{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("upload failed: %s; body: %s", resp.Status, strings.TrimSpace(string(b))),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return gallery.Persistent(locator), nil
}

// PersistentLocator strips query and fragment from a destination URL. The
// destination must be absolute and have a path below the root.
func PersistentLocator(destination string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(destination))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute url", ErrInvalidDestination, destination)
	}
	if strings.Trim(u.Path, "/") == "" {
		return "", fmt.Errorf("%w: %q has no object path", ErrInvalidDestination, destination)
	}

	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	return u.String(), nil
}
