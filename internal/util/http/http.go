// Package http fetches remote sample images.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmylchreest/tessera/internal/security"
	"github.com/jmylchreest/tessera/internal/version"
)

const (
	// DefaultTimeout bounds a whole request, body included.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBytes caps the body size of a fetched image.
	DefaultMaxBytes int64 = 64 << 20
)

// ErrTooLarge is returned when a response body exceeds FetchOptions.MaxBytes.
var ErrTooLarge = errors.New("response body too large")

// FetchOptions configures a single fetch. Zero values select the defaults.
type FetchOptions struct {
	Timeout  time.Duration
	MaxBytes int64

	// RequireImage rejects responses whose Content-Type is set and is not image/*.
	RequireImage bool

	Headers map[string]string

	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// IsURL reports whether path is an http or https URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Fetch downloads url and returns the response body.
func Fetch(ctx context.Context, url string, opts FetchOptions) ([]byte, error) {
	if err := security.ValidateURL(url); err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, url)
	}
	if ct := resp.Header.Get("Content-Type"); opts.RequireImage && ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("unexpected content type %q fetching %s", ct, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrTooLarge, maxBytes, url)
	}
	return data, nil
}
