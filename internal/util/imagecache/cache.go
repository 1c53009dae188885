// Package imagecache keeps remote sample images on disk so repeated tiling runs
// do not refetch them.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	httputil "github.com/jmylchreest/tessera/internal/util/http"
)

// Options configures where and how an image is cached.
type Options struct {
	// Dir defaults to DefaultDir().
	Dir string

	// Refresh refetches the image even when a cached copy exists.
	Refresh bool

	Fetch httputil.FetchOptions
}

// DefaultDir returns the per-user cache directory for sample images.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "tessera", "samples"), nil
}

// Filename derives a stable cache filename from a URL: a truncated SHA-256 of
// the URL plus the URL's image extension, ".img" when it has none.
func Filename(url string) string {
	sum := sha256.Sum256([]byte(url))

	p := url
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tiff", ".tif":
	default:
		ext = ".img"
	}
	return hex.EncodeToString(sum[:16]) + ext
}

// Path returns where url would be cached under opts.
func Path(url string, opts Options) (string, error) {
	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, Filename(url)), nil
}

// Fetch returns the local path of url's cached copy, downloading it first when
// it is missing or a refresh is requested.
func Fetch(ctx context.Context, url string, opts Options) (string, error) {
	if !httputil.IsURL(url) {
		return "", fmt.Errorf("invalid URL %q: must start with http:// or https://", url)
	}

	cached, err := Path(url, opts)
	if err != nil {
		return "", err
	}
	if !opts.Refresh {
		if info, err := os.Stat(cached); err == nil && info.Size() > 0 {
			return cached, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(cached), 0o755); err != nil { // #nosec G301 - cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	fetch := opts.Fetch
	fetch.RequireImage = true
	data, err := httputil.Fetch(ctx, url, fetch)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}

	// Write through a temp file so an interrupted download never leaves a
	// truncated image behind.
	tmp, err := os.CreateTemp(filepath.Dir(cached), ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), cached); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store cached image: %w", err)
	}
	return cached, nil
}
