// Package security validates user supplied sample locations before they are
// read or fetched.
package security

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ValidateURL checks that rawURL is an absolute http(s) URL with a host and
// no embedded credentials.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("invalid URL protocol (only http:// and https:// allowed): %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must have a hostname")
	}
	if parsed.User != nil {
		return fmt.Errorf("URL must not contain credentials")
	}
	return nil
}

// ValidateSamplePath checks that a relative sample name resolves to a file
// inside baseDir.
func ValidateSamplePath(name, baseDir string) error {
	if name == "" {
		return fmt.Errorf("empty sample path")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("sample path %q must be relative to its directory", name)
	}

	cleanBase := filepath.Clean(baseDir)
	cleanFinal := filepath.Join(cleanBase, filepath.FromSlash(name))
	if cleanFinal == cleanBase || !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) {
		return fmt.Errorf("sample path %q escapes directory %s", name, baseDir)
	}
	return nil
}
