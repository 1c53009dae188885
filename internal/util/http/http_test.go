package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmylchreest/tessera/internal/version"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"https://example.com/a.png", true},
		{"http://example.com/a.png", true},
		{"ftp://example.com/a.png", false},
		{"/tmp/a.png", false},
		{"samples/a.png", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.path); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFetch(t *testing.T) {
	var gotAgent, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Test")
		switch r.URL.Path {
		case "/image":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		case "/big":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	data, err := Fetch(ctx, srv.URL+"/image", FetchOptions{RequireImage: true, Headers: map[string]string{"X-Test": "yes"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("body = %q, want png-bytes", data)
	}
	if gotAgent != version.UserAgent() {
		t.Errorf("User-Agent = %q, want %q", gotAgent, version.UserAgent())
	}
	if gotHeader != "yes" {
		t.Errorf("X-Test header = %q, want yes", gotHeader)
	}

	if _, err := Fetch(ctx, srv.URL+"/page", FetchOptions{RequireImage: true}); err == nil {
		t.Error("expected error for non-image content type")
	}
	if _, err := Fetch(ctx, srv.URL+"/page", FetchOptions{}); err != nil {
		t.Errorf("content type must only be checked on request: %v", err)
	}
	if _, err := Fetch(ctx, srv.URL+"/missing", FetchOptions{}); err == nil {
		t.Error("expected error for 404")
	}
	if _, err := Fetch(ctx, srv.URL+"/big", FetchOptions{MaxBytes: 10}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}
}
