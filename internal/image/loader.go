// Package image loads source and sample images from files, directories and
// URLs, resolves sampled tile colours and encodes rendered output.
package image

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"math/big"
	mrand "math/rand"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	httputil "github.com/jmylchreest/tessera/internal/util/http"
	"github.com/jmylchreest/tessera/internal/util/imagecache"
	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format
)

// Loader loads a decoded image from a path or URL.
type Loader interface {
	Load(ctx context.Context, path string) (image.Image, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load decodes the image at path. Supported formats: JPEG, PNG, GIF, WebP, BMP, TIFF.
func (l *FileLoader) Load(_ context.Context, path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	// Check if file exists.
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	// Check if it's a directory.
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	// Open the file.
	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Decode the image.
	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s (format: %s): %w", path, format, err)
	}
	return img, nil
}

// SmartLoader loads images from local files and HTTP(S) URLs. Remote images
// go through the on-disk cache unless caching is disabled.
type SmartLoader struct {
	files  *FileLoader
	cache  imagecache.Options
	direct bool
	logger hclog.Logger
}

// SmartLoaderOption configures a SmartLoader.
type SmartLoaderOption func(*SmartLoader)

// WithCacheDir stores downloaded images under dir.
func WithCacheDir(dir string) SmartLoaderOption {
	return func(l *SmartLoader) { l.cache.Dir = dir }
}

// WithoutCache fetches remote images on every load.
func WithoutCache() SmartLoaderOption {
	return func(l *SmartLoader) { l.direct = true }
}

// WithLogger sets the logger used to report downloads.
func WithLogger(logger hclog.Logger) SmartLoaderOption {
	return func(l *SmartLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader(opts ...SmartLoaderOption) *SmartLoader {
	l := &SmartLoader{
		files:  NewFileLoader(),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, path string) (image.Image, error) {
	if !httputil.IsURL(path) {
		return l.files.Load(ctx, path)
	}

	if l.direct {
		l.logger.Debug("fetching image", "url", path)
		data, err := httputil.Fetch(ctx, path, httputil.FetchOptions{RequireImage: true})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
		}
		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %s (format: %s): %w", path, format, err)
		}
		return img, nil
	}

	// Download once, then decode from the cache.
	cached, err := imagecache.Fetch(ctx, path, l.cache)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("using cached image", "url", path, "path", cached)
	return l.files.Load(ctx, cached)
}

// ValidateImagePath checks that path is a URL, a directory, or a decodable image file.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}
	// URLs are fetched later; only local paths are checked here.
	if httputil.IsURL(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file or directory not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}
	if info.IsDir() {
		return nil
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Decoding the header is enough to reject unsupported formats.
	if _, _, err := image.DecodeConfig(file); err != nil {
		return fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	return nil
}

// SupportedImageExtensions returns the file extensions picked up from directories.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff"}
}

func isImageFile(path string) bool {
	return slices.Contains(SupportedImageExtensions(), strings.ToLower(filepath.Ext(path)))
}

// ScanDirectoryForImages returns the image files directly inside dirPath in
// name order. It does not recurse, but follows symlinks.
func ScanDirectoryForImages(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		info, err := os.Stat(fullPath)
		if err != nil || info.IsDir() {
			continue
		}
		if isImageFile(entry.Name()) {
			imageFiles = append(imageFiles, fullPath)
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no supported image files found in directory: %s", dirPath)
	}
	sort.Strings(imageFiles)
	return imageFiles, nil
}

// SelectRandomImage picks one of imagePaths. With a nil rng the pick uses
// crypto/rand; pass a seeded source for reproducible picks.
func SelectRandomImage(imagePaths []string, rng *mrand.Rand) (string, error) {
	if len(imagePaths) == 0 {
		return "", fmt.Errorf("image path list is empty")
	}
	if rng != nil {
		return imagePaths[rng.Intn(len(imagePaths))], nil
	}

	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(imagePaths))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return imagePaths[idx.Int64()], nil
}

// ResolveImagePath returns path unchanged for URLs and files, and a randomly
// chosen image inside it for directories.
func ResolveImagePath(path string, rng *mrand.Rand) (string, error) {
	if httputil.IsURL(path) {
		return path, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	imageFiles, err := ScanDirectoryForImages(path)
	if err != nil {
		return "", err
	}
	return SelectRandomImage(imageFiles, rng)
}
