package image

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/field"
	"github.com/jmylchreest/tessera/internal/security"
	"github.com/jmylchreest/tessera/internal/tiling"
	httputil "github.com/jmylchreest/tessera/internal/util/http"
)

const (
	// DefaultTrimOutliers drops this many of the darkest and lightest cells
	// from each sample before averaging, which keeps specular highlights and
	// grout shadows from skewing the colour.
	DefaultTrimOutliers = 16

	// DefaultSampleSize is the longest side, in pixels, a sample is reduced to
	// before averaging.
	DefaultSampleSize = 128
)

// Sampler resolves the colour of sampled tiles from their images.
type Sampler struct {
	Loader Loader

	// Root is prepended to relative sample directories.
	Root string

	TrimOutliers int
	SampleSize   int
	Logger       hclog.Logger
}

// NewSampler returns a sampler with default averaging settings.
func NewSampler(loader Loader, root string, logger hclog.Logger) *Sampler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Sampler{
		Loader:       loader,
		Root:         root,
		TrimOutliers: DefaultTrimOutliers,
		SampleSize:   DefaultSampleSize,
		Logger:       logger,
	}
}

// ResolveAll resolves every sampled tile type in place. Solid tile types are left alone.
func (s *Sampler) ResolveAll(ctx context.Context, types []tiling.TileType) error {
	for _, tt := range types {
		sampled, ok := tt.Image.(*tiling.Sampled)
		if !ok {
			continue
		}
		if err := s.Resolve(ctx, sampled); err != nil {
			return fmt.Errorf("failed to resolve tile type %q: %w", tt.Name, err)
		}
		s.Logger.Info("resolved tile colour", "tile", tt.Name, "colour", sampled.Colour.Hex(), "samples", len(sampled.Images))
	}
	return nil
}

// Resolve loads every sample of t, averages each one after cropping and sets
// t.Colour to the mean of those averages, darkened by t.Darken. The loaded
// images are kept on t for rendering.
func (s *Sampler) Resolve(ctx context.Context, t *tiling.Sampled) error {
	paths, err := s.samplePaths(t)
	if err != nil {
		return err
	}

	images := make([]image.Image, 0, len(paths))
	var sum colour.Lab
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, err := s.Loader.Load(ctx, p)
		if err != nil {
			return err
		}
		avg, err := s.average(img, t.Crop)
		if err != nil {
			return fmt.Errorf("failed to average %s: %w", p, err)
		}
		s.Logger.Debug("sampled image", "path", p, "average", avg.Hex())

		sum = sum.Add(avg.Lab())
		images = append(images, img)
	}

	mean := colour.FromLab(sum.Scale(1/float64(len(images))), 255)
	if t.Darken != 0 {
		mean = mean.Darken(t.Darken)
	}
	t.Colour = mean
	t.Images = images
	return nil
}

// average crops img, shrinks it to at most SampleSize on its longest side and
// returns its trimmed mean colour.
func (s *Sampler) average(img image.Image, crop field.Crop) (colour.Colour, error) {
	src, err := CropRect(img.Bounds(), crop)
	if err != nil {
		return colour.Colour{}, err
	}

	m, err := field.FromImage(Fit(img, src, s.SampleSize), field.Crop{})
	if err != nil {
		return colour.Colour{}, err
	}
	return m.AverageColour(s.TrimOutliers), nil
}

// samplePaths lists the files or URLs behind a sampled tile. With no explicit
// samples, every image in the directory is used.
func (s *Sampler) samplePaths(t *tiling.Sampled) ([]string, error) {
	dir := t.Dir
	if httputil.IsURL(dir) {
		if len(t.Samples) == 0 {
			return nil, fmt.Errorf("remote sample directory %s needs explicit samples", dir)
		}
		paths := make([]string, 0, len(t.Samples))
		for _, sample := range t.Samples {
			u, err := url.JoinPath(dir, sample)
			if err != nil {
				return nil, fmt.Errorf("invalid sample URL: %w", err)
			}
			paths = append(paths, u)
		}
		return paths, nil
	}

	if dir != "" && !filepath.IsAbs(dir) && s.Root != "" {
		dir = filepath.Join(s.Root, dir)
	}
	if len(t.Samples) == 0 {
		if dir == "" {
			return nil, fmt.Errorf("sampled tile has neither a directory nor samples")
		}
		return ScanDirectoryForImages(dir)
	}

	paths := make([]string, 0, len(t.Samples))
	for _, sample := range t.Samples {
		switch {
		case httputil.IsURL(sample):
			paths = append(paths, sample)
		case dir == "" || filepath.IsAbs(sample):
			paths = append(paths, filepath.Clean(sample))
		default:
			if err := security.ValidateSamplePath(sample, dir); err != nil {
				return nil, err
			}
			paths = append(paths, filepath.Join(dir, filepath.FromSlash(sample)))
		}
	}
	return paths, nil
}
