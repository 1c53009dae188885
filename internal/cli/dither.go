package cli

import (
	"fmt"

	"github.com/jmylchreest/tessera/internal/dither"
	"github.com/jmylchreest/tessera/internal/field"
	"github.com/jmylchreest/tessera/internal/image"
	"github.com/jmylchreest/tessera/internal/seed"
	"github.com/spf13/cobra"
)

var (
	// Dither command flags
	ditherPalette       []string
	ditherMode          string
	ditherKernel        *kernelValue
	ditherCrop          string
	ditherSize          int
	ditherNoiseMean     float64
	ditherNoiseVariance float64
	ditherSeedMode      seed.Mode
	ditherSeed          int64
	ditherScale         int
	ditherBorder        string
	ditherOutput        string
	ditherPreview       bool
	ditherCacheDir      string
	ditherNoCache       bool
)

func newDitherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dither <image|directory|url>",
		Short: "Reduce an image to a palette with error diffusion",
		Long: `Load an image, shrink it to a colour field and reduce it to a palette.

The source can be a file, a directory (one image is picked at random, seeded so
runs repeat) or an HTTP(S) URL, which is cached on disk. Uniform brightness
noise can be mixed in before diffusion to break up banding.

Supported image formats: JPEG, PNG, GIF, WebP, BMP, TIFF

Examples:
  # Floyd-Steinberg dither a photo to black and white, 96 cells wide
  tessera dither --kernel floyd-steinberg --size 96 --scale 8 -o out.png photo.jpg

  # Crop a 40 pixel frame and dither to a three colour palette
  tessera dither --crop 40 -p "#40e0d0,#1e5f8c,#2e8b57" -o out.png photo.jpg

  # Flat quantization with a little noise, from a URL
  tessera dither --mode flat --noise-variance 0.1 https://example.com/tile.jpeg`,
		Args: cobra.ExactArgs(1),
		RunE: runDither,
	}

	ditherKernel = newKernelValue(dither.FloydSteinberg)
	ditherSeedMode = seed.ModeContent

	cmd.Flags().StringSliceVarP(&ditherPalette, "palette", "p", nil, "palette colours (default: black and white)")
	cmd.Flags().StringVarP(&ditherMode, "mode", "m", modeDiffuse, "palette reduction (none, flat, diffuse, rgb)")
	cmd.Flags().Var(ditherKernel, "kernel", fmt.Sprintf("diffusion kernel (%s)", kernelList()))
	cmd.Flags().StringVar(&ditherCrop, "crop", "", "margins to trim as N or LEFT,TOP,RIGHT,BOTTOM pixels")
	cmd.Flags().IntVar(&ditherSize, "size", 64, "longest side of the colour field in cells (0 keeps the image size)")
	cmd.Flags().Float64Var(&ditherNoiseMean, "noise-mean", 0, "mean of the brightness noise")
	cmd.Flags().Float64Var(&ditherNoiseVariance, "noise-variance", 0, "spread of the brightness noise (0 disables noise)")
	cmd.Flags().Var(&ditherSeedMode, "seed-mode", "seed mode for directory picks and noise (content, manual, random)")
	cmd.Flags().Int64Var(&ditherSeed, "seed", 0, "seed value (implies --seed-mode manual)")
	cmd.Flags().IntVar(&ditherScale, "scale", 1, "pixels per cell in the saved image")
	cmd.Flags().StringVar(&ditherBorder, "border", "", "colour of the border drawn around each scaled cell")
	cmd.Flags().StringVarP(&ditherOutput, "output", "o", "", "output image (.png, .bmp, .tiff)")
	cmd.Flags().BoolVar(&ditherPreview, "preview", false, "print the result to the terminal even when saving")
	cmd.Flags().StringVar(&ditherCacheDir, "cache-dir", "", "directory for downloaded images")
	cmd.Flags().BoolVar(&ditherNoCache, "no-cache", false, "download remote images on every run")

	return cmd
}

func runDither(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	if err := validateMode(ditherMode); err != nil {
		return err
	}
	palette, err := parsePalette(ditherPalette)
	if err != nil {
		return err
	}
	crop, err := parseCrop(ditherCrop)
	if err != nil {
		return err
	}
	if ditherSize < 0 {
		return fmt.Errorf("invalid size %d: must not be negative", ditherSize)
	}

	// An explicit --seed wins over --seed-mode.
	cfg := seed.Config{Mode: ditherSeedMode}
	if cmd.Flags().Changed("seed") {
		cfg = seed.Config{Mode: seed.ModeManual, Value: &ditherSeed}
	}
	pickSeed, err := seed.Calculate(cfg, []byte(args[0]))
	if err != nil {
		return fmt.Errorf("failed to calculate seed: %w", err)
	}

	// Directories resolve to one of their images.
	path, err := image.ResolveImagePath(args[0], seed.New(pickSeed))
	if err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}
	logger.Debug("loading image", "path", path)

	loaderOpts := []image.SmartLoaderOption{image.WithLogger(logger)}
	if ditherNoCache {
		loaderOpts = append(loaderOpts, image.WithoutCache())
	} else if ditherCacheDir != "" {
		loaderOpts = append(loaderOpts, image.WithCacheDir(ditherCacheDir))
	}
	img, err := image.NewSmartLoader(loaderOpts...).Load(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	// Crop, then shrink to the working size.
	region, err := image.CropRect(img.Bounds(), crop)
	if err != nil {
		return err
	}
	m, err := field.FromImage(image.Fit(img, region, ditherSize), field.Crop{})
	if err != nil {
		return fmt.Errorf("failed to build colour field: %w", err)
	}
	logger.Debug("built colour field", "source", img.Bounds().Size(), "rows", m.Rows(), "cols", m.Cols())

	if ditherNoiseVariance > 0 || ditherNoiseMean != 0 {
		noiseSeed, err := seed.Calculate(cfg, m.ToRawPixels())
		if err != nil {
			return fmt.Errorf("failed to calculate seed: %w", err)
		}
		m, err = dither.ApplyNoise(m, ditherNoiseMean, ditherNoiseVariance, seed.New(noiseSeed))
		if err != nil {
			return fmt.Errorf("failed to apply noise: %w", err)
		}
		logger.Debug("applied noise", "mean", ditherNoiseMean, "variance", ditherNoiseVariance, "seed", noiseSeed)
	}

	reduced, err := reduce(m, palette, ditherMode, ditherKernel.kernel)
	if err != nil {
		return fmt.Errorf("failed to reduce image: %w", err)
	}

	out := fieldOutput{scale: ditherScale, border: ditherBorder, path: ditherOutput, preview: ditherPreview}
	return out.write(cmd, logger, reduced)
}
