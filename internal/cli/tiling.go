package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/jmylchreest/tessera/internal/config"
	"github.com/jmylchreest/tessera/internal/dither"
	"github.com/jmylchreest/tessera/internal/image"
	"github.com/jmylchreest/tessera/internal/seed"
	"github.com/jmylchreest/tessera/internal/tiling"
	"github.com/spf13/cobra"
)

var (
	// Tiling command flags
	tilingInit     bool
	tilingForce    bool
	tilingBuilder  string
	tilingOutput   string
	tilingNoRender bool
	tilingNoStats  bool
	tilingSeedMode seed.Mode
	tilingSeed     int64
)

func newTilingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiling <plan.json>",
		Short: "Lay out tiles from a plan and render them",
		Long: `Build a tile layout from a JSON plan, print it and render it to an image.

Tile types are either a flat colour or a set of sample photos. Sampled types
take the trimmed mean colour of their (cropped) samples, optionally darkened,
and render with a randomly chosen sample per tile.

Builders:
  gradient   place tile types by coverage between the plan's stops, shuffled per column
  dithered   error-diffuse a colour gradient through the stops onto the tile colours
  random     pick a tile type uniformly at random for every cell
  single     fill the grid with the first tile type

Environment overrides:
  TESSERA_KERNEL, TESSERA_SEED, TESSERA_SAMPLE_ROOT, TESSERA_CACHE_DIR

Examples:
  # Write a starter plan
  tessera tiling --init plan.json

  # Build and render the plan, reproducibly seeded by its contents
  tessera tiling plan.json

  # Try the dithered builder with a different seed, without rendering
  tessera tiling --builder dithered --seed 42 --no-render plan.json`,
		Args: cobra.ExactArgs(1),
		RunE: runTiling,
	}

	tilingSeedMode = seed.ModeContent

	cmd.Flags().BoolVar(&tilingInit, "init", false, "write an example plan to the given path and exit")
	cmd.Flags().BoolVar(&tilingForce, "force", false, "overwrite an existing plan with --init")
	cmd.Flags().StringVar(&tilingBuilder, "builder", "", "override the plan's builder (gradient, dithered, random, single)")
	cmd.Flags().StringVarP(&tilingOutput, "output", "o", "", "override the plan's output image")
	cmd.Flags().BoolVar(&tilingNoRender, "no-render", false, "print the layout without rendering an image")
	cmd.Flags().BoolVar(&tilingNoStats, "no-stats", false, "omit the tile count table")
	cmd.Flags().Var(&tilingSeedMode, "seed-mode", "seed mode for shuffles and sample picks (content, manual, random)")
	cmd.Flags().Int64Var(&tilingSeed, "seed", 0, "seed value (implies --seed-mode manual)")

	return cmd
}

func runTiling(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	planPath := args[0]

	if tilingInit {
		return writeExamplePlan(logger, planPath)
	}

	// Load the plan and apply overrides: environment first, then flags.
	plan, raw, err := config.Load(planPath)
	if err != nil {
		return err
	}
	if err := plan.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if tilingBuilder != "" {
		plan.Builder = tilingBuilder
	}
	if tilingOutput != "" {
		plan.Output = tilingOutput
	}
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	opts, err := plan.TilingOptions()
	if err != nil {
		return err
	}

	// Resolve sampled tile colours before building anything.
	root := plan.SampleRoot
	if root == "" {
		root = filepath.Dir(planPath)
	}
	loaderOpts := []image.SmartLoaderOption{image.WithLogger(logger)}
	if plan.CacheDir != "" {
		loaderOpts = append(loaderOpts, image.WithCacheDir(plan.CacheDir))
	}
	sampler := image.NewSampler(image.NewSmartLoader(loaderOpts...), root, logger.Named("sampler"))
	if err := sampler.ResolveAll(cmd.Context(), opts.TileTypes); err != nil {
		return err
	}

	// Seed precedence: --seed, then the plan's seed, then --seed-mode.
	cfg := seed.Config{Mode: tilingSeedMode}
	switch {
	case cmd.Flags().Changed("seed"):
		cfg = seed.Config{Mode: seed.ModeManual, Value: &tilingSeed}
	case plan.Seed != nil && !cmd.Flags().Changed("seed-mode"):
		cfg = seed.Config{Mode: seed.ModeManual, Value: plan.Seed}
	}
	s, err := seed.Calculate(cfg, raw)
	if err != nil {
		return fmt.Errorf("failed to calculate seed: %w", err)
	}
	logger.Debug("seeded layout", "mode", cfg.Mode, "seed", s)
	rng := seed.New(s)

	model, err := buildModel(plan, opts, rng)
	if err != nil {
		return fmt.Errorf("failed to build tiling: %w", err)
	}
	if err := model.Validate(); err != nil {
		return fmt.Errorf("built tiling is invalid: %w", err)
	}
	logger.Info("built tiling", "builder", plan.Builder, "rows", opts.Rows, "cols", opts.Cols, "tiles", len(model.Tiles))

	// Print the layout and stats.
	ansi := useANSI(cmd)
	out := cmd.OutOrStdout()
	if err := writeModelPreview(out, model, ansi); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	if !tilingNoStats {
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
		if err := writeStats(out, model.Stats(), opts.TileTypes, ansi); err != nil {
			return fmt.Errorf("failed to write stats: %w", err)
		}
	}

	if tilingNoRender || plan.Output == "" {
		return nil
	}
	drawOpts, err := plan.DrawOptions()
	if err != nil {
		return err
	}
	img, err := tiling.Render(model, drawOpts, rng)
	if err != nil {
		return fmt.Errorf("failed to render tiling: %w", err)
	}
	if err := image.Save(plan.Output, img); err != nil {
		return err
	}
	logger.Info("wrote image", "path", plan.Output, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return nil
}

func buildModel(plan *config.Plan, opts tiling.Options, rng *rand.Rand) (*tiling.Model, error) {
	switch plan.Builder {
	case config.BuilderGradient:
		return tiling.BuildGradient(opts, rng)
	case config.BuilderDithered:
		kernel, err := dither.KernelByName(plan.Kernel)
		if err != nil {
			return nil, err
		}
		model, _, err := tiling.BuildDithered(opts, kernel, plan.SkipRows)
		return model, err
	case config.BuilderRandom:
		return tiling.BuildRandom(opts, rng)
	case config.BuilderSingle:
		return tiling.BuildSingle(opts)
	default:
		return nil, fmt.Errorf("unknown builder %q", plan.Builder)
	}
}

func writeExamplePlan(logger hclog.Logger, path string) error {
	if !tilingForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("plan %s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check plan: %w", err)
		}
	}
	if err := config.Example().Save(path); err != nil {
		return err
	}
	logger.Info("wrote example plan", "path", path)
	return nil
}
