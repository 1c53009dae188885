package cli

import (
	"fmt"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/dither"
	"github.com/jmylchreest/tessera/internal/field"
	"github.com/jmylchreest/tessera/internal/gradient"
	"github.com/spf13/cobra"
)

var (
	// Gradient command flags
	gradientFrom    string
	gradientTo      string
	gradientStops   []string
	gradientRows    int
	gradientCols    int
	gradientPalette []string
	gradientMode    string
	gradientKernel  *kernelValue
	gradientScale   int
	gradientBorder  string
	gradientOutput  string
	gradientPreview bool
)

func newGradientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gradient",
		Short: "Build a horizontal colour gradient",
		Long: `Build a horizontal gradient between two colours, or across several
positioned stops, interpolated in CIE Lab space.

The gradient can be reduced to a palette either flat (every cell takes its
closest palette colour) or by error diffusion with one of the standard kernels.

Examples:
  # Preview a 16 step black to white ramp
  tessera gradient --cols 16

  # Three stops, dithered to black and white, saved at 20x scale
  tessera gradient --stop 0:#102040 --stop 0.5:#e0c080 --stop 1:#ffffff \
    --rows 8 --cols 40 --mode diffuse --kernel stucki --scale 20 -o ramp.png

  # Flat quantization to a custom palette with a grid border
  tessera gradient --from "#40e0d0" --to "#2e8b57" -p "#40e0d0,#1e5f8c,#2e8b57" \
    --mode flat --scale 30 --border "#a9a9a9" -o tiles.png`,
		Args: cobra.NoArgs,
		RunE: runGradient,
	}

	gradientKernel = newKernelValue(dither.Stucki)

	cmd.Flags().StringVar(&gradientFrom, "from", "#000000", "start colour")
	cmd.Flags().StringVar(&gradientTo, "to", "#ffffff", "end colour")
	cmd.Flags().StringArrayVar(&gradientStops, "stop", nil, "gradient stop as POSITION:HEX (repeatable, overrides --from/--to)")
	cmd.Flags().IntVar(&gradientRows, "rows", 1, "number of rows")
	cmd.Flags().IntVar(&gradientCols, "cols", 10, "number of columns (gradient steps)")
	cmd.Flags().StringSliceVarP(&gradientPalette, "palette", "p", nil, "palette colours (default: black and white)")
	cmd.Flags().StringVarP(&gradientMode, "mode", "m", modeNone, "palette reduction (none, flat, diffuse, rgb)")
	cmd.Flags().Var(gradientKernel, "kernel", fmt.Sprintf("diffusion kernel (%s)", kernelList()))
	cmd.Flags().IntVar(&gradientScale, "scale", 1, "pixels per cell in the saved image")
	cmd.Flags().StringVar(&gradientBorder, "border", "", "colour of the border drawn around each scaled cell")
	cmd.Flags().StringVarP(&gradientOutput, "output", "o", "", "output image (.png, .bmp, .tiff)")
	cmd.Flags().BoolVar(&gradientPreview, "preview", false, "print the gradient to the terminal even when saving")

	return cmd
}

func runGradient(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)

	if err := validateMode(gradientMode); err != nil {
		return err
	}
	palette, err := parsePalette(gradientPalette)
	if err != nil {
		return err
	}

	m, err := buildGradient()
	if err != nil {
		return fmt.Errorf("failed to build gradient: %w", err)
	}
	logger.Debug("built gradient", "rows", m.Rows(), "cols", m.Cols())

	reduced, err := reduce(m, palette, gradientMode, gradientKernel.kernel)
	if err != nil {
		return fmt.Errorf("failed to reduce gradient: %w", err)
	}
	logger.Debug("reduced gradient", "mode", gradientMode, "kernel", gradientKernel.kernel.Name(), "palette", len(palette))

	out := fieldOutput{scale: gradientScale, border: gradientBorder, path: gradientOutput, preview: gradientPreview}
	return out.write(cmd, logger, reduced)
}

func buildGradient() (*field.Matrix, error) {
	if len(gradientStops) > 0 {
		stops, err := parseStops(gradientStops)
		if err != nil {
			return nil, err
		}
		return gradient.HorizontalMultiStop(stops, gradientRows, gradientCols)
	}

	from, err := colour.ParseHex(gradientFrom)
	if err != nil {
		return nil, fmt.Errorf("invalid start colour: %w", err)
	}
	to, err := colour.ParseHex(gradientTo)
	if err != nil {
		return nil, fmt.Errorf("invalid end colour: %w", err)
	}
	return gradient.Horizontal(from, to, gradientRows, gradientCols)
}
