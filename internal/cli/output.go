package cli

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/dither"
	"github.com/jmylchreest/tessera/internal/field"
	"github.com/jmylchreest/tessera/internal/image"
	"github.com/jmylchreest/tessera/internal/quantize"
	"github.com/spf13/cobra"
)

// reduce maps m onto palette according to mode.
func reduce(m *field.Matrix, palette []colour.Colour, mode string, kernel dither.Kernel) (*field.Matrix, error) {
	switch mode {
	case modeNone:
		return m, nil
	case modeFlat:
		return quantize.Quantize(m, palette, quantize.Closest[colour.Colour](colour.EuclideanLab))
	case modeDiffuse:
		return dither.Diffuse(m, palette, dither.Options[colour.Colour]{Kernel: kernel})
	case modeRGB:
		return dither.DiffuseRGB(m, palette, kernel)
	default:
		return nil, validateMode(mode)
	}
}

// fieldOutput says where a finished field goes.
type fieldOutput struct {
	scale   int
	border  string
	path    string
	preview bool
}

// write previews m on stdout when asked (or when there is no output file) and
// saves it, upscaled, to path.
func (o fieldOutput) write(cmd *cobra.Command, logger hclog.Logger, m *field.Matrix) error {
	if o.preview || o.path == "" {
		if err := writeFieldPreview(cmd.OutOrStdout(), m, useANSI(cmd)); err != nil {
			return fmt.Errorf("failed to write preview: %w", err)
		}
	}
	if o.path == "" {
		return nil
	}

	border, err := parseBorder(o.border)
	if err != nil {
		return err
	}
	scaled, err := m.ScalePixelWithBorder(o.scale, border)
	if err != nil {
		return fmt.Errorf("failed to scale output: %w", err)
	}
	if err := image.Save(o.path, scaled.ToImage()); err != nil {
		return err
	}
	logger.Info("wrote image", "path", o.path, "width", scaled.Cols(), "height", scaled.Rows())
	return nil
}
