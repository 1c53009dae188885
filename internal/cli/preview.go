package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/field"
	"github.com/jmylchreest/tessera/internal/tiling"
)

// writeFieldPreview prints one two-column swatch per cell, or hex codes when
// ansi is false.
func writeFieldPreview(w io.Writer, m *field.Matrix, ansi bool) error {
	for row := 0; row < m.Rows(); row++ {
		cells, err := m.Row(row)
		if err != nil {
			return err
		}
		parts := make([]string, len(cells))
		for i, c := range cells {
			if ansi {
				parts[i] = colour.Preview(c, 2)
			} else {
				parts[i] = c.Hex()
			}
		}
		sep := " "
		if ansi {
			sep = ""
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, sep)); err != nil {
			return err
		}
	}
	return nil
}

// writeModelPreview prints the tile names of a model, painted with their tile
// colours when ansi is true.
func writeModelPreview(w io.Writer, model *tiling.Model, ansi bool) error {
	grid := model.Matrix()
	if !ansi {
		_, err := fmt.Fprintln(w, tiling.FormatMatrix(grid))
		return err
	}

	for _, row := range grid {
		var b strings.Builder
		for _, name := range row {
			tt, ok := model.Options.TileType(name)
			if !ok {
				b.WriteString(" . ")
				continue
			}
			b.WriteString(colour.PreviewWithText(tt.EffectiveColour(), name, 3))
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// writeStats prints the tile distribution of a model as a table.
func writeStats(w io.Writer, stats tiling.Stats, types []tiling.TileType, ansi bool) error {
	table := NewTable([]string{"Tile", "Colour", "Count", "Share"})
	table.SetAlign(2, AlignRight)
	table.SetAlign(3, AlignRight)

	colours := make(map[string]colour.Colour, len(types))
	for _, tt := range types {
		colours[tt.Name] = tt.EffectiveColour()
	}
	for _, c := range stats.Counts {
		swatch := colours[c.Name].Hex()
		if ansi {
			swatch = colour.FormatWithPreview(colours[c.Name], 2)
		}
		table.AddRow(c.Name, swatch, fmt.Sprintf("%d", c.Count), fmt.Sprintf("%.1f%%", c.Percent))
	}

	if _, err := io.WriteString(w, table.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total: %d tiles\n", stats.Total)
	return err
}
