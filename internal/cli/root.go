// Package cli provides the command-line interface for Tessera.
package cli

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/version"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	globalVerbose bool
	globalQuiet   bool
	globalNoColor bool
)

// NewRootCmd builds the command tree. Every call returns fresh commands with
// flags reset to their defaults.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   version.Name,
		Short: "Colour gradients, error-diffusion dithering and tile layouts",
		Long: `Tessera builds colour gradients, quantizes and dithers images against a
palette, and lays out tiled surfaces from a handful of tile types.

A tiling plan names the tile types (a flat colour or a directory of sample
photos), places gradient stops across the grid and picks a builder. Tessera
prints the resulting tile matrix and renders it to an image.`,
		Version:      version.GetInfo().Version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&globalNoColor, "no-color", false, "disable ANSI colour previews")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGradientCmd())
	rootCmd.AddCommand(newDitherCmd())
	rootCmd.AddCommand(newTilingCmd())

	return rootCmd
}

// newLogger returns a logger writing to the command's stderr at the level
// selected by --verbose and --quiet.
func newLogger(cmd *cobra.Command) hclog.Logger {
	level := hclog.Info
	switch {
	case globalVerbose:
		level = hclog.Debug
	case globalQuiet:
		level = hclog.Error
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   version.Name,
		Output: cmd.ErrOrStderr(),
		Level:  level,
	})
}

// useANSI reports whether previews written to stdout should carry colour codes.
func useANSI(cmd *cobra.Command) bool {
	if globalNoColor || cmd.OutOrStdout() != os.Stdout {
		return false
	}
	return colour.SupportsANSIColours()
}
