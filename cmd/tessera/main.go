// Tessera - colour gradients, error-diffusion dithering and tile layouts
//
// Tessera builds perceptual colour gradients, reduces images to a palette and
// lays out tiled surfaces from flat colours or photographed tile samples.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/tessera/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
