// Package seed derives the random seeds used for tile shuffling, random tile
// picks and noise, so runs can be reproduced.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"
)

// Mode selects how a seed is derived.
type Mode string

const (
	// ModeContent hashes the input (plan file or source pixels). Same input, same layout.
	ModeContent Mode = "content"
	// ModeManual uses Config.Value.
	ModeManual Mode = "manual"
	// ModeRandom differs on every run.
	ModeRandom Mode = "random"
)

// Config holds the seed mode and, for ModeManual, the value.
type Config struct {
	Mode  Mode
	Value *int64
}

// Calculate returns the seed for cfg. content is hashed in ModeContent and
// ignored otherwise.
func Calculate(cfg Config, content []byte) (int64, error) {
	switch cfg.Mode {
	case ModeContent, "":
		if len(content) == 0 {
			return 0, fmt.Errorf("content is required for content-based seed mode")
		}
		return FromContent(content), nil
	case ModeManual:
		if cfg.Value == nil {
			return 0, fmt.Errorf("seed value is required for manual seed mode")
		}
		return *cfg.Value, nil
	case ModeRandom:
		return Random(), nil
	default:
		return 0, fmt.Errorf("unknown seed mode: %s", cfg.Mode)
	}
}

// FromContent hashes content into a seed.
func FromContent(content []byte) int64 {
	sum := sha256.Sum256(content)
	return int64(binary.LittleEndian.Uint64(sum[:8])) // #nosec G115 -- hash bits reinterpreted as a seed
}

// Random returns a seed that varies between runs.
func Random() int64 {
	// #nosec G404 -- seeds are not security sensitive
	return time.Now().UnixNano() ^ rand.Int63()
}

// New returns a random source seeded with s.
func New(s int64) *rand.Rand {
	return rand.New(rand.NewSource(s)) // #nosec G404 -- reproducible layouts need a seeded PRNG
}

// ValidModes lists the accepted modes.
func ValidModes() []Mode {
	return []Mode{ModeContent, ModeManual, ModeRandom}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(ValidModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("invalid seed mode: %s (valid: content, manual, random)", s)
}

// String implements pflag.Value.
func (m *Mode) String() string {
	if m == nil || *m == "" {
		return string(ModeContent)
	}
	return string(*m)
}

// Set implements pflag.Value.
func (m *Mode) Set(s string) error {
	mode, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Type implements pflag.Value.
func (m *Mode) Type() string {
	return "mode"
}
