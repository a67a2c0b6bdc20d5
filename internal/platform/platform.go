// Package platform defines the supported exchange platforms and the
// timezone normalization applied to their order exports.
package platform

import (
	"fmt"
	"strings"
	"time"
)

// Supported platform identifiers
const (
	Bybit = "bybit"
	HTX   = "htx"
	Bliss = "bliss"
	Gate  = "gate"
)

// All lists every supported platform
var All = []string{Bybit, HTX, Bliss, Gate}

// IsSupported reports whether name is a known platform identifier
func IsSupported(name string) bool {
	switch Normalize(name) {
	case Bybit, HTX, Bliss, Gate:
		return true
	}
	return false
}

// Normalize lowercases and trims a platform name
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DefaultOffsets holds the per-platform timestamp shift in hours relative to
// the canonical reporting timezone (Moscow time). Exports from a platform
// carry naive local timestamps; adding the offset yields canonical time.
var DefaultOffsets = map[string]int{
	Bybit: 3,
	HTX:   -5,
	Bliss: 3,
	Gate:  0,
}

// Normalizer converts platform-local timestamps to canonical time
type Normalizer struct {
	offsets map[string]int
}

// NewNormalizer creates a normalizer from a platform -> offset-hours map.
// A nil map falls back to DefaultOffsets.
func NewNormalizer(offsets map[string]int) *Normalizer {
	if offsets == nil {
		offsets = DefaultOffsets
	}
	return &Normalizer{offsets: offsets}
}

// Offset returns the configured hour offset for a platform (0 when unknown)
func (n *Normalizer) Offset(name string) int {
	return n.offsets[Normalize(name)]
}

// ToCanonical shifts a naive platform-local timestamp into canonical time.
// Applied exactly once, at ingestion; stored timestamps are canonical.
func (n *Normalizer) ToCanonical(name string, t time.Time) time.Time {
	return t.Add(time.Duration(n.Offset(name)) * time.Hour)
}

// Validate returns the canonical form of the given platform name, or an
// error when the platform is unknown
func Validate(name string) (string, error) {
	canonical := Normalize(name)
	if !IsSupported(canonical) {
		return "", fmt.Errorf("unsupported platform: %q", name)
	}
	return canonical, nil
}
