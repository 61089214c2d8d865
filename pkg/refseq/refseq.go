// Package refseq generates document references from a prefix, the business
// date and a per-day sequence. Pattern: PREFIX-YYYYMMDD-XXXX.
package refseq

import (
	"context"
	"fmt"
	"time"
)

// Store allocates monotonically increasing values per key. Implementations
// must be safe for concurrent use; gaps after a restart are acceptable.
type Store interface {
	// Next returns the next value for key, starting at 1.
	Next(ctx context.Context, key string) (int64, error)
}

// Config holds reference generation settings.
type Config struct {
	// Prefix identifies the document kind (e.g. "ENT", "EXT")
	Prefix string

	// PadWidth is the minimum sequence width (default 4)
	PadWidth int
}

// DefaultConfig returns standard settings for a prefix.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: 4,
	}
}

// Generator produces document references.
type Generator struct {
	store Store
}

// New creates a Generator backed by the given store.
func New(store Store) *Generator {
	return &Generator{store: store}
}

// Next generates the next reference for the prefix and business date.
// The sequence resets per prefix and calendar day (each day has its own key).
func (g *Generator) Next(ctx context.Context, cfg Config, date time.Time) (string, error) {
	if cfg.Prefix == "" {
		return "", fmt.Errorf("refseq: prefix is required")
	}

	day := date.UTC().Format("20060102")
	key := cfg.Prefix + "_" + day

	num, err := g.store.Next(ctx, key)
	if err != nil {
		return "", fmt.Errorf("refseq next %s: %w", key, err)
	}

	width := cfg.PadWidth
	if width <= 0 {
		width = 4
	}
	return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, day, width, num), nil
}
