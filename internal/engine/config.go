// Package engine drives an activity profile over a traversal and trims the
// resulting regions on a worker pool.
package engine

import (
	"fmt"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/trim"
)

// Config holds segmentation and trimming parameters.
type Config struct {
	Threshold     float64
	MinRegionSize int
	MaxRegionSize int
	Extension     int
	// ForceActive marks every emitted region active.
	ForceActive bool
	// MaxReadsPerAlignmentStart caps the reads attached to a region that
	// share a start position; 0 disables the cap.
	MaxReadsPerAlignmentStart int
	// Trim holds the trimming parameters.
	Trim trim.Config
	// Workers is the trim worker count; 0 means runtime.NumCPU().
	Workers int
}

// DefaultConfig returns the default parameters.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.002,
		MinRegionSize: 50,
		MaxRegionSize: 300,
		Extension:     100,
		Trim:          trim.DefaultConfig(),

		MaxReadsPerAlignmentStart: 50,
	}
}

// Validate checks the parameters for consistency.
func (c Config) Validate() error {
	switch {
	case c.Threshold < 0 || c.Threshold > 1:
		return fmt.Errorf("%w: threshold must be in [0, 1] but got %g", genome.ErrInvalidArgument, c.Threshold)
	case c.MinRegionSize <= 0:
		return fmt.Errorf("%w: min region size must be > 0 but got %d", genome.ErrInvalidArgument, c.MinRegionSize)
	case c.MaxRegionSize <= 0:
		return fmt.Errorf("%w: max region size must be > 0 but got %d", genome.ErrInvalidArgument, c.MaxRegionSize)
	case c.MinRegionSize > c.MaxRegionSize:
		return fmt.Errorf("%w: min region size %d exceeds max region size %d",
			genome.ErrInvalidArgument, c.MinRegionSize, c.MaxRegionSize)
	case c.Extension < 0:
		return fmt.Errorf("%w: extension must be >= 0 but got %d", genome.ErrInvalidArgument, c.Extension)
	case c.MaxReadsPerAlignmentStart < 0:
		return fmt.Errorf("%w: max reads per alignment start must be >= 0 but got %d",
			genome.ErrInvalidArgument, c.MaxReadsPerAlignmentStart)
	case c.Trim.VariantPadding < 0 || c.Trim.IndelPadding < 0:
		return fmt.Errorf("%w: padding must be >= 0", genome.ErrInvalidArgument)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be >= 0 but got %d", genome.ErrInvalidArgument, c.Workers)
	}
	return nil
}
