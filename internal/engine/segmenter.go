package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/inodb/vibe-region/internal/activity"
	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/region"
)

// StateSource yields activity states in traversal order. Next returns
// nil, nil at end of input. *activity.Reader implements it.
type StateSource interface {
	Next() (*activity.State, error)
}

// Segmenter feeds states to an activity profile and collects the regions
// it emits. A new contig or a gap in positions ends the current traversal
// interval, which flushes the profile. Positions that move backwards are
// an error.
type Segmenter struct {
	cfg     Config
	profile *activity.Profile
	logger  *zap.Logger
}

// NewSegmenter creates a segmenter. cfg must be valid.
func NewSegmenter(cfg Config, dict genome.ContigLengths) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Segmenter{
		cfg:     cfg,
		profile: activity.NewProfile(cfg.Threshold, dict),
		logger:  zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for debug messages.
func (s *Segmenter) SetLogger(l *zap.Logger) {
	s.logger = l
	s.profile.SetLogger(l)
}

// Add feeds one state and returns any regions that became ready.
func (s *Segmenter) Add(st activity.State) ([]*region.Region, error) {
	var out []*region.Region
	if end, ok := s.profile.End(); ok {
		if st.Locus.Contig != s.profile.Contig() || st.Locus.Start > end+1 {
			s.logger.Debug("end of traversal interval",
				zap.String("contig", s.profile.Contig()),
				zap.Int("end", end))
			flushed, err := s.Flush()
			if err != nil {
				return nil, err
			}
			out = flushed
		}
	}
	if err := s.profile.Add(st); err != nil {
		return out, err
	}
	ready, err := s.pop(false)
	return append(out, ready...), err
}

// Flush emits every region still held by the profile.
func (s *Segmenter) Flush() ([]*region.Region, error) {
	return s.pop(true)
}

func (s *Segmenter) pop(atEnd bool) ([]*region.Region, error) {
	regions, err := s.profile.PopReadyRegions(s.cfg.Extension, s.cfg.MinRegionSize, s.cfg.MaxRegionSize, atEnd)
	if err != nil {
		return nil, err
	}
	if s.cfg.ForceActive {
		for _, r := range regions {
			region.NewHandle(r).SetActive(true)
		}
	}
	return regions, nil
}

// Run drains src and calls emit for each region in genomic order.
func (s *Segmenter) Run(ctx context.Context, src StateSource, emit func(*region.Region) error) error {
	emitAll := func(regions []*region.Region) error {
		for _, r := range regions {
			if err := emit(r); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		st, err := src.Next()
		if err != nil {
			return err
		}
		if st == nil {
			break
		}
		regions, err := s.Add(*st)
		if emitErr := emitAll(regions); emitErr != nil {
			return emitErr
		}
		if err != nil {
			return err
		}
	}

	regions, err := s.Flush()
	if err != nil {
		return err
	}
	return emitAll(regions)
}
