package activity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/region"
)

// Profile accumulates contiguous activity states and emits regions once
// their boundaries can no longer change.
//
// A Profile is fed by a single traversal goroutine; Add and
// PopReadyRegions must not be called concurrently.
type Profile struct {
	threshold float64
	dict      genome.ContigLengths
	states    []State
	// bounds of states; valid only when states is non-empty
	regionStart, regionStop int
	logger                  *zap.Logger
}

// NewProfile creates an empty profile. A state is active when its
// probability is strictly greater than threshold.
func NewProfile(threshold float64, dict genome.ContigLengths) *Profile {
	return &Profile{
		threshold: threshold,
		dict:      dict,
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (p *Profile) SetLogger(l *zap.Logger) {
	p.logger = l
}

// IsEmpty reports whether the profile holds no states.
func (p *Profile) IsEmpty() bool { return len(p.states) == 0 }

// Len returns the number of held states.
func (p *Profile) Len() int { return len(p.states) }

// Start returns the position of the first held state.
func (p *Profile) Start() (int, bool) {
	if p.IsEmpty() {
		return 0, false
	}
	return p.regionStart, true
}

// End returns the position of the last held state.
func (p *Profile) End() (int, bool) {
	if p.IsEmpty() {
		return 0, false
	}
	return p.regionStop, true
}

// Contig returns the contig of the held states, or "" when empty.
func (p *Profile) Contig() string {
	if p.IsEmpty() {
		return ""
	}
	return p.states[0].Locus.Contig
}

func (p *Profile) String() string {
	if p.IsEmpty() {
		return "Profile{empty}"
	}
	return fmt.Sprintf("Profile{contig=%s, start=%d, stop=%d}", p.Contig(), p.regionStart, p.regionStop)
}

// Add appends the next state. It must sit immediately after the last
// added state on the same contig.
func (p *Profile) Add(s State) error {
	loc := s.Locus
	if loc.Size() != 1 {
		return fmt.Errorf("%w: activity state at %s is not a single position", genome.ErrInvalidArgument, loc)
	}
	if p.IsEmpty() {
		p.regionStart = loc.Start
		p.regionStop = loc.Start
	} else {
		if loc.Contig != p.Contig() || loc.Start != p.regionStop+1 {
			return fmt.Errorf("%w: loc %s not immediately after last loc %s:%d",
				genome.ErrInvalidSequence, loc, p.Contig(), p.regionStop)
		}
		p.regionStop++
	}
	p.states = append(p.states, s)
	return nil
}

// PopReadyRegions removes and returns the leading regions whose boundaries
// are final, in genomic order.
//
// A region is ready when maxRegionSize states of look-ahead are available,
// or when atEndOfInterval is set (end of contig or traversal). Runs of
// states with the same classification form one region; active runs longer
// than maxRegionSize are cut at the weakest position past minRegionSize.
func (p *Profile) PopReadyRegions(extension, minRegionSize, maxRegionSize int, atEndOfInterval bool) ([]*region.Region, error) {
	if extension < 0 {
		return nil, fmt.Errorf("%w: extension must be >= 0 but got %d", genome.ErrInvalidArgument, extension)
	}
	if minRegionSize <= 0 {
		return nil, fmt.Errorf("%w: minRegionSize must be >= 1 but got %d", genome.ErrInvalidArgument, minRegionSize)
	}
	if maxRegionSize <= 0 {
		return nil, fmt.Errorf("%w: maxRegionSize must be >= 1 but got %d", genome.ErrInvalidArgument, maxRegionSize)
	}

	var regions []*region.Region
	for len(p.states) > 0 && (atEndOfInterval || len(p.states) >= maxRegionSize) {
		first := p.states[0]
		isActive := first.ActiveProb > p.threshold

		boundary := p.findEndOfRegion(isActive, minRegionSize, maxRegionSize)

		span := genome.Interval{
			Contig: first.Locus.Contig,
			Start:  first.Locus.Start,
			End:    first.Locus.Start + boundary - 1,
		}
		r, err := region.New(span, isActive, extension, p.dict)
		if err != nil {
			return regions, fmt.Errorf("create region %s: %w", span, err)
		}
		regions = append(regions, r)

		p.states = p.states[boundary:]
		if len(p.states) == 0 {
			p.states = nil
			p.regionStart, p.regionStop = 0, 0
		} else {
			p.regionStart = p.states[0].Locus.Start
		}
	}
	return regions, nil
}

// findEndOfRegion returns the number of leading states that make up the
// next region.
func (p *Profile) findEndOfRegion(isActive bool, minRegionSize, maxRegionSize int) int {
	boundary := p.findFirstActivityBoundary(isActive, maxRegionSize)
	if isActive && boundary == maxRegionSize {
		if cut, ok := p.findBestCutSite(minRegionSize, maxRegionSize); ok {
			p.logger.Debug("cutting over-long active run",
				zap.String("contig", p.Contig()),
				zap.Int("start", p.regionStart),
				zap.Int("size", cut))
			return cut
		}
	}
	return boundary
}

// findFirstActivityBoundary returns the index of the first state whose
// classification differs from isActive, or min(maxRegionSize, len(states))
// if there is none.
func (p *Profile) findFirstActivityBoundary(isActive bool, maxRegionSize int) int {
	limit := min(maxRegionSize, len(p.states))
	for i := 1; i < limit; i++ {
		if (p.states[i].ActiveProb > p.threshold) != isActive {
			return i
		}
	}
	return limit
}

// findBestCutSite returns the index in [minRegionSize, maxRegionSize) with
// the lowest activity probability; the earliest index wins ties. The
// boolean is false when the range is empty.
func (p *Profile) findBestCutSite(minRegionSize, maxRegionSize int) (int, bool) {
	hi := min(maxRegionSize, len(p.states))
	if minRegionSize >= hi {
		return 0, false
	}
	best := minRegionSize
	for i := minRegionSize + 1; i < hi; i++ {
		if p.states[i].ActiveProb < p.states[best].ActiveProb {
			best = i
		}
	}
	return best, true
}
