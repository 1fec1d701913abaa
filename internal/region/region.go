// Package region provides assembly regions: a primary span of the genome
// with a symmetric extension and the reads that overlap the extended span.
//
// A Region is owned by one goroutine at a time. Regions produced by an
// activity profile are independent and may be handed to separate workers.
package region

import (
	"fmt"
	"slices"

	"github.com/inodb/vibe-region/internal/genome"
)

// Read is a record that can be attached to a Region.
// Implementations must be comparable (typically pointers), because
// RemoveAll matches reads by identity.
type Read interface {
	genome.Locatable
	// IsEmpty reports whether the read covers no reference positions.
	IsEmpty() bool
	// ClipToInterval returns a copy of the read restricted to [start, end].
	// The result may be empty.
	ClipToInterval(start, end int) Read
}

// Region is a window of the genome classified as active or inactive.
type Region struct {
	span         genome.Interval
	extension    int
	extendedSpan genome.Interval
	contigLength int
	isActive     bool
	reads        []Read
	readSpan     genome.Interval
	finalized    bool
}

// New creates a read-free region over span. The extended span is span
// padded by extension on both sides, clamped to the contig bounds.
func New(span genome.Interval, isActive bool, extension int, dict genome.ContigLengths) (*Region, error) {
	if span.Size() <= 0 {
		return nil, fmt.Errorf("%w: region %s has no size", genome.ErrInvalidArgument, span)
	}
	if extension < 0 {
		return nil, fmt.Errorf("%w: extension must be >= 0 but got %d", genome.ErrInvalidArgument, extension)
	}
	contigLength, ok := dict.ContigLength(span.Contig)
	if !ok {
		return nil, fmt.Errorf("%w: unknown contig %s", genome.ErrInvalidArgument, span.Contig)
	}
	if span.Start < 1 || span.End > contigLength {
		return nil, fmt.Errorf("%w: region %s outside contig of length %d", genome.ErrInvalidArgument, span, contigLength)
	}
	return newRegion(span, isActive, extension, contigLength), nil
}

func newRegion(span genome.Interval, isActive bool, extension, contigLength int) *Region {
	extended := span.Expand(extension, contigLength)
	return &Region{
		span:         span,
		extension:    extension,
		extendedSpan: extended,
		contigLength: contigLength,
		isActive:     isActive,
		readSpan:     extended,
	}
}

// Loc returns the primary span.
func (r *Region) Loc() genome.Interval { return r.span }

// Span returns the primary span.
func (r *Region) Span() genome.Interval { return r.span }

// ExtendedSpan returns the primary span padded by the extension.
func (r *Region) ExtendedSpan() genome.Interval { return r.extendedSpan }

// Extension returns the padding applied on each side of the primary span.
func (r *Region) Extension() int { return r.extension }

// ContigLength returns the length of the region's contig.
func (r *Region) ContigLength() int { return r.contigLength }

// IsActive reports the activity classification of the region.
func (r *Region) IsActive() bool { return r.isActive }

// Contig returns the contig of the primary span.
func (r *Region) Contig() string { return r.span.Contig }

// Start returns the first position of the primary span.
func (r *Region) Start() int { return r.span.Start }

// End returns the last position of the primary span.
func (r *Region) End() int { return r.span.End }

// Reads returns a copy of the attached reads in insertion order.
func (r *Region) Reads() []Read {
	return slices.Clone(r.reads)
}

// Size returns the number of attached reads.
func (r *Region) Size() int { return len(r.reads) }

// ReadSpan returns the extended span unioned with every attached read.
func (r *Region) ReadSpan() genome.Interval { return r.readSpan }

// SetFinalized marks the region as finalized. The flag is bookkeeping only;
// mutations are still allowed.
func (r *Region) SetFinalized(v bool) { r.finalized = v }

// IsFinalized reports the value set by SetFinalized.
func (r *Region) IsFinalized() bool { return r.finalized }

func (r *Region) String() string {
	return fmt.Sprintf("Region %s active?=%t nReads=%d", r.span, r.isActive, len(r.reads))
}

// OverlapsRead reports whether read is non-empty and overlaps the extended span.
func (r *Region) OverlapsRead(read Read) bool {
	if read == nil || read.IsEmpty() {
		return false
	}
	return read.Loc().Overlaps(r.extendedSpan)
}

// Add attaches read. Reads must overlap the extended span and arrive in
// non-decreasing start order on a single contig.
func (r *Region) Add(read Read) error {
	if read == nil {
		return fmt.Errorf("%w: read cannot be nil", genome.ErrInvalidArgument)
	}
	loc := read.Loc()
	if !r.OverlapsRead(read) {
		return fmt.Errorf("%w: read location %s doesn't overlap with region extended span %s",
			genome.ErrInvalidArgument, loc, r.extendedSpan)
	}
	if n := len(r.reads); n > 0 {
		last := r.reads[n-1].Loc()
		if last.Contig != loc.Contig {
			return fmt.Errorf("%w: read at %s is not on the same contig as the last read at %s",
				genome.ErrInvalidArgument, loc, last)
		}
		if loc.Start < last.Start {
			return fmt.Errorf("%w: read at %s added out of order after read at %s",
				genome.ErrInvalidArgument, loc, last)
		}
	}

	r.reads = append(r.reads, read)
	r.readSpan, _ = r.readSpan.Span(loc)
	return nil
}

// AddAll adds reads in order. It stops at the first failure; reads added
// before the failure stay attached.
func (r *Region) AddAll(reads []Read) error {
	for _, read := range reads {
		if err := r.Add(read); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAll detaches every read in remove and recomputes the read span.
func (r *Region) RemoveAll(remove []Read) {
	if len(remove) == 0 || len(r.reads) == 0 {
		return
	}
	drop := make(map[Read]struct{}, len(remove))
	for _, read := range remove {
		drop[read] = struct{}{}
	}
	r.reads = slices.DeleteFunc(r.reads, func(read Read) bool {
		_, ok := drop[read]
		return ok
	})
	r.recomputeReadSpan()
}

// ClearReads detaches all reads.
func (r *Region) ClearReads() {
	r.reads = nil
	r.readSpan = r.extendedSpan
}

func (r *Region) recomputeReadSpan() {
	span := r.extendedSpan
	for _, read := range r.reads {
		span, _ = span.Span(read.Loc())
	}
	r.readSpan = span
}

// EqualIgnoreReads reports whether two regions have the same spans,
// extension and activity, regardless of their reads.
func (r *Region) EqualIgnoreReads(other *Region) bool {
	if other == nil {
		return false
	}
	return r.span == other.span &&
		r.isActive == other.isActive &&
		r.extension == other.extension &&
		r.extendedSpan == other.extendedSpan
}

// ReferenceBases returns the reference under the extended span, padded by
// padding on each side and clamped to the contig.
func (r *Region) ReferenceBases(ref genome.Reference, padding int) ([]byte, error) {
	if padding < 0 {
		return nil, fmt.Errorf("%w: padding must be >= 0 but got %d", genome.ErrInvalidArgument, padding)
	}
	loc := r.extendedSpan.Expand(padding, r.contigLength)
	bases, err := ref.Subsequence(loc.Contig, loc.Start, loc.End)
	if err != nil {
		return nil, fmt.Errorf("reference for %s: %w", loc, err)
	}
	return bases, nil
}
