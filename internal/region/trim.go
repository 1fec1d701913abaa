package region

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/inodb/vibe-region/internal/genome"
)

// Trim returns a new region restricted to the part of the primary span
// inside target, with an extension just large enough to reach
// targetExtended but never larger than this region's extension.
// Attached reads are clipped to the new extended span; reads that become
// empty or fall outside it are dropped. The receiver is not modified.
func (r *Region) Trim(target, targetExtended genome.Interval) (*Region, error) {
	if !targetExtended.Contains(target) {
		return nil, fmt.Errorf("%w: the requested extended span %s must fully contain the requested span %s",
			genome.ErrInvalidArgument, targetExtended, target)
	}
	sub, ok := r.span.Intersect(target)
	if !ok {
		return nil, fmt.Errorf("%w: requested span %s does not overlap region %s",
			genome.ErrInvalidArgument, target, r.span)
	}

	neededLeft := max(0, sub.Start-targetExtended.Start)
	neededRight := max(0, targetExtended.End-sub.End)
	extension := min(max(neededLeft, neededRight), r.extension)
	// Keep the original extension when clamping to the contig makes the
	// two indistinguishable.
	if extension < r.extension && sub.Expand(extension, r.contigLength) == sub.Expand(r.extension, r.contigLength) {
		extension = r.extension
	}

	result := newRegion(sub, r.isActive, extension, r.contigLength)

	ext := result.extendedSpan
	trimmed := make([]Read, 0, len(r.reads))
	for _, read := range r.reads {
		clipped := read.ClipToInterval(ext.Start, ext.End)
		if clipped != nil && result.OverlapsRead(clipped) {
			trimmed = append(trimmed, clipped)
		}
	}
	slices.SortStableFunc(trimmed, func(a, b Read) int {
		return cmp.Compare(a.Loc().Start, b.Loc().Start)
	})

	if err := result.AddAll(trimmed); err != nil {
		return nil, fmt.Errorf("trim %s to %s: %w", r.span, sub, err)
	}
	return result, nil
}

// TrimToExtension trims the region to target, using target padded by
// extension (clamped to the contig) as the requested extended span.
func (r *Region) TrimToExtension(target genome.Interval, extension int) (*Region, error) {
	if extension < 0 {
		return nil, fmt.Errorf("%w: extension must be >= 0 but got %d", genome.ErrInvalidArgument, extension)
	}
	return r.Trim(target, target.Expand(extension, r.contigLength))
}
