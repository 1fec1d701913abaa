// Package reads provides aligned read records for region attachment.
package reads

import (
	"fmt"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/region"
)

// Record is an aligned read reduced to what region attachment needs: its
// reference interval and identity. Clipping is a hard clip of the
// reference interval.
type Record struct {
	Name  string
	Flag  int
	Chrom string
	Start int // 1-based leftmost reference position
	End   int // 1-based rightmost reference position; End < Start when empty
	MapQ  int
	Cigar string
}

// Loc returns the reference interval covered by the read.
func (r *Record) Loc() genome.Interval {
	return genome.Interval{Contig: r.Chrom, Start: r.Start, End: r.End}
}

// IsEmpty reports whether the read covers no reference positions.
func (r *Record) IsEmpty() bool {
	return r.End < r.Start
}

// ClipToInterval returns a copy of the read restricted to [start, end].
func (r *Record) ClipToInterval(start, end int) region.Read {
	c := *r
	c.Start = max(r.Start, start)
	c.End = min(r.End, end)
	if c.Start != r.Start || c.End != r.End {
		c.Cigar = "*"
	}
	return &c
}

func (r *Record) String() string {
	return fmt.Sprintf("%s@%s:%d-%d", r.Name, r.Chrom, r.Start, r.End)
}

// IsUnmapped reports whether the unmapped flag (0x4) is set.
func (r *Record) IsUnmapped() bool {
	return r.Flag&0x4 != 0
}
