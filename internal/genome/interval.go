// Package genome provides genomic coordinates, contig dictionaries and
// reference sequence access.
package genome

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is a 1-based, fully closed range on a contig.
// An Interval with End < Start is empty.
type Interval struct {
	Contig string
	Start  int
	End    int
}

// Locatable is anything that occupies an interval of the genome.
type Locatable interface {
	Loc() Interval
}

// NewInterval returns the interval [start, end] on contig.
// It fails when start < 1 or end < start.
func NewInterval(contig string, start, end int) (Interval, error) {
	if contig == "" {
		return Interval{}, fmt.Errorf("%w: empty contig name", ErrInvalidArgument)
	}
	if start < 1 {
		return Interval{}, fmt.Errorf("%w: interval start %d < 1", ErrInvalidArgument, start)
	}
	if end < start {
		return Interval{}, fmt.Errorf("%w: interval %s:%d-%d has end before start", ErrInvalidArgument, contig, start, end)
	}
	return Interval{Contig: contig, Start: start, End: end}, nil
}

// ParseInterval parses "contig:start-end" with 1-based inclusive bounds.
// The last colon separates the contig, so contig names may contain colons.
func ParseInterval(s string) (Interval, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 {
		return Interval{}, fmt.Errorf("%w: interval %q is not contig:start-end", ErrInvalidArgument, s)
	}
	startStr, endStr, ok := strings.Cut(s[i+1:], "-")
	if !ok {
		return Interval{}, fmt.Errorf("%w: interval %q is not contig:start-end", ErrInvalidArgument, s)
	}
	start, err := strconv.Atoi(strings.ReplaceAll(startStr, ",", ""))
	if err != nil {
		return Interval{}, fmt.Errorf("%w: invalid start in %q", ErrInvalidArgument, s)
	}
	end, err := strconv.Atoi(strings.ReplaceAll(endStr, ",", ""))
	if err != nil {
		return Interval{}, fmt.Errorf("%w: invalid end in %q", ErrInvalidArgument, s)
	}
	return NewInterval(s[:i], start, end)
}

// Loc returns the interval itself, so an Interval is Locatable.
func (i Interval) Loc() Interval { return i }

// Size returns the number of positions covered; zero or negative when empty.
func (i Interval) Size() int {
	return i.End - i.Start + 1
}

// IsEmpty reports whether the interval covers no positions.
func (i Interval) IsEmpty() bool {
	return i.End < i.Start
}

func (i Interval) String() string {
	return fmt.Sprintf("%s:%d-%d", i.Contig, i.Start, i.End)
}

// Compare orders intervals by (Contig, Start, End).
func (i Interval) Compare(o Interval) int {
	if c := strings.Compare(i.Contig, o.Contig); c != 0 {
		return c
	}
	if i.Start != o.Start {
		return cmpInt(i.Start, o.Start)
	}
	return cmpInt(i.End, o.End)
}

// Overlaps reports whether i and o share at least one position.
func (i Interval) Overlaps(o Interval) bool {
	if i.IsEmpty() || o.IsEmpty() {
		return false
	}
	return i.Contig == o.Contig && i.Start <= o.End && o.Start <= i.End
}

// Contains reports whether every position of o is inside i.
func (i Interval) Contains(o Interval) bool {
	if i.IsEmpty() || o.IsEmpty() {
		return false
	}
	return i.Contig == o.Contig && i.Start <= o.Start && o.End <= i.End
}

// Intersect returns the overlap of i and o. The boolean is false when the
// two do not overlap.
func (i Interval) Intersect(o Interval) (Interval, bool) {
	if !i.Overlaps(o) {
		return Interval{}, false
	}
	return Interval{Contig: i.Contig, Start: max(i.Start, o.Start), End: min(i.End, o.End)}, true
}

// Span returns the smallest interval covering both i and o, including any
// gap between them. The boolean is false when the contigs differ.
func (i Interval) Span(o Interval) (Interval, bool) {
	if i.Contig != o.Contig {
		return Interval{}, false
	}
	return Interval{Contig: i.Contig, Start: min(i.Start, o.Start), End: max(i.End, o.End)}, true
}

// Expand pads i by n positions on each side, clamped to [1, contigLength].
func (i Interval) Expand(n, contigLength int) Interval {
	return Clamp(i.Contig, i.Start-n, i.End+n, contigLength)
}

// Clamp returns [start, end] on contig trimmed to [1, contigLength].
func Clamp(contig string, start, end, contigLength int) Interval {
	return Interval{Contig: contig, Start: max(1, start), End: min(end, contigLength)}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
