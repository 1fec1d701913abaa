package genome

import (
	"slices"
	"sort"
)

// Index answers overlap queries over a fixed set of intervals. It is
// built once and never modified, so it is safe for concurrent readers.
type Index[T Locatable] struct {
	byContig map[string]*contigIndex[T]
	count    int
}

// contigIndex is a sorted-slice interval tree for one contig.
type contigIndex[T Locatable] struct {
	items  []T
	maxEnd []int // maxEnd[i] = max(End) for items[:i+1]
}

// NewIndex creates an index over items. Items with empty intervals are
// ignored.
func NewIndex[T Locatable](items []T) *Index[T] {
	idx := &Index[T]{byContig: make(map[string]*contigIndex[T])}
	for _, it := range items {
		loc := it.Loc()
		if loc.IsEmpty() {
			continue
		}
		ci, ok := idx.byContig[loc.Contig]
		if !ok {
			ci = &contigIndex[T]{}
			idx.byContig[loc.Contig] = ci
		}
		ci.items = append(ci.items, it)
		idx.count++
	}

	for _, ci := range idx.byContig {
		slices.SortStableFunc(ci.items, func(a, b T) int {
			return cmpInt(a.Loc().Start, b.Loc().Start)
		})
		// Build prefix-max array so a backwards scan can stop early.
		ci.maxEnd = make([]int, len(ci.items))
		for i, it := range ci.items {
			ci.maxEnd[i] = it.Loc().End
			if i > 0 && ci.maxEnd[i-1] > ci.maxEnd[i] {
				ci.maxEnd[i] = ci.maxEnd[i-1]
			}
		}
	}
	return idx
}

// Len returns the number of indexed items.
func (idx *Index[T]) Len() int {
	return idx.count
}

// Overlapping returns the items overlapping loc in non-decreasing start
// order. Items with equal starts keep their input order.
func (idx *Index[T]) Overlapping(loc Interval) []T {
	ci, ok := idx.byContig[loc.Contig]
	if !ok || loc.IsEmpty() {
		return nil
	}

	// hi is the first index with Start > loc.End; candidates are [0, hi).
	hi := sort.Search(len(ci.items), func(i int) bool {
		return ci.items[i].Loc().Start > loc.End
	})

	var result []T
	for i := hi - 1; i >= 0; i-- {
		// Nothing in [0, i] reaches loc.Start.
		if ci.maxEnd[i] < loc.Start {
			break
		}
		if ci.items[i].Loc().End >= loc.Start {
			result = append(result, ci.items[i])
		}
	}
	slices.Reverse(result)
	return result
}
