package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex_Intervals(t *testing.T) {
	idx := NewIndex([]Interval{
		{Contig: "chr1", Start: 300, End: 310},
		{Contig: "chr1", Start: 100, End: 200},
		{Contig: "chr2", Start: 100, End: 200},
		{Contig: "chr1", Start: 50, End: 40},
	})

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []Interval{{Contig: "chr1", Start: 100, End: 200}, {Contig: "chr1", Start: 300, End: 310}},
		idx.Overlapping(Interval{Contig: "chr1", Start: 200, End: 300}))
	assert.Empty(t, idx.Overlapping(Interval{Contig: "chr1", Start: 201, End: 299}))
	assert.Empty(t, idx.Overlapping(Interval{Contig: "chr3", Start: 1, End: 1000}))
	assert.Empty(t, idx.Overlapping(Interval{Contig: "chr1", Start: 150, End: 149}))
}
