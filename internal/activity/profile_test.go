package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/region"
)

func testDict(t *testing.T) *genome.Dictionary {
	t.Helper()
	d := genome.NewDictionary()
	require.NoError(t, d.Add("chr1", 10000))
	require.NoError(t, d.Add("chr2", 10000))
	return d
}

func state(t *testing.T, contig string, pos int, prob float64) State {
	t.Helper()
	s, err := NewState(genome.Interval{Contig: contig, Start: pos, End: pos}, prob)
	require.NoError(t, err)
	return s
}

// fill adds one state per probability starting at position start.
func fill(t *testing.T, p *Profile, start int, probs ...float64) {
	t.Helper()
	for i, prob := range probs {
		require.NoError(t, p.Add(state(t, "chr1", start+i, prob)))
	}
}

func repeat(prob float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = prob
	}
	return out
}

func spans(regions []*region.Region) []genome.Interval {
	out := make([]genome.Interval, len(regions))
	for i, r := range regions {
		out[i] = r.Span()
	}
	return out
}

func iv(start, end int) genome.Interval {
	return genome.Interval{Contig: "chr1", Start: start, End: end}
}

func TestNewState(t *testing.T) {
	_, err := NewState(genome.Interval{Contig: "chr1", Start: 1, End: 2}, 0.5)
	assert.ErrorIs(t, err, genome.ErrInvalidArgument, "locus must be one base")

	_, err = NewState(genome.Interval{Contig: "chr1", Start: 1, End: 1}, 1.5)
	assert.ErrorIs(t, err, genome.ErrInvalidArgument, "probability above 1")

	_, err = NewState(genome.Interval{Contig: "chr1", Start: 0, End: 0}, 0.5)
	assert.ErrorIs(t, err, genome.ErrInvalidArgument, "position 0")

	s, err := NewState(genome.Interval{Contig: "chr1", Start: 7, End: 7}, 0.25)
	require.NoError(t, err)
	assert.Equal(t, TypeNone, s.Type)
	assert.Equal(t, "State{loc=chr1:7-7, activeProb=0.25, type=NONE}", s.String())
}

func TestProfile_Add(t *testing.T) {
	p := NewProfile(0.1, testDict(t))
	assert.True(t, p.IsEmpty())
	_, ok := p.End()
	assert.False(t, ok)

	fill(t, p, 100, 0.5, 0.5, 0.5)
	assert.False(t, p.IsEmpty())
	assert.Equal(t, 3, p.Len())
	start, _ := p.Start()
	end, _ := p.End()
	assert.Equal(t, 100, start)
	assert.Equal(t, 102, end)
	assert.Equal(t, "chr1", p.Contig())
	assert.Equal(t, "Profile{contig=chr1, start=100, stop=102}", p.String())
}

func TestProfile_AddNonContiguous(t *testing.T) {
	p := NewProfile(0.1, testDict(t))
	fill(t, p, 100, 0.5)

	err := p.Add(state(t, "chr1", 102, 0.5))
	assert.ErrorIs(t, err, genome.ErrInvalidSequence, "gap")

	err = p.Add(state(t, "chr1", 100, 0.5))
	assert.ErrorIs(t, err, genome.ErrInvalidSequence, "repeat")

	err = p.Add(state(t, "chr2", 101, 0.5))
	assert.ErrorIs(t, err, genome.ErrInvalidSequence, "contig change")

	err = p.Add(State{Locus: genome.Interval{Contig: "chr1", Start: 101, End: 102}})
	assert.ErrorIs(t, err, genome.ErrInvalidArgument)

	assert.Equal(t, 1, p.Len())
}

func TestPopReadyRegions_SingleActiveRun(t *testing.T) {
	p := NewProfile(0.1, testDict(t))
	fill(t, p, 1, repeat(0.9, 10)...)

	regions, err := p.PopReadyRegions(0, 2, 20, true)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, iv(1, 10), regions[0].Span())
	assert.True(t, regions[0].IsActive())
	assert.Equal(t, 0, regions[0].Extension())
	assert.True(t, p.IsEmpty())
}

func TestPopReadyRegions_InsufficientLookAhead(t *testing.T) {
	for _, prob := range []float64{0.0, 0.9} {
		p := NewProfile(0.1, testDict(t))
		fill(t, p, 1, repeat(prob, 19)...)

		regions, err := p.PopReadyRegions(10, 5, 20, false)
		require.NoError(t, err)
		assert.Empty(t, regions)
		assert.Equal(t, 19, p.Len(), "nothing is removed")
	}
}

func TestPopReadyRegions_Boundaries(t *testing.T) {
	p := NewProfile(0.5, testDict(t))
	probs := append(append(repeat(0.1, 3), repeat(0.9, 4)...), repeat(0.2, 3)...)
	fill(t, p, 1, probs...)

	regions, err := p.PopReadyRegions(5, 1, 50, true)
	require.NoError(t, err)
	assert.Equal(t, []genome.Interval{iv(1, 3), iv(4, 7), iv(8, 10)}, spans(regions))
	assert.False(t, regions[0].IsActive())
	assert.True(t, regions[1].IsActive())
	assert.False(t, regions[2].IsActive())
	assert.Equal(t, iv(1, 8), regions[0].ExtendedSpan(), "extension clamped at contig start")
	assert.Equal(t, iv(3, 15), regions[2].ExtendedSpan())
}

func TestPopReadyRegions_ThresholdIsStrict(t *testing.T) {
	p := NewProfile(0.5, testDict(t))
	fill(t, p, 1, 0.5, 0.5, 0.51)

	regions, err := p.PopReadyRegions(0, 1, 10, true)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.False(t, regions[0].IsActive())
	assert.Equal(t, iv(3, 3), regions[1].Span())
	assert.True(t, regions[1].IsActive())
}

func TestPopReadyRegions_InactiveRunsSplitAtMax(t *testing.T) {
	p := NewProfile(0.5, testDict(t))
	fill(t, p, 1, repeat(0.1, 10)...)

	regions, err := p.PopReadyRegions(0, 2, 4, false)
	require.NoError(t, err)
	assert.Equal(t, []genome.Interval{iv(1, 4), iv(5, 8)}, spans(regions))

	start, _ := p.Start()
	end, _ := p.End()
	assert.Equal(t, 9, start)
	assert.Equal(t, 10, end)

	regions, err = p.PopReadyRegions(0, 2, 4, true)
	require.NoError(t, err)
	assert.Equal(t, []genome.Interval{iv(9, 10)}, spans(regions))
	assert.True(t, p.IsEmpty())
	_, ok := p.Start()
	assert.False(t, ok)
}

func TestPopReadyRegions_CutsLongActiveRunAtMinimum(t *testing.T) {
	p := NewProfile(0.5, testDict(t))
	fill(t, p, 1, 0.9, 0.9, 0.8, 0.7, 0.6, 0.95, 0.55, 0.9, 0.9, 0.9)

	regions, err := p.PopReadyRegions(0, 3, 8, false)
	require.NoError(t, err)
	require.Len(t, regions, 1, "the remaining 4 states lack look-ahead")
	assert.Equal(t, iv(1, 6), regions[0].Span(), "cut before the 0.55 state at index 6")
	assert.True(t, regions[0].IsActive())

	start, _ := p.Start()
	assert.Equal(t, 7, start)
}

func TestPopReadyRegions_CutTieTakesEarliest(t *testing.T) {
	p := NewProfile(0.5, testDict(t))
	fill(t, p, 1, 0.9, 0.9, 0.6, 0.6, 0.6, 0.9)

	regions, err := p.PopReadyRegions(0, 2, 5, true)
	require.NoError(t, err)
	assert.Equal(t, []genome.Interval{iv(1, 2), iv(3, 6)}, spans(regions))
}

func TestPopReadyRegions_CutNeverBelowMin(t *testing.T) {
	p := NewProfile(0.5, testDict(t))
	fill(t, p, 1, 0.9, 0.51, 0.9, 0.9, 0.8, 0.9, 0.9)

	regions, err := p.PopReadyRegions(0, 3, 6, true)
	require.NoError(t, err)
	require.NotEmpty(t, regions)
	assert.Equal(t, iv(1, 4), regions[0].Span(), "the 0.51 state sits before minRegionSize")
}

func TestPopReadyRegions_MinNotBelowMaxKeepsMax(t *testing.T) {
	p := NewProfile(0.5, testDict(t))
	fill(t, p, 1, repeat(0.9, 12)...)

	regions, err := p.PopReadyRegions(0, 5, 5, true)
	require.NoError(t, err)
	assert.Equal(t, []genome.Interval{iv(1, 5), iv(6, 10), iv(11, 12)}, spans(regions))
}

func TestPopReadyRegions_RegionsNeverExceedMax(t *testing.T) {
	p := NewProfile(0.3, testDict(t))
	var probs []float64
	for i := 0; i < 500; i++ {
		probs = append(probs, float64((i*37)%100)/100)
	}
	fill(t, p, 1, probs...)

	var all []*region.Region
	regions, err := p.PopReadyRegions(10, 5, 30, false)
	require.NoError(t, err)
	all = append(all, regions...)
	regions, err = p.PopReadyRegions(10, 5, 30, true)
	require.NoError(t, err)
	all = append(all, regions...)

	next := 1
	for _, r := range all {
		assert.Equal(t, next, r.Start(), "regions tile the input without gaps")
		assert.LessOrEqual(t, r.Span().Size(), 30)
		next = r.End() + 1
	}
	assert.Equal(t, 501, next)
	assert.True(t, p.IsEmpty())
}

func TestPopReadyRegions_InvalidArguments(t *testing.T) {
	p := NewProfile(0.5, testDict(t))
	fill(t, p, 1, 0.9)

	_, err := p.PopReadyRegions(-1, 1, 1, true)
	assert.ErrorIs(t, err, genome.ErrInvalidArgument)
	_, err = p.PopReadyRegions(0, 0, 1, true)
	assert.ErrorIs(t, err, genome.ErrInvalidArgument)
	_, err = p.PopReadyRegions(0, 1, 0, true)
	assert.ErrorIs(t, err, genome.ErrInvalidArgument)
	assert.Equal(t, 1, p.Len())
}

func TestPopReadyRegions_UnknownContig(t *testing.T) {
	p := NewProfile(0.5, testDict(t))
	require.NoError(t, p.Add(state(t, "chrUn", 1, 0.9)))

	_, err := p.PopReadyRegions(0, 1, 1, true)
	assert.ErrorIs(t, err, genome.ErrInvalidArgument)
}
