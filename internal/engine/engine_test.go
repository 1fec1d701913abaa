package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-region/internal/activity"
	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/reads"
	"github.com/inodb/vibe-region/internal/region"
	"github.com/inodb/vibe-region/internal/trim"
	"github.com/inodb/vibe-region/internal/vcf"
)

type sliceSource struct {
	states []activity.State
	err    error
}

func (s *sliceSource) Next() (*activity.State, error) {
	if len(s.states) == 0 {
		return nil, s.err
	}
	st := s.states[0]
	s.states = s.states[1:]
	return &st, nil
}

// track builds states for [start, end] on contig; positions inside any of
// the active ranges get probability 0.9, the rest 0.
func track(contig string, start, end int, active ...[2]int) []activity.State {
	var out []activity.State
	for pos := start; pos <= end; pos++ {
		prob := 0.0
		for _, a := range active {
			if pos >= a[0] && pos <= a[1] {
				prob = 0.9
			}
		}
		out = append(out, activity.State{Locus: genome.Interval{Contig: contig, Start: pos, End: pos}, ActiveProb: prob})
	}
	return out
}

func testDict(t *testing.T) *genome.Dictionary {
	t.Helper()
	d := genome.NewDictionary()
	require.NoError(t, d.Add("chr1", 10000))
	require.NoError(t, d.Add("chr2", 5000))
	return d
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Threshold = 0.1
	cfg.MinRegionSize = 5
	cfg.MaxRegionSize = 50
	cfg.Extension = 10
	cfg.Trim = trim.Config{VariantPadding: 5, IndelPadding: 5}
	cfg.Workers = 4
	return cfg
}

func spans(regions []*region.Region) []genome.Interval {
	out := make([]genome.Interval, len(regions))
	for i, r := range regions {
		out[i] = r.Span()
	}
	return out
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	mutate := []func(*Config){
		func(c *Config) { c.Threshold = 1.5 },
		func(c *Config) { c.MinRegionSize = 0 },
		func(c *Config) { c.MaxRegionSize = -1 },
		func(c *Config) { c.MinRegionSize = 400 },
		func(c *Config) { c.Extension = -1 },
		func(c *Config) { c.Trim.IndelPadding = -1 },
		func(c *Config) { c.Workers = -2 },
		func(c *Config) { c.MaxReadsPerAlignmentStart = -1 },
	}
	for i, m := range mutate {
		cfg := DefaultConfig()
		m(&cfg)
		assert.ErrorIs(t, cfg.Validate(), genome.ErrInvalidArgument, "case %d", i)
	}
}

func TestSegmenter_Run(t *testing.T) {
	seg, err := NewSegmenter(testConfig(), testDict(t))
	require.NoError(t, err)

	var states []activity.State
	states = append(states, track("chr1", 1, 30, [2]int{11, 20})...)
	states = append(states, track("chr1", 41, 45)...) // gap at 31-40
	states = append(states, track("chr2", 1, 10, [2]int{1, 10})...)

	var got []*region.Region
	err = seg.Run(context.Background(), &sliceSource{states: states}, func(r *region.Region) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []genome.Interval{
		{Contig: "chr1", Start: 1, End: 10},
		{Contig: "chr1", Start: 11, End: 20},
		{Contig: "chr1", Start: 21, End: 30},
		{Contig: "chr1", Start: 41, End: 45},
		{Contig: "chr2", Start: 1, End: 10},
	}, spans(got))
	assert.False(t, got[0].IsActive())
	assert.True(t, got[1].IsActive())
	assert.True(t, got[4].IsActive())
	assert.Equal(t, 10, got[1].Extension())
}

func TestSegmenter_BackwardsPosition(t *testing.T) {
	seg, err := NewSegmenter(testConfig(), testDict(t))
	require.NoError(t, err)

	states := append(track("chr1", 1, 10), track("chr1", 5, 5)...)
	err = seg.Run(context.Background(), &sliceSource{states: states}, func(*region.Region) error { return nil })
	assert.ErrorIs(t, err, genome.ErrInvalidSequence)
}

func TestSegmenter_SourceError(t *testing.T) {
	seg, err := NewSegmenter(testConfig(), testDict(t))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = seg.Run(context.Background(), &sliceSource{states: track("chr1", 1, 3), err: boom}, func(*region.Region) error { return nil })
	assert.ErrorIs(t, err, boom)
}

func TestSegmenter_ForceActive(t *testing.T) {
	cfg := testConfig()
	cfg.ForceActive = true
	seg, err := NewSegmenter(cfg, testDict(t))
	require.NoError(t, err)

	for _, st := range track("chr1", 1, 20) {
		_, err := seg.Add(st)
		require.NoError(t, err)
	}
	regions, err := seg.Flush()
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.True(t, regions[0].IsActive())
}

func TestSegmenter_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MinRegionSize = 0
	_, err := NewSegmenter(cfg, testDict(t))
	assert.ErrorIs(t, err, genome.ErrInvalidArgument)
}

func makeItems(t *testing.T, n int) <-chan WorkItem {
	t.Helper()
	d := testDict(t)
	ch := make(chan WorkItem, n)
	for i := 0; i < n; i++ {
		r, err := region.New(genome.Interval{Contig: "chr1", Start: 1 + i*10, End: 10 + i*10}, true, 5, d)
		require.NoError(t, err)
		var vs []genome.Locatable
		if i%2 == 0 {
			vs = []genome.Locatable{&vcf.Variant{Chrom: "chr1", Pos: 5 + i*10, Ref: "A", Alt: "T"}}
		}
		ch <- WorkItem{Seq: i, Region: r, Variants: vs}
	}
	close(ch)
	return ch
}

func TestParallelTrim_OrderPreservation(t *testing.T) {
	tr, err := trim.New(trim.DefaultConfig())
	require.NoError(t, err)

	results := ParallelTrim(tr, makeItems(t, 200), 8)

	var collected []int
	err = OrderedCollect(results, func(r WorkResult) error {
		require.NoError(t, r.Err)
		collected = append(collected, r.Seq)
		if r.Seq%2 == 0 {
			assert.Equal(t, trim.OutcomeTrimmed, r.Result.Outcome())
		} else {
			assert.Equal(t, trim.OutcomeNoVariation, r.Result.Outcome())
		}
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelTrim_DefaultWorkers(t *testing.T) {
	tr, err := trim.New(trim.DefaultConfig())
	require.NoError(t, err)

	count := 0
	err = OrderedCollect(ParallelTrim(tr, makeItems(t, 20), 0), func(WorkResult) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}

func TestOrderedCollect_ErrorStopsEarly(t *testing.T) {
	tr, err := trim.New(trim.DefaultConfig())
	require.NoError(t, err)

	results := ParallelTrim(tr, makeItems(t, 100), 4)

	stop := errors.New("stop")
	count := 0
	err = OrderedCollect(results, func(WorkResult) error {
		count++
		if count == 5 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 5, count)
}

func TestPipeline_Run(t *testing.T) {
	p, err := NewPipeline(testConfig(), testDict(t))
	require.NoError(t, err)

	records := []*reads.Record{
		{Name: "r1", Chrom: "chr1", Start: 5, End: 25},
		{Name: "r2", Chrom: "chr1", Start: 15, End: 35},
		{Name: "r3", Chrom: "chr1", Start: 100, End: 120},
	}
	p.SetReads(reads.BuildIndex(records))

	variants := NewVariantIndex([]*vcf.Variant{
		{Chrom: "chr1", Pos: 15, Ref: "A", Alt: "G"},
	})
	require.Equal(t, 1, variants.Len())

	var got []WorkResult
	stats, err := p.Run(context.Background(), &sliceSource{states: track("chr1", 1, 30, [2]int{11, 20})}, variants, func(wr WorkResult) error {
		got = append(got, wr)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, 3, stats.Regions)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Outcomes[trim.OutcomeTrimmed])
	assert.Equal(t, 2, stats.Outcomes[trim.OutcomeNoVariation])

	active := got[1]
	assert.Equal(t, genome.Interval{Contig: "chr1", Start: 11, End: 20}, active.Region.Span())
	assert.True(t, active.Region.IsFinalized())
	assert.Equal(t, 2, active.Region.Size(), "r1 and r2 overlap the extended span")

	padded, ok := active.Result.ExtendedSpan()
	require.True(t, ok)
	assert.Equal(t, genome.Interval{Contig: "chr1", Start: 10, End: 20}, padded)
	callable, err := active.Result.CallableRegion()
	require.NoError(t, err)
	for _, rd := range callable.Reads() {
		assert.True(t, callable.ExtendedSpan().Contains(rd.Loc()))
	}
}

func TestPipeline_NoVariants(t *testing.T) {
	p, err := NewPipeline(testConfig(), testDict(t))
	require.NoError(t, err)

	stats, err := p.Run(context.Background(), &sliceSource{states: track("chr2", 1, 120, [2]int{30, 60})}, nil, func(WorkResult) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, stats.Regions, stats.Outcomes[trim.OutcomeNoVariation])
	assert.Equal(t, 0, stats.Reads)
}

func TestPipeline_CallbackErrorStops(t *testing.T) {
	p, err := NewPipeline(testConfig(), testDict(t))
	require.NoError(t, err)

	stop := errors.New("stop")
	calls := 0
	_, err = p.Run(context.Background(), &sliceSource{states: track("chr1", 1, 5000, [2]int{100, 200}, [2]int{1000, 1100})}, nil, func(WorkResult) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestPipeline_SegmenterErrorPropagates(t *testing.T) {
	p, err := NewPipeline(testConfig(), testDict(t))
	require.NoError(t, err)

	states := track("chrUnknown", 1, 10)
	_, err = p.Run(context.Background(), &sliceSource{states: states}, nil, func(WorkResult) error { return nil })
	assert.ErrorIs(t, err, genome.ErrInvalidArgument)
}

// stackedReads returns n reads starting at position 12 followed by one read
// starting at 13.
func stackedReads(n int) []*reads.Record {
	var records []*reads.Record
	for i := 0; i < n; i++ {
		records = append(records, &reads.Record{Name: fmt.Sprintf("s%d", i), Chrom: "chr1", Start: 12, End: 30})
	}
	return append(records, &reads.Record{Name: "next", Chrom: "chr1", Start: 13, End: 30})
}

func runActive(t *testing.T, cfg Config, records []*reads.Record) (*region.Region, Stats) {
	t.Helper()
	p, err := NewPipeline(cfg, testDict(t))
	require.NoError(t, err)
	p.SetReads(reads.BuildIndex(records))

	var active *region.Region
	stats, err := p.Run(context.Background(), &sliceSource{states: track("chr1", 1, 30, [2]int{11, 20})}, nil, func(wr WorkResult) error {
		if wr.Region.IsActive() {
			active = wr.Region
		}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, active)
	return active, stats
}

func TestPipeline_MaxReadsPerAlignmentStart(t *testing.T) {
	cfg := testConfig()
	cfg.MaxReadsPerAlignmentStart = 3

	active, stats := runActive(t, cfg, stackedReads(5))

	var names []string
	for _, rd := range active.Reads() {
		names = append(names, rd.(*reads.Record).Name)
	}
	assert.Equal(t, []string{"s0", "s1", "s2", "next"}, names, "first reads at a start are kept")
	assert.Positive(t, stats.Downsampled)
}

func TestPipeline_MaxReadsPerAlignmentStartDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MaxReadsPerAlignmentStart = 0

	active, stats := runActive(t, cfg, stackedReads(5))
	assert.Equal(t, 6, active.Size())
	assert.Zero(t, stats.Downsampled)
}
