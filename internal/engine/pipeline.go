package engine

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/reads"
	"github.com/inodb/vibe-region/internal/region"
	"github.com/inodb/vibe-region/internal/trim"
)

// Pipeline segments a traversal into regions, attaches reads and variants
// to each, and trims them on a worker pool.
type Pipeline struct {
	cfg     Config
	dict    genome.ContigLengths
	trimmer *trim.Trimmer
	reads   *reads.Index
	logger  *zap.Logger
}

// Stats summarises a pipeline run.
type Stats struct {
	Regions  int
	Active   int
	Reads    int // read attachments, counted once per region
	// Downsampled counts reads left off a region by the per-start cap.
	Downsampled int
	Outcomes map[trim.Outcome]int
}

// NewPipeline creates a pipeline. cfg is validated.
func NewPipeline(cfg Config, dict genome.ContigLengths) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t, err := trim.New(cfg.Trim)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, dict: dict, trimmer: t, logger: zap.NewNop()}, nil
}

// SetLogger sets the logger for progress and debug messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
	p.trimmer.SetLogger(l)
}

// SetReads sets the reads attached to each region before trimming.
func (p *Pipeline) SetReads(idx *reads.Index) {
	p.reads = idx
}

// Run segments src and trims every region against variants, which may be
// nil. fn is called for each result in genomic order; an error from fn
// stops the run.
func (p *Pipeline) Run(ctx context.Context, src StateSource, variants VariantLookup, fn func(WorkResult) error) (Stats, error) {
	stats := Stats{Outcomes: make(map[trim.Outcome]int)}

	seg, err := NewSegmenter(p.cfg, p.dict)
	if err != nil {
		return stats, err
	}
	seg.SetLogger(p.logger)

	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	items := make(chan WorkItem, 2*workers)
	downsampled := 0
	g.Go(func() error {
		defer close(items)
		seq := 0
		return seg.Run(gctx, src, func(r *region.Region) error {
			dropped, err := p.attachReads(r)
			if err != nil {
				return err
			}
			downsampled += dropped
			r.SetFinalized(true)

			var vs []genome.Locatable
			if variants != nil {
				vs = variants.Overlapping(r.Span())
			}
			select {
			case items <- WorkItem{Seq: seq, Region: r, Variants: vs}:
				seq++
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	results := ParallelTrim(p.trimmer, items, workers)
	collectErr := OrderedCollect(results, func(wr WorkResult) error {
		if wr.Err != nil {
			cancel()
			return fmt.Errorf("trim %s: %w", wr.Region.Span(), wr.Err)
		}
		stats.Regions++
		if wr.Region.IsActive() {
			stats.Active++
		}
		stats.Reads += wr.Region.Size()
		stats.Outcomes[wr.Result.Outcome()]++
		if err := fn(wr); err != nil {
			cancel()
			return err
		}
		return nil
	})

	waitErr := g.Wait()
	stats.Downsampled = downsampled
	if collectErr != nil {
		return stats, collectErr
	}
	if waitErr != nil {
		return stats, waitErr
	}

	p.logger.Info("segmentation complete",
		zap.Int("regions", stats.Regions),
		zap.Int("active", stats.Active),
		zap.Int("reads", stats.Reads),
		zap.Int("downsampled", stats.Downsampled))
	return stats, nil
}

// attachReads adds the indexed reads overlapping the extended span of r,
// keeping at most MaxReadsPerAlignmentStart reads per start position. It
// returns the number of reads left off.
func (p *Pipeline) attachReads(r *region.Region) (int, error) {
	if p.reads == nil {
		return 0, nil
	}
	limit := p.cfg.MaxReadsPerAlignmentStart
	dropped := 0
	lastStart, atStart := 0, 0
	// Overlapping returns reads in start order, so equal starts are adjacent.
	for _, rec := range p.reads.Overlapping(r.ExtendedSpan()) {
		if limit > 0 {
			if start := rec.Loc().Start; start == lastStart {
				atStart++
			} else {
				lastStart, atStart = start, 1
			}
			if atStart > limit {
				dropped++
				continue
			}
		}
		if err := r.Add(rec); err != nil {
			return dropped, fmt.Errorf("attach read %s to %s: %w", rec, r.Span(), err)
		}
	}
	if dropped > 0 {
		p.logger.Debug("capped reads per alignment start",
			zap.Stringer("region", r.Span()),
			zap.Int("dropped", dropped))
	}
	return dropped, nil
}
