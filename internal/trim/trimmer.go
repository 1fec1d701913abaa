// Package trim narrows assembly regions to the span around their variants.
package trim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/region"
)

// Config holds trimming parameters.
type Config struct {
	// VariantPadding is the padding around a span of single-base substitutions.
	VariantPadding int
	// IndelPadding is used instead when any event is not a single-base substitution.
	IndelPadding int
	// DisableTrimming returns every region with variation untrimmed.
	DisableTrimming bool
	// CapToExtension limits the padded span to the region's own extended span.
	CapToExtension bool
}

// DefaultConfig returns the default trimming parameters.
func DefaultConfig() Config {
	return Config{VariantPadding: 20, IndelPadding: 150}
}

// Trimmer computes trimming results. It holds no mutable state after
// construction and may be shared between goroutines.
type Trimmer struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a Trimmer.
func New(cfg Config) (*Trimmer, error) {
	if cfg.VariantPadding < 0 {
		return nil, fmt.Errorf("%w: variant padding must be >= 0 but got %d", genome.ErrInvalidArgument, cfg.VariantPadding)
	}
	if cfg.IndelPadding < 0 {
		return nil, fmt.Errorf("%w: indel padding must be >= 0 but got %d", genome.ErrInvalidArgument, cfg.IndelPadding)
	}
	return &Trimmer{cfg: cfg, logger: zap.NewNop()}, nil
}

// SetLogger sets the logger for debug messages. It must be called before
// the Trimmer is shared.
func (t *Trimmer) SetLogger(l *zap.Logger) {
	t.logger = l
}

// Config returns the trimming parameters.
func (t *Trimmer) Config() Config {
	return t.cfg
}

type snvReporter interface {
	IsSNV() bool
}

// Trim classifies r against variants, which must be sorted by start.
// Variants not overlapping the primary span of r are ignored.
func (t *Trimmer) Trim(r *region.Region, variants []genome.Locatable) (Result, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil region", genome.ErrInvalidArgument)
	}
	span := r.Span()

	var events []genome.Locatable
	for _, v := range variants {
		if v != nil && v.Loc().Overlaps(span) {
			events = append(events, v)
		}
	}

	if len(events) == 0 {
		t.logger.Debug("no variation found", zap.Stringer("region", span))
		return &NoVariation{base{original: r}}, nil
	}
	if t.cfg.DisableTrimming {
		return &NoTrimming{base{original: r, events: events}}, nil
	}

	variantSpan := events[0].Loc()
	indel := false
	for _, v := range events {
		loc := v.Loc()
		variantSpan.Start = min(variantSpan.Start, loc.Start)
		variantSpan.End = max(variantSpan.End, loc.End)
		if !isSNV(v) {
			indel = true
		}
	}

	padding := t.cfg.VariantPadding
	if indel {
		padding = t.cfg.IndelPadding
	}
	padded := variantSpan.Expand(padding, r.ContigLength())
	if t.cfg.CapToExtension {
		if capped, ok := padded.Intersect(r.ExtendedSpan()); ok {
			padded = capped
		}
		padded, _ = padded.Span(variantSpan)
	}
	if !padded.Contains(variantSpan) {
		return nil, fmt.Errorf("%w: padded span %s does not contain variant span %s",
			genome.ErrInvalidState, padded, variantSpan)
	}

	res := &Trimmed{
		base:        base{original: r, events: events},
		variantSpan: variantSpan,
		paddedSpan:  padded,
	}
	if span.Start < padded.Start {
		res.leftFlank = genome.Interval{Contig: span.Contig, Start: span.Start, End: padded.Start - 1}
		res.hasLeft = true
	}
	if span.End > padded.End {
		res.rightFlank = genome.Interval{Contig: span.Contig, Start: padded.End + 1, End: span.End}
		res.hasRight = true
	}

	if t.logger.Core().Enabled(zap.DebugLevel) {
		fields := []zap.Field{
			zap.Stringer("region", span),
			zap.Stringer("variantSpan", variantSpan),
			zap.Stringer("paddedSpan", padded),
			zap.Int("padding", padding),
			zap.Int("events", len(events)),
		}
		if res.hasLeft {
			fields = append(fields, zap.Stringer("leftFlank", res.leftFlank))
		}
		if res.hasRight {
			fields = append(fields, zap.Stringer("rightFlank", res.rightFlank))
		}
		t.logger.Debug("trimmed region", fields...)
	}
	return res, nil
}

// isSNV reports whether v is a single-base substitution. Variants that do
// not say are judged by their reference length.
func isSNV(v genome.Locatable) bool {
	if s, ok := v.(snvReporter); ok {
		return s.IsSNV()
	}
	return v.Loc().Size() == 1
}
