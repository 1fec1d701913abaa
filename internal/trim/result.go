package trim

import (
	"fmt"
	"slices"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/region"
)

// ErrNoVariation is returned when a callable region is requested from a
// result without variation.
var ErrNoVariation = fmt.Errorf("%w: no variation in region", genome.ErrInvalidState)

// Outcome identifies the kind of a Result.
type Outcome int

const (
	OutcomeNoVariation Outcome = iota
	OutcomeNoTrimming
	OutcomeTrimmed
)

var outcomeNames = [...]string{
	OutcomeNoVariation: "no_variation",
	OutcomeNoTrimming:  "no_trimming",
	OutcomeTrimmed:     "trimmed",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Result is the outcome of trimming one region. The concrete type is one
// of *NoVariation, *NoTrimming or *Trimmed.
//
// For every result the present parts of LeftFlank, CallableSpan and
// RightFlank partition the original primary span.
type Result interface {
	Outcome() Outcome
	// Original returns the region that was trimmed.
	Original() *region.Region
	// CallableEvents returns the variants overlapping the region.
	CallableEvents() []genome.Locatable
	VariationPresent() bool
	// NeedsTrimming reports whether at least one flank is present.
	NeedsTrimming() bool
	VariantSpan() (genome.Interval, bool)
	// ExtendedSpan returns the padded variant span.
	ExtendedSpan() (genome.Interval, bool)
	// CallableSpan returns the part of the primary span covered by the
	// padded variant span.
	CallableSpan() (genome.Interval, bool)
	LeftFlank() (genome.Interval, bool)
	RightFlank() (genome.Interval, bool)
	// CallableRegion returns the region to assemble and call.
	CallableRegion() (*region.Region, error)
	// LeftFlankRegion returns nil, nil when there is no left flank.
	LeftFlankRegion() (*region.Region, error)
	// RightFlankRegion returns nil, nil when there is no right flank.
	RightFlankRegion() (*region.Region, error)

	sealed()
}

type base struct {
	original *region.Region
	events   []genome.Locatable
}

func (b *base) Original() *region.Region { return b.original }
func (b *base) CallableEvents() []genome.Locatable { return slices.Clone(b.events) }
func (b *base) VariationPresent() bool { return len(b.events) > 0 }
func (b *base) sealed() {}

// flankRegion trims the original to flank, keeping the original extension.
func (b *base) flankRegion(flank genome.Interval) (*region.Region, error) {
	return b.original.TrimToExtension(flank, b.original.Extension())
}

// NoVariation is the result for a region with no overlapping variants. The
// whole region is its left flank.
type NoVariation struct {
	base
}

func (*NoVariation) Outcome() Outcome { return OutcomeNoVariation }

func (*NoVariation) NeedsTrimming() bool { return true }

func (*NoVariation) VariantSpan() (genome.Interval, bool) { return genome.Interval{}, false }

func (*NoVariation) ExtendedSpan() (genome.Interval, bool) { return genome.Interval{}, false }

func (*NoVariation) CallableSpan() (genome.Interval, bool) { return genome.Interval{}, false }

func (n *NoVariation) LeftFlank() (genome.Interval, bool) { return n.original.Span(), true }

func (*NoVariation) RightFlank() (genome.Interval, bool) { return genome.Interval{}, false }

func (*NoVariation) CallableRegion() (*region.Region, error) { return nil, ErrNoVariation }

func (n *NoVariation) LeftFlankRegion() (*region.Region, error) { return n.original, nil }

func (*NoVariation) RightFlankRegion() (*region.Region, error) { return nil, nil }

// NoTrimming is the result when trimming is disabled. The whole region is
// callable.
type NoTrimming struct {
	base
}

func (*NoTrimming) Outcome() Outcome { return OutcomeNoTrimming }

func (*NoTrimming) NeedsTrimming() bool { return false }

func (n *NoTrimming) VariantSpan() (genome.Interval, bool) { return n.original.Span(), true }

func (n *NoTrimming) ExtendedSpan() (genome.Interval, bool) { return n.original.Span(), true }

func (n *NoTrimming) CallableSpan() (genome.Interval, bool) { return n.original.Span(), true }

func (*NoTrimming) LeftFlank() (genome.Interval, bool) { return genome.Interval{}, false }

func (*NoTrimming) RightFlank() (genome.Interval, bool) { return genome.Interval{}, false }

func (n *NoTrimming) CallableRegion() (*region.Region, error) { return n.original, nil }

func (*NoTrimming) LeftFlankRegion() (*region.Region, error) { return nil, nil }

func (*NoTrimming) RightFlankRegion() (*region.Region, error) { return nil, nil }

// Trimmed is the result for a region narrowed to its padded variant span.
type Trimmed struct {
	base
	variantSpan genome.Interval
	paddedSpan  genome.Interval
	leftFlank   genome.Interval
	rightFlank  genome.Interval
	hasLeft     bool
	hasRight    bool
}

func (*Trimmed) Outcome() Outcome { return OutcomeTrimmed }

func (t *Trimmed) NeedsTrimming() bool { return t.hasLeft || t.hasRight }

func (t *Trimmed) VariantSpan() (genome.Interval, bool) { return t.variantSpan, true }

func (t *Trimmed) ExtendedSpan() (genome.Interval, bool) { return t.paddedSpan, true }

func (t *Trimmed) CallableSpan() (genome.Interval, bool) {
	return t.original.Span().Intersect(t.paddedSpan)
}

func (t *Trimmed) LeftFlank() (genome.Interval, bool) { return t.leftFlank, t.hasLeft }

func (t *Trimmed) RightFlank() (genome.Interval, bool) { return t.rightFlank, t.hasRight }

// CallableRegion trims the original to the variant span, with the padded
// span as its extended span.
func (t *Trimmed) CallableRegion() (*region.Region, error) {
	return t.original.Trim(t.variantSpan, t.paddedSpan)
}

func (t *Trimmed) LeftFlankRegion() (*region.Region, error) {
	if !t.hasLeft {
		return nil, nil
	}
	return t.flankRegion(t.leftFlank)
}

func (t *Trimmed) RightFlankRegion() (*region.Region, error) {
	if !t.hasRight {
		return nil, nil
	}
	return t.flankRegion(t.rightFlank)
}
