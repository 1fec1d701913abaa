package engine

import (
	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/vcf"
)

// VariantLookup returns the variants overlapping an interval, sorted by
// start.
type VariantLookup interface {
	Overlapping(loc genome.Interval) []genome.Locatable
}

// VariantIndex is a VariantLookup over parsed VCF records.
type VariantIndex struct {
	idx *genome.Index[*vcf.Variant]
}

// NewVariantIndex indexes variants.
func NewVariantIndex(variants []*vcf.Variant) *VariantIndex {
	return &VariantIndex{idx: genome.NewIndex(variants)}
}

// Len returns the number of indexed variants.
func (v *VariantIndex) Len() int {
	return v.idx.Len()
}

// Overlapping returns the variants overlapping loc.
func (v *VariantIndex) Overlapping(loc genome.Interval) []genome.Locatable {
	found := v.idx.Overlapping(loc)
	if len(found) == 0 {
		return nil
	}
	out := make([]genome.Locatable, len(found))
	for i, f := range found {
		out[i] = f
	}
	return out
}
