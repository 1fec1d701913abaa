// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"fmt"

	"github.com/inodb/vibe-region/internal/genome"
)

// Variant represents a single genomic variant from a VCF file.
type Variant struct {
	Chrom         string         // Chromosome name (e.g., "12", "chr12")
	Pos           int            // 1-based genomic position
	ID            string         // Variant identifier (e.g., rs ID)
	Ref           string         // Reference allele
	Alt           string         // Alternate allele(s), comma separated before splitting
	Qual          float64        // Quality score
	Filter        string         // Filter status (PASS or filter name)
	Info          map[string]any // INFO field key-value pairs
	SampleColumns string         // FORMAT and sample columns, tab separated
}

// Loc returns the reference interval covered by the REF allele.
func (v *Variant) Loc() genome.Interval {
	return genome.Interval{Contig: v.Chrom, Start: v.Pos, End: v.End()}
}

// End returns the last reference position covered by the REF allele.
func (v *Variant) End() int {
	return v.Pos + max(len(v.Ref), 1) - 1
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsIndel returns true if the variant is an insertion or deletion.
func (v *Variant) IsIndel() bool {
	return len(v.Ref) != len(v.Alt)
}

// String formats the variant as chrom:pos:ref>alt.
func (v *Variant) String() string {
	return fmt.Sprintf("%s:%d:%s>%s", v.Chrom, v.Pos, v.Ref, v.Alt)
}
