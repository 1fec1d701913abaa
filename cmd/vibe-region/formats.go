package main

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/maf"
	"github.com/inodb/vibe-region/internal/vcf"
)

const (
	formatVCF = "vcf"
	formatMAF = "maf"
)

// detectVariantFormat detects the variants file format based on extension
// or content.
func detectVariantFormat(path string) string {
	lowerPath := strings.TrimSuffix(strings.ToLower(path), ".gz")

	if strings.HasSuffix(lowerPath, ".vcf") {
		return formatVCF
	}
	if strings.HasSuffix(lowerPath, ".maf") {
		return formatMAF
	}

	// cBioPortal MAF filenames
	baseName := filepath.Base(lowerPath)
	if baseName == "data_mutations.txt" || baseName == "data_mutations_extended.txt" {
		return formatMAF
	}

	if path == "-" {
		return formatVCF
	}

	rc, err := genome.OpenInput(path)
	if err != nil {
		return formatVCF
	}
	defer rc.Close()

	buf := make([]byte, 4096)
	n, _ := io.ReadFull(rc, buf)
	content := string(buf[:n])

	if strings.HasPrefix(content, "##fileformat=VCF") || strings.HasPrefix(content, "#CHROM") {
		return formatVCF
	}
	if strings.Contains(content, "Chromosome") && strings.Contains(content, "Tumor_Seq_Allele2") {
		return formatMAF
	}
	return formatVCF
}

// openVariants opens a VCF or MAF parser. An empty format is detected.
func openVariants(path, format string) (vcf.VariantParser, error) {
	if format == "" {
		format = detectVariantFormat(path)
	}
	switch strings.ToLower(format) {
	case formatVCF:
		return vcf.NewParser(path)
	case formatMAF:
		return maf.NewParser(path)
	default:
		return nil, usagef("unknown variants format %q (use vcf or maf)", format)
	}
}
