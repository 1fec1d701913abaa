// Package maf reads candidate variants from MAF (Mutation Annotation
// Format) files.
package maf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/vcf"
)

// Standard MAF column names
const (
	ColChromosome         = "Chromosome"
	ColStartPosition      = "Start_Position"
	ColEndPosition        = "End_Position"
	ColReferenceAllele    = "Reference_Allele"
	ColTumorSeqAllele2    = "Tumor_Seq_Allele2"
	ColVariantType        = "Variant_Type"
	ColTumorSampleBarcode = "Tumor_Sample_Barcode"
)

// ColumnIndices holds the indices of the MAF columns the parser reads.
// Optional columns are -1 when absent.
type ColumnIndices struct {
	Chromosome         int
	StartPosition      int
	EndPosition        int
	ReferenceAllele    int
	TumorSeqAllele2    int
	VariantType        int
	TumorSampleBarcode int
}

// Parser reads variants from a MAF file. It implements vcf.VariantParser.
type Parser struct {
	rc         io.ReadCloser
	reader     *bufio.Reader
	lineNumber int
	columns    ColumnIndices
	headerLine string
}

var _ vcf.VariantParser = (*Parser)(nil)

// NewParser creates a new MAF parser for the given file.
// Plain and gzipped MAF are both accepted; "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	rc, err := genome.OpenInput(path)
	if err != nil {
		return nil, fmt.Errorf("open maf file: %w", err)
	}

	p := &Parser{rc: rc, reader: bufio.NewReader(rc)}
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// readLine returns the next non-empty, non-comment line, or "" at EOF.
func (p *Parser) readLine() (string, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("read maf line: %w", err)
		}
		if line == "" && err == io.EOF {
			return "", nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
}

// parseHeader reads and parses the MAF header line to find column indices.
func (p *Parser) parseHeader() error {
	line, err := p.readLine()
	if err != nil {
		return err
	}
	if line == "" {
		return &ParseError{
			Line:    p.lineNumber,
			Message: "no header line found",
		}
	}
	p.headerLine = line
	return p.parseColumnIndices(line)
}

// parseColumnIndices parses the header line to find column indices.
func (p *Parser) parseColumnIndices(headerLine string) error {
	p.columns = ColumnIndices{
		Chromosome:         -1,
		StartPosition:      -1,
		EndPosition:        -1,
		ReferenceAllele:    -1,
		TumorSeqAllele2:    -1,
		VariantType:        -1,
		TumorSampleBarcode: -1,
	}

	for i, col := range strings.Split(headerLine, "\t") {
		switch col {
		case ColChromosome:
			p.columns.Chromosome = i
		case ColStartPosition:
			p.columns.StartPosition = i
		case ColEndPosition:
			p.columns.EndPosition = i
		case ColReferenceAllele:
			p.columns.ReferenceAllele = i
		case ColTumorSeqAllele2:
			p.columns.TumorSeqAllele2 = i
		case ColVariantType:
			p.columns.VariantType = i
		case ColTumorSampleBarcode:
			p.columns.TumorSampleBarcode = i
		}
	}

	required := []struct {
		name  string
		index int
	}{
		{ColChromosome, p.columns.Chromosome},
		{ColStartPosition, p.columns.StartPosition},
		{ColReferenceAllele, p.columns.ReferenceAllele},
		{ColTumorSeqAllele2, p.columns.TumorSeqAllele2},
	}
	for _, r := range required {
		if r.index == -1 {
			return &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", r.name),
			}
		}
	}
	return nil
}

// Next reads the next variant from the MAF file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*vcf.Variant, error) {
	line, err := p.readLine()
	if err != nil || line == "" {
		return nil, err
	}
	return p.parseLine(line)
}

// parseLine parses a single MAF data line into a Variant. MAF's "-" allele
// becomes an empty allele; optional columns are copied into Info.
func (p *Parser) parseLine(line string) (*vcf.Variant, error) {
	fields := strings.Split(line, "\t")

	minCols := max(p.columns.Chromosome, p.columns.StartPosition, p.columns.ReferenceAllele, p.columns.TumorSeqAllele2)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	pos, err := strconv.Atoi(fields[p.columns.StartPosition])
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[p.columns.StartPosition]),
		}
	}

	ref := fields[p.columns.ReferenceAllele]
	alt := fields[p.columns.TumorSeqAllele2]
	if alt == "-" {
		alt = ""
	}
	if ref == "-" {
		ref = ""
	}

	v := &vcf.Variant{
		Chrom:  fields[p.columns.Chromosome],
		Pos:    pos,
		ID:     ".",
		Ref:    ref,
		Alt:    alt,
		Filter: ".",
		Info:   make(map[string]any),
	}

	optional := map[string]int{
		ColEndPosition:        p.columns.EndPosition,
		ColVariantType:        p.columns.VariantType,
		ColTumorSampleBarcode: p.columns.TumorSampleBarcode,
	}
	for name, i := range optional {
		if i >= 0 && i < len(fields) && fields[i] != "" {
			v.Info[name] = fields[i]
		}
	}

	return v, nil
}

// Header returns the MAF header line.
func (p *Parser) Header() string {
	return p.headerLine
}

// Columns returns the parsed column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.rc != nil {
		return p.rc.Close()
	}
	return nil
}

// ParseError represents an error during MAF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("maf parse error at line %d: %s", e.Line, e.Message)
}
