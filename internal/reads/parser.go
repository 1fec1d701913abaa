package reads

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-region/internal/genome"
)

// Parser reads aligned records from a SAM text file.
type Parser struct {
	rc         io.ReadCloser
	reader     *bufio.Reader
	lineNumber int
	dict       *genome.Dictionary
	pending    string // first record line, read while scanning the header
	skipped    int
}

// NewParser opens a SAM file. Gzip content is detected automatically;
// "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	rc, err := genome.OpenInput(path)
	if err != nil {
		return nil, fmt.Errorf("open sam file: %w", err)
	}
	p, err := newParser(rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	p.rc = rc
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	return newParser(r)
}

func newParser(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
		dict:   genome.NewDictionary(),
	}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// parseHeader consumes @ lines and records @SQ entries.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read header: %w", err)
		}
		if line == "" && err == io.EOF {
			return nil
		}
		p.lineNumber++
		line = strings.TrimRight(line, "\r\n")

		if !strings.HasPrefix(line, "@") {
			p.pending = line
			return nil
		}
		if strings.HasPrefix(line, "@SQ") {
			if err := p.parseSQ(line); err != nil {
				return err
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

func (p *Parser) parseSQ(line string) error {
	var name string
	length := -1
	for _, field := range strings.Split(line, "\t")[1:] {
		switch {
		case strings.HasPrefix(field, "SN:"):
			name = field[3:]
		case strings.HasPrefix(field, "LN:"):
			l, err := strconv.Atoi(field[3:])
			if err != nil {
				return &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid @SQ length: %s", field)}
			}
			length = l
		}
	}
	if err := p.dict.Add(name, length); err != nil {
		return &ParseError{Line: p.lineNumber, Message: err.Error()}
	}
	return nil
}

// Dictionary returns the contigs declared by @SQ header lines.
func (p *Parser) Dictionary() *genome.Dictionary {
	return p.dict
}

// Next returns the next mapped record, or nil, nil at end of input.
// Unmapped records are skipped.
func (p *Parser) Next() (*Record, error) {
	for {
		var line string
		if p.pending != "" {
			line, p.pending = p.pending, ""
		} else {
			l, err := p.reader.ReadString('\n')
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("read sam line: %w", err)
			}
			if l == "" && err == io.EOF {
				return nil, nil
			}
			p.lineNumber++
			line = strings.TrimRight(l, "\r\n")
		}
		if line == "" {
			continue
		}

		rec, err := p.parseLine(line)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			p.skipped++
			continue
		}
		return rec, nil
	}
}

// parseLine parses a SAM alignment line. It returns nil for unmapped reads.
func (p *Parser) parseLine(line string) (*Record, error) {
	fields := strings.SplitN(line, "\t", 7)
	if len(fields) < 6 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 6 columns, found %d", len(fields)),
		}
	}

	flag, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid flag: %s", fields[1])}
	}
	if flag&0x4 != 0 || fields[2] == "*" || fields[5] == "*" {
		return nil, nil
	}

	pos, err := strconv.Atoi(fields[3])
	if err != nil || pos < 1 {
		return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid position: %s", fields[3])}
	}
	mapq, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid mapping quality: %s", fields[4])}
	}
	refLen, err := ReferenceLength(fields[5])
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: err.Error()}
	}

	return &Record{
		Name:  fields[0],
		Flag:  flag,
		Chrom: fields[2],
		Start: pos,
		End:   pos + refLen - 1,
		MapQ:  mapq,
		Cigar: fields[5],
	}, nil
}

// Skipped returns the number of unmapped records skipped so far.
func (p *Parser) Skipped() int {
	return p.skipped
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the underlying input.
func (p *Parser) Close() error {
	if p.rc != nil {
		return p.rc.Close()
	}
	return nil
}

// ParseError represents an error during SAM parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sam parse error at line %d: %s", e.Line, e.Message)
}
