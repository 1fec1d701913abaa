package genome

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ContigLengths looks up the length of a contig. Implementations must be
// read-only and safe for concurrent use.
type ContigLengths interface {
	ContigLength(contig string) (int, bool)
}

// Dictionary is an ordered set of contigs with their lengths, as found in a
// FASTA index or a SAM header.
type Dictionary struct {
	lengths map[string]int
	order   []string
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{lengths: make(map[string]int)}
}

// Add registers a contig. Re-adding a contig with the same length is a no-op.
func (d *Dictionary) Add(contig string, length int) error {
	if contig == "" || length < 1 {
		return fmt.Errorf("%w: contig %q with length %d", ErrInvalidArgument, contig, length)
	}
	if old, ok := d.lengths[contig]; ok {
		if old != length {
			return fmt.Errorf("%w: contig %s redefined with length %d (was %d)", ErrInvalidArgument, contig, length, old)
		}
		return nil
	}
	d.lengths[contig] = length
	d.order = append(d.order, contig)
	return nil
}

// ContigLength returns the length of contig.
func (d *Dictionary) ContigLength(contig string) (int, bool) {
	l, ok := d.lengths[contig]
	return l, ok
}

// Contigs returns the contig names in insertion order.
func (d *Dictionary) Contigs() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len returns the number of contigs.
func (d *Dictionary) Len() int {
	return len(d.order)
}

// LoadFAI reads a samtools FASTA index (.fai). Only the first two columns,
// name and length, are used.
func LoadFAI(path string) (*Dictionary, error) {
	r, err := OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	d, err := ReadFAI(r)
	if err != nil {
		return nil, fmt.Errorf("read fai %s: %w", path, err)
	}
	return d, nil
}

// ReadFAI parses FASTA index content.
func ReadFAI(r io.Reader) (*Dictionary, error) {
	d := NewDictionary()
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected at least 2 columns, found %d", lineNumber, len(fields))
		}
		length, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid length %q", lineNumber, fields[1])
		}
		if err := d.Add(fields[0], length); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan fai: %w", err)
	}
	return d, nil
}
