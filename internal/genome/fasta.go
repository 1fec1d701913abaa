package genome

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Reference returns reference bases for a 1-based closed range.
type Reference interface {
	Subsequence(contig string, start, end int) ([]byte, error)
}

// FASTA is an in-memory reference genome. It is both a Reference and the
// Dictionary of its contigs.
type FASTA struct {
	*Dictionary
	sequences map[string][]byte // contig -> upper-cased bases
}

// LoadFASTA reads a (optionally gzipped) FASTA file into memory.
func LoadFASTA(path string) (*FASTA, error) {
	r, err := OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f, err := ParseFASTA(r)
	if err != nil {
		return nil, fmt.Errorf("load FASTA %s: %w", path, err)
	}
	return f, nil
}

// ParseFASTA parses FASTA content. The contig name is the first
// whitespace-delimited word of each header.
func ParseFASTA(r io.Reader) (*FASTA, error) {
	f := &FASTA{
		Dictionary: NewDictionary(),
		sequences:  make(map[string][]byte),
	}

	scanner := bufio.NewScanner(r)
	// Unwrapped chromosome-scale lines exceed the default buffer.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 256*1024*1024)

	var currentID string
	var currentSeq bytes.Buffer

	flush := func() error {
		if currentID == "" {
			return nil
		}
		if currentSeq.Len() == 0 {
			return fmt.Errorf("contig %s has no sequence", currentID)
		}
		seq := bytes.ToUpper(currentSeq.Bytes())
		if err := f.Add(currentID, len(seq)); err != nil {
			return err
		}
		f.sequences[currentID] = seq
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return nil, err
			}
			currentID = parseContigName(line)
			if currentID == "" {
				return nil, fmt.Errorf("empty FASTA header %q", line)
			}
			currentSeq = bytes.Buffer{}
			continue
		}
		currentSeq.WriteString(strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return f, nil
}

// parseContigName extracts the contig name from a header such as
// ">chr1 AC:CM000663.2 gi:568336023 LN:248956422".
func parseContigName(header string) string {
	header = strings.TrimPrefix(header, ">")
	if fields := strings.Fields(header); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Subsequence returns a copy of the bases in [start, end] on contig.
func (f *FASTA) Subsequence(contig string, start, end int) ([]byte, error) {
	seq, ok := f.sequences[contig]
	if !ok {
		return nil, fmt.Errorf("%w: unknown contig %s", ErrInvalidArgument, contig)
	}
	if start < 1 || end > len(seq) || end < start {
		return nil, fmt.Errorf("%w: %s:%d-%d outside contig of length %d", ErrInvalidArgument, contig, start, end, len(seq))
	}
	out := make([]byte, end-start+1)
	copy(out, seq[start-1:end])
	return out, nil
}
