package activity

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-region/internal/genome"
)

// Reader reads activity states from a profile track.
//
// Two layouts are accepted:
//
//	contig  pos  prob                       (1-based position)
//	contig  start  end  feature  prob       (IGV line track, 0-based start)
//
// Lines starting with "#", "track" or "Chromosome" are skipped.
type Reader struct {
	rc         io.ReadCloser
	scanner    *bufio.Scanner
	lineNumber int
}

// NewReader opens a profile track. Gzip content is detected automatically;
// "-" reads stdin.
func NewReader(path string) (*Reader, error) {
	rc, err := genome.OpenInput(path)
	if err != nil {
		return nil, fmt.Errorf("open activity profile: %w", err)
	}
	return &Reader{rc: rc, scanner: bufio.NewScanner(rc)}, nil
}

// NewReaderFrom reads a profile track from r.
func NewReaderFrom(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next state, or nil, nil at end of input.
func (r *Reader) Next() (*State, error) {
	for r.scanner.Scan() {
		r.lineNumber++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "Chromosome") {
			continue
		}
		return r.parseLine(line)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read activity profile: %w", err)
	}
	return nil, nil
}

func (r *Reader) parseLine(line string) (*State, error) {
	fields := strings.Fields(line)

	var pos int
	var probField string
	switch len(fields) {
	case 3:
		p, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, r.errorf("invalid position: %s", fields[1])
		}
		pos, probField = p, fields[2]
	case 5:
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, r.errorf("invalid start: %s", fields[1])
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, r.errorf("invalid end: %s", fields[2])
		}
		if end-start != 1 {
			return nil, r.errorf("expected a single-base record, got %d-%d", start, end)
		}
		pos, probField = end, fields[4]
	default:
		return nil, r.errorf("expected 3 or 5 columns, found %d", len(fields))
	}

	prob, err := strconv.ParseFloat(probField, 64)
	if err != nil {
		return nil, r.errorf("invalid probability: %s", probField)
	}

	s, err := NewState(genome.Interval{Contig: fields[0], Start: pos, End: pos}, prob)
	if err != nil {
		return nil, &ParseError{Line: r.lineNumber, Message: err.Error(), Err: err}
	}
	return &s, nil
}

func (r *Reader) errorf(format string, args ...any) error {
	return &ParseError{Line: r.lineNumber, Message: fmt.Sprintf(format, args...)}
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the underlying input.
func (r *Reader) Close() error {
	if r.rc != nil {
		return r.rc.Close()
	}
	return nil
}

// ParseError represents an error during profile parsing with line context.
// Err holds the underlying error, if any.
type ParseError struct {
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("activity profile parse error at line %d: %s", e.Line, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }
