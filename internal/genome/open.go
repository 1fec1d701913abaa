package genome

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// OpenInput opens path for reading, transparently decompressing gzip
// content. A path of "-" reads from stdin.
func OpenInput(path string) (io.ReadCloser, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
	}

	r, err := MaybeGunzip(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &inputCloser{Reader: r, closers: []io.Closer{r, f}}, nil
}

// MaybeGunzip returns a reader over r that decompresses gzip content when r
// starts with the gzip magic bytes (0x1f, 0x8b), and passes it through
// unchanged otherwise.
func MaybeGunzip(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return gz, nil
	}
	return io.NopCloser(br), nil
}

type inputCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *inputCloser) Close() error {
	var first error
	for _, cl := range c.closers {
		if cl == os.Stdin {
			continue
		}
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
