// Package output provides region and trimming result formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-region/internal/region"
)

// Format selects the region output layout.
type Format string

const (
	FormatTab Format = "tab"
	FormatBED Format = "bed"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTab, FormatBED:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want tab or bed)", s)
}

// RegionWriter writes regions as tab-delimited rows or BED intervals.
type RegionWriter struct {
	w       *bufio.Writer
	format  Format
	columns []string
}

// NewRegionWriter creates a region writer.
func NewRegionWriter(w io.Writer, format Format) *RegionWriter {
	return &RegionWriter{
		w:      bufio.NewWriter(w),
		format: format,
		columns: []string{
			"#Contig",
			"Start",
			"End",
			"Active",
			"Extension",
			"Extended_start",
			"Extended_end",
			"Reads",
		},
	}
}

// WriteHeader writes the header line. BED output gets a track line.
func (rw *RegionWriter) WriteHeader() error {
	var err error
	if rw.format == FormatBED {
		_, err = rw.w.WriteString("track name=assembly_regions description=\"assembly regions\" itemRgb=On\n")
	} else {
		_, err = rw.w.WriteString(strings.Join(rw.columns, "\t") + "\n")
	}
	return err
}

// Write writes a single region.
func (rw *RegionWriter) Write(r *region.Region) error {
	var values []string
	if rw.format == FormatBED {
		name, rgb := "inactive", "128,128,128"
		if r.IsActive() {
			name, rgb = "active", "255,0,0"
		}
		start := strconv.Itoa(r.Start() - 1)
		end := strconv.Itoa(r.End())
		values = []string{r.Contig(), start, end, name, "0", ".", start, end, rgb}
	} else {
		ext := r.ExtendedSpan()
		values = []string{
			r.Contig(),
			strconv.Itoa(r.Start()),
			strconv.Itoa(r.End()),
			strconv.FormatBool(r.IsActive()),
			strconv.Itoa(r.Extension()),
			strconv.Itoa(ext.Start),
			strconv.Itoa(ext.End),
			strconv.Itoa(r.Size()),
		}
	}
	_, err := rw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (rw *RegionWriter) Flush() error {
	return rw.w.Flush()
}
