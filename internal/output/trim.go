package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/trim"
)

// TrimWriter writes trimming results in tab-delimited format.
type TrimWriter struct {
	w       *bufio.Writer
	columns []string
	ref     genome.Reference
}

// NewTrimWriter creates a new trimming result writer.
func NewTrimWriter(w io.Writer) *TrimWriter {
	return &TrimWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Region",
			"Active",
			"Outcome",
			"Events",
			"Variant_span",
			"Padded_span",
			"Left_flank",
			"Right_flank",
			"Callable_region",
			"Callable_extension",
			"Callable_reads",
		},
	}
}

// SetReference adds a Callable_reference column holding the reference
// bases under the callable region's extended span. It must be called
// before WriteHeader.
func (tw *TrimWriter) SetReference(ref genome.Reference) {
	tw.ref = ref
	tw.columns = append(tw.columns, "Callable_reference")
}

// WriteHeader writes the header line.
func (tw *TrimWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single trimming result. The callable region is derived
// from res, so errors from trimming surface here.
func (tw *TrimWriter) Write(res trim.Result) error {
	orig := res.Original()

	callable, callableExt, callableReads, callableRef := "-", "-", "-", "-"
	if res.VariationPresent() {
		c, err := res.CallableRegion()
		if err != nil {
			return err
		}
		callable = c.Span().String()
		callableExt = strconv.Itoa(c.Extension())
		callableReads = strconv.Itoa(c.Size())
		if tw.ref != nil {
			bases, err := c.ReferenceBases(tw.ref, 0)
			if err != nil {
				return err
			}
			callableRef = string(bases)
		}
	}

	values := []string{
		orig.Span().String(),
		strconv.FormatBool(orig.IsActive()),
		res.Outcome().String(),
		strconv.Itoa(len(res.CallableEvents())),
		optional(res.VariantSpan()),
		optional(res.ExtendedSpan()),
		optional(res.LeftFlank()),
		optional(res.RightFlank()),
		callable,
		callableExt,
		callableReads,
	}
	if tw.ref != nil {
		values = append(values, callableRef)
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TrimWriter) Flush() error {
	return tw.w.Flush()
}

func optional(i genome.Interval, ok bool) string {
	if !ok {
		return "-"
	}
	return i.String()
}
