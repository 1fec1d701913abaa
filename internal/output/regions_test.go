package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/region"
)

func testRegion(t *testing.T, start, end int, active bool) *region.Region {
	t.Helper()
	d := genome.NewDictionary()
	require.NoError(t, d.Add("chr1", 1000))
	r, err := region.New(genome.Interval{Contig: "chr1", Start: start, End: end}, active, 50, d)
	require.NoError(t, err)
	return r
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("BED")
	require.NoError(t, err)
	assert.Equal(t, FormatBED, f)

	f, err = ParseFormat("tab")
	require.NoError(t, err)
	assert.Equal(t, FormatTab, f)

	_, err = ParseFormat("maf")
	assert.Error(t, err)
}

func TestRegionWriter_Tab(t *testing.T) {
	var buf bytes.Buffer
	w := NewRegionWriter(&buf, FormatTab)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(testRegion(t, 100, 200, true)))
	require.NoError(t, w.Write(testRegion(t, 20, 60, false)))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#Contig\tStart\tEnd"))
	assert.Equal(t, "chr1\t100\t200\ttrue\t50\t50\t250\t0", lines[1])
	assert.Equal(t, "chr1\t20\t60\tfalse\t50\t1\t110\t0", lines[2])
}

func TestRegionWriter_BED(t *testing.T) {
	var buf bytes.Buffer
	w := NewRegionWriter(&buf, FormatBED)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(testRegion(t, 100, 200, true)))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "track "))
	fields := strings.Split(lines[1], "\t")
	require.Len(t, fields, 9)
	assert.Equal(t, []string{"chr1", "99", "200", "active"}, fields[:4], "BED start is 0-based")
}
