package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-region/internal/genome"
)

func TestTrim_ExtensionCappedByOriginal(t *testing.T) {
	r := newRegion100(t)
	require.Equal(t, iv("chr1", 50, 250), r.ExtendedSpan())

	got, err := r.Trim(iv("chr1", 150, 225), iv("chr1", 150, 275))
	require.NoError(t, err)

	assert.Equal(t, iv("chr1", 150, 200), got.Span())
	assert.Equal(t, 50, got.Extension(), "needed 75 on the right, capped at 50")
	assert.Equal(t, iv("chr1", 100, 250), got.ExtendedSpan())
	assert.True(t, got.IsActive())
}

func TestTrim_ExtensionShrinks(t *testing.T) {
	r := newRegion100(t)

	got, err := r.Trim(iv("chr1", 120, 180), iv("chr1", 110, 185))
	require.NoError(t, err)

	assert.Equal(t, iv("chr1", 120, 180), got.Span())
	assert.Equal(t, 10, got.Extension())
	assert.Equal(t, iv("chr1", 110, 190), got.ExtendedSpan())
}

func TestTrim_DoesNotModifyOriginal(t *testing.T) {
	r := newRegion100(t)
	require.NoError(t, r.Add(read("a", 60, 120)))

	_, err := r.Trim(iv("chr1", 150, 160), iv("chr1", 150, 160))
	require.NoError(t, err)

	assert.Equal(t, iv("chr1", 100, 200), r.Span())
	assert.Equal(t, 1, r.Size())
	assert.Equal(t, iv("chr1", 60, 120), r.Reads()[0].Loc())
}

func TestTrim_ClipsAndDropsReads(t *testing.T) {
	r := newRegion100(t)
	require.NoError(t, r.AddAll([]Read{
		read("left", 50, 90),
		read("spanning", 95, 210),
		read("inside", 150, 155),
		read("right", 230, 260),
	}))

	got, err := r.Trim(iv("chr1", 140, 170), iv("chr1", 130, 180))
	require.NoError(t, err)
	require.Equal(t, iv("chr1", 130, 180), got.ExtendedSpan())

	reads := got.Reads()
	require.Len(t, reads, 2)
	assert.Equal(t, "spanning", reads[0].(*testRead).name)
	assert.Equal(t, iv("chr1", 130, 180), reads[0].Loc(), "clipped to the new extended span")
	assert.Equal(t, "inside", reads[1].(*testRead).name)
	assert.Equal(t, iv("chr1", 150, 155), reads[1].Loc())

	for _, rd := range reads {
		assert.True(t, got.ExtendedSpan().Contains(rd.Loc()))
	}
	assert.Equal(t, got.ExtendedSpan(), got.ReadSpan())
}

func TestTrim_ClippedReadsKeepInsertionOrderOnTies(t *testing.T) {
	r := newRegion100(t)
	require.NoError(t, r.AddAll([]Read{
		read("first", 60, 150),
		read("second", 80, 160),
		read("third", 120, 130),
	}))

	got, err := r.Trim(iv("chr1", 110, 140), iv("chr1", 100, 150))
	require.NoError(t, err)

	var names []string
	for _, rd := range got.Reads() {
		names = append(names, rd.(*testRead).name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
	assert.Equal(t, 100, got.Reads()[0].Loc().Start)
	assert.Equal(t, 100, got.Reads()[1].Loc().Start)
}

func TestTrim_Idempotent(t *testing.T) {
	r := newRegion100(t)
	require.NoError(t, r.AddAll([]Read{read("a", 40, 120), read("b", 100, 300)}))

	got, err := r.Trim(r.Span(), r.ExtendedSpan())
	require.NoError(t, err)

	assert.True(t, got.EqualIgnoreReads(r))
	require.Len(t, got.Reads(), 2)
	assert.Equal(t, iv("chr1", 50, 120), got.Reads()[0].Loc())
	assert.Equal(t, iv("chr1", 100, 250), got.Reads()[1].Loc())

	again, err := got.Trim(got.Span(), got.ExtendedSpan())
	require.NoError(t, err)
	assert.True(t, again.EqualIgnoreReads(got))
	assert.Equal(t, got.Reads()[0].Loc(), again.Reads()[0].Loc())
	assert.Equal(t, got.Reads()[1].Loc(), again.Reads()[1].Loc())
}

func TestTrim_IdempotentWhenClampedBothSides(t *testing.T) {
	r, err := New(iv("chr2", 10, 290), true, 50, testDict(t))
	require.NoError(t, err)
	require.Equal(t, iv("chr2", 1, 300), r.ExtendedSpan())

	got, err := r.Trim(r.Span(), r.ExtendedSpan())
	require.NoError(t, err)
	assert.True(t, got.EqualIgnoreReads(r))
	assert.Equal(t, 50, got.Extension())
}

func TestTrim_Invalid(t *testing.T) {
	r := newRegion100(t)

	_, err := r.Trim(iv("chr1", 150, 160), iv("chr1", 155, 160))
	assert.ErrorIs(t, err, genome.ErrInvalidArgument, "extended span must contain span")

	_, err = r.Trim(iv("chr1", 300, 400), iv("chr1", 300, 400))
	assert.ErrorIs(t, err, genome.ErrInvalidArgument, "outside the primary span")

	_, err = r.Trim(iv("chr2", 150, 160), iv("chr2", 150, 160))
	assert.ErrorIs(t, err, genome.ErrInvalidArgument, "other contig")

	_, err = r.Trim(genome.Interval{}, genome.Interval{})
	assert.ErrorIs(t, err, genome.ErrInvalidArgument, "zero interval")
}

func TestTrim_Properties(t *testing.T) {
	r := newRegion100(t)
	require.NoError(t, r.AddAll([]Read{read("a", 30, 140), read("b", 100, 210), read("c", 190, 400)}))

	for start := 90; start <= 200; start += 7 {
		for end := start; end <= 215; end += 11 {
			for pad := 0; pad <= 80; pad += 20 {
				target := iv("chr1", start, end)
				targetExt := target.Expand(pad, 1000)
				got, err := r.Trim(target, targetExt)
				if end < 100 {
					require.Error(t, err)
					continue
				}
				require.NoError(t, err, "trim %s / %s", target, targetExt)

				assert.LessOrEqual(t, got.Extension(), r.Extension())
				assert.True(t, r.ExtendedSpan().Contains(got.ExtendedSpan()))
				assert.True(t, got.ExtendedSpan().Contains(got.Span()))
				assert.True(t, got.ReadSpan().Contains(got.ExtendedSpan()))
				for _, rd := range got.Reads() {
					assert.True(t, got.ExtendedSpan().Contains(rd.Loc()))
				}
			}
		}
	}
}

func TestTrimToExtension(t *testing.T) {
	r := newRegion100(t)

	got, err := r.TrimToExtension(iv("chr1", 100, 129), r.Extension())
	require.NoError(t, err)
	assert.Equal(t, iv("chr1", 100, 129), got.Span())
	assert.Equal(t, 50, got.Extension())
	assert.Equal(t, iv("chr1", 50, 179), got.ExtendedSpan())

	_, err = r.TrimToExtension(iv("chr1", 100, 129), -1)
	assert.ErrorIs(t, err, genome.ErrInvalidArgument)
}
