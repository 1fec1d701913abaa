package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/trim"
)

// RegionRecord is one row of the regions table: a region and the outcome
// of trimming it. Absent spans are nil.
type RegionRecord struct {
	Seq          int
	Span         genome.Interval
	Active       bool
	Extension    int
	ExtendedSpan genome.Interval
	Reads        int
	Outcome      string
	Events       int
	VariantSpan  *genome.Interval
	PaddedSpan   *genome.Interval
	LeftFlank    *genome.Interval
	RightFlank   *genome.Interval
}

// NewRegionRecord flattens a trimming result.
func NewRegionRecord(seq int, res trim.Result) RegionRecord {
	r := res.Original()
	return RegionRecord{
		Seq:          seq,
		Span:         r.Span(),
		Active:       r.IsActive(),
		Extension:    r.Extension(),
		ExtendedSpan: r.ExtendedSpan(),
		Reads:        r.Size(),
		Outcome:      res.Outcome().String(),
		Events:       len(res.CallableEvents()),
		VariantSpan:  optional(res.VariantSpan()),
		PaddedSpan:   optional(res.ExtendedSpan()),
		LeftFlank:    optional(res.LeftFlank()),
		RightFlank:   optional(res.RightFlank()),
	}
}

func optional(i genome.Interval, ok bool) *genome.Interval {
	if !ok {
		return nil
	}
	return &i
}

// bounds returns the start and end of i as appender values, nil for NULL.
func bounds(i *genome.Interval) (any, any) {
	if i == nil {
		return nil, nil
	}
	return int64(i.Start), int64(i.End)
}

// WriteRegions batch-inserts region records for a run using the Appender API.
func (s *Store) WriteRegions(runID string, records []RegionRecord) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "regions")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		vs, ve := bounds(r.VariantSpan)
		ps, pe := bounds(r.PaddedSpan)
		ls, le := bounds(r.LeftFlank)
		rs, re := bounds(r.RightFlank)
		if err := appender.AppendRow(
			runID, int64(r.Seq), r.Span.Contig, int64(r.Span.Start), int64(r.Span.End),
			r.Active, int64(r.Extension), int64(r.ExtendedSpan.Start), int64(r.ExtendedSpan.End),
			int64(r.Reads), r.Outcome, int64(r.Events),
			vs, ve, ps, pe, ls, le, rs, re,
		); err != nil {
			return fmt.Errorf("append region %s: %w", r.Span, err)
		}
	}

	return appender.Flush()
}

const regionColumns = `seq, contig, start_pos, end_pos, active, extension,
	extended_start, extended_end, n_reads, outcome, n_events,
	variant_start, variant_end, padded_start, padded_end,
	left_start, left_end, right_start, right_end`

// Regions returns every region of a run in emission order.
func (s *Store) Regions(runID string) ([]RegionRecord, error) {
	rows, err := s.db.Query(`SELECT `+regionColumns+`
		FROM regions WHERE run_id=? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	defer rows.Close()

	return scanRegions(rows)
}

// RegionsOverlapping returns the regions of a run whose primary span
// overlaps loc.
func (s *Store) RegionsOverlapping(runID string, loc genome.Interval) ([]RegionRecord, error) {
	rows, err := s.db.Query(`SELECT `+regionColumns+`
		FROM regions
		WHERE run_id=? AND contig=? AND start_pos<=? AND end_pos>=?
		ORDER BY seq`, runID, loc.Contig, int64(loc.End), int64(loc.Start))
	if err != nil {
		return nil, fmt.Errorf("query overlapping regions: %w", err)
	}
	defer rows.Close()

	return scanRegions(rows)
}

// OutcomeCounts returns the number of regions per trimming outcome.
func (s *Store) OutcomeCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT outcome, count(*) FROM regions
		WHERE run_id=? GROUP BY outcome`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		counts[outcome] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return counts, nil
}

// scanRegions scans rows into RegionRecord slices.
func scanRegions(rows *sql.Rows) ([]RegionRecord, error) {
	var records []RegionRecord
	for rows.Next() {
		var r RegionRecord
		var seq, start, end, ext, extStart, extEnd, nReads, nEvents int64
		var spans [8]sql.NullInt64

		if err := rows.Scan(
			&seq, &r.Span.Contig, &start, &end, &r.Active, &ext,
			&extStart, &extEnd, &nReads, &r.Outcome, &nEvents,
			&spans[0], &spans[1], &spans[2], &spans[3],
			&spans[4], &spans[5], &spans[6], &spans[7],
		); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}

		r.Seq = int(seq)
		r.Span.Start, r.Span.End = int(start), int(end)
		r.Extension = int(ext)
		r.ExtendedSpan = genome.Interval{Contig: r.Span.Contig, Start: int(extStart), End: int(extEnd)}
		r.Reads = int(nReads)
		r.Events = int(nEvents)
		r.VariantSpan = nullSpan(r.Span.Contig, spans[0], spans[1])
		r.PaddedSpan = nullSpan(r.Span.Contig, spans[2], spans[3])
		r.LeftFlank = nullSpan(r.Span.Contig, spans[4], spans[5])
		r.RightFlank = nullSpan(r.Span.Contig, spans[6], spans[7])
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regions: %w", err)
	}
	return records, nil
}

func nullSpan(contig string, start, end sql.NullInt64) *genome.Interval {
	if !start.Valid || !end.Valid {
		return nil
	}
	return &genome.Interval{Contig: contig, Start: int(start.Int64), End: int(end.Int64)}
}
