package duckdb

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/inodb/vibe-region/internal/engine"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Run describes one segmentation run.
type Run struct {
	ID        string
	StartedAt time.Time
	Profile   FileFingerprint
	Config    engine.Config
}

// CreateRun records a new run and returns it with a fresh ID.
func (s *Store) CreateRun(profile FileFingerprint, cfg engine.Config) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC().Truncate(time.Microsecond),
		Profile:   profile,
		Config:    cfg,
	}
	_, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt,
		profile.Path, profile.Size, profile.ModTime.UTC(),
		cfg.Threshold, cfg.MinRegionSize, cfg.MaxRegionSize, cfg.Extension,
		cfg.Trim.VariantPadding, cfg.Trim.IndelPadding, cfg.Trim.DisableTrimming,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Runs lists recorded runs, most recent first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT
		run_id, started_at, profile_path, profile_size, profile_mtime,
		threshold, min_region_size, max_region_size, extension,
		variant_padding, indel_padding, trimming_disabled
		FROM runs ORDER BY started_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var minSize, maxSize, ext, pad, indelPad int64
		if err := rows.Scan(
			&r.ID, &r.StartedAt, &r.Profile.Path, &r.Profile.Size, &r.Profile.ModTime,
			&r.Config.Threshold, &minSize, &maxSize, &ext,
			&pad, &indelPad, &r.Config.Trim.DisableTrimming,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Config.MinRegionSize = int(minSize)
		r.Config.MaxRegionSize = int(maxSize)
		r.Config.Extension = int(ext)
		r.Config.Trim.VariantPadding = int(pad)
		r.Config.Trim.IndelPadding = int(indelPad)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run and its regions.
func (s *Store) DeleteRun(runID string) error {
	if _, err := s.db.Exec("DELETE FROM regions WHERE run_id=?", runID); err != nil {
		return fmt.Errorf("delete regions: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs WHERE run_id=?", runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
