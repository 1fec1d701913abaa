// Package duckdb persists segmentation runs, regions and trimming results
// in DuckDB so they can be queried after the fact.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding region results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, or "" for an in-memory database.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR PRIMARY KEY,
			started_at TIMESTAMP,
			profile_path VARCHAR,
			profile_size BIGINT,
			profile_mtime TIMESTAMP,
			threshold DOUBLE,
			min_region_size BIGINT,
			max_region_size BIGINT,
			extension BIGINT,
			variant_padding BIGINT,
			indel_padding BIGINT,
			trimming_disabled BOOLEAN
		)`,
		`CREATE TABLE IF NOT EXISTS regions (
			run_id VARCHAR,
			seq BIGINT,
			contig VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT,
			active BOOLEAN,
			extension BIGINT,
			extended_start BIGINT,
			extended_end BIGINT,
			n_reads BIGINT,
			outcome VARCHAR,
			n_events BIGINT,
			variant_start BIGINT,
			variant_end BIGINT,
			padded_start BIGINT,
			padded_end BIGINT,
			left_start BIGINT,
			left_end BIGINT,
			right_start BIGINT,
			right_end BIGINT,
			PRIMARY KEY (run_id, seq)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
