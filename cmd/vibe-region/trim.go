package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-region/internal/activity"
	"github.com/inodb/vibe-region/internal/duckdb"
	"github.com/inodb/vibe-region/internal/engine"
	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/output"
	"github.com/inodb/vibe-region/internal/reads"
	"github.com/inodb/vibe-region/internal/vcf"
)

// dbBatchSize is the number of region records appended to DuckDB at once.
const dbBatchSize = 10000

type trimOptions struct {
	in            inputOptions
	variantsPath  string
	variantsFmt   string
	readsPath     string
	passOnly      bool
	outputFile    string
	regionsOutput string
	dbPath        string
}

func newTrimCmd(logger func() *zap.Logger) *cobra.Command {
	var opts trimOptions

	cmd := &cobra.Command{
		Use:   "trim [flags] <profile>",
		Short: "Segment a profile and trim regions to their variants",
		Long: `Segment a per-position activity profile into assembly regions, attach
reads and variants to each region, and trim every region to the padded span
around its variants.

Each output row reports the outcome (no_variation, no_trimming or trimmed),
the padded variant span, the flanks cut away and the callable region.`,
		Example: `  vibe-region trim --reference ref.fa --variants calls.vcf.gz profile.igv
  vibe-region trim --fai ref.fa.fai --variants data_mutations.txt profile.igv
  vibe-region trim --reads sample.sam --variants calls.vcf --db regions.duckdb profile.igv`,
		Args: exactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.variantsPath == "" {
				return usagef("--variants is required")
			}
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := engineConfig()
			if err != nil {
				return err
			}
			return runTrim(cmd, args[0], cfg, opts, logger())
		},
	}

	opts.in.register(cmd)
	cmd.Flags().StringVar(&opts.variantsPath, "variants", "", "VCF or MAF of candidate variants (required)")
	cmd.Flags().StringVar(&opts.variantsFmt, "variants-format", "", "Variants format: vcf or maf (default: auto-detect)")
	cmd.Flags().StringVar(&opts.readsPath, "reads", "", "SAM file of aligned reads to attach to regions")
	cmd.Flags().BoolVar(&opts.passOnly, "pass-only", false, "Only use variants with FILTER PASS or '.'")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&opts.regionsOutput, "regions-output", "", "Also write the untrimmed regions to this file")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Store regions and trim results in this DuckDB database")
	addRegionFlags(cmd.Flags())
	addReadFlags(cmd.Flags())
	addTrimFlags(cmd.Flags())

	return cmd
}

func runTrim(cmd *cobra.Command, profilePath string, cfg engine.Config, opts trimOptions, logger *zap.Logger) error {
	var readIdx *reads.Index
	var samDict *genome.Dictionary
	if opts.readsPath != "" {
		idx, dict, err := loadReads(opts.readsPath, logger)
		if err != nil {
			return err
		}
		readIdx, samDict = idx, dict
	}

	// With --reference the sequences are loaded so callable regions can
	// report their reference bases.
	var ref *genome.FASTA
	var dict *genome.Dictionary
	if opts.in.reference != "" {
		fa, err := genome.LoadFASTA(opts.in.reference)
		if err != nil {
			return err
		}
		ref, dict = fa, fa.Dictionary
	}
	if opts.in.fai != "" || dict == nil {
		d, err := loadDictionary(opts.in.fai, "", samDict)
		if err != nil {
			return err
		}
		dict = d
	}

	variants, err := loadVariants(opts.variantsPath, opts.variantsFmt, opts.passOnly, logger)
	if err != nil {
		return err
	}

	pipeline, err := engine.NewPipeline(cfg, dict)
	if err != nil {
		return err
	}
	pipeline.SetLogger(logger)
	if readIdx != nil {
		pipeline.SetReads(readIdx)
	}

	out, closeOut, err := openOutput(opts.outputFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()
	tw := output.NewTrimWriter(out)
	if ref != nil {
		tw.SetReference(ref)
	}
	if err := tw.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var rw *output.RegionWriter
	if opts.regionsOutput != "" {
		rout, closeRegions, err := openOutput(opts.regionsOutput, nil)
		if err != nil {
			return err
		}
		defer closeRegions()
		rw = output.NewRegionWriter(rout, output.FormatTab)
		if err := rw.WriteHeader(); err != nil {
			return fmt.Errorf("write regions header: %w", err)
		}
	}

	sink, err := newDBSink(opts.dbPath, profilePath, cfg, logger)
	if err != nil {
		return err
	}
	defer sink.close()

	reader, err := activity.NewReader(profilePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	stats, err := pipeline.Run(cmd.Context(), reader, variants, func(wr engine.WorkResult) error {
		if rw != nil {
			if err := rw.Write(wr.Region); err != nil {
				return err
			}
		}
		if err := tw.Write(wr.Result); err != nil {
			return err
		}
		return sink.add(wr)
	})
	if err != nil {
		return fmt.Errorf("trim %s: %w", profilePath, err)
	}
	if err := sink.flush(); err != nil {
		return err
	}
	if rw != nil {
		if err := rw.Flush(); err != nil {
			return fmt.Errorf("flush regions output: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	fields := []zap.Field{
		zap.Int("regions", stats.Regions),
		zap.Int("active", stats.Active),
		zap.Int("downsampled", stats.Downsampled),
	}
	for outcome, n := range stats.Outcomes {
		fields = append(fields, zap.Int(outcome.String(), n))
	}
	logger.Info("trimmed regions", fields...)
	return nil
}

func loadReads(path string, logger *zap.Logger) (*reads.Index, *genome.Dictionary, error) {
	p, err := reads.NewParser(path)
	if err != nil {
		return nil, nil, err
	}
	defer p.Close()

	var records []*reads.Record
	for {
		rec, err := p.Next()
		if err != nil {
			return nil, nil, err
		}
		if rec == nil {
			break
		}
		records = append(records, rec)
	}
	idx := reads.BuildIndex(records)
	logger.Info("loaded reads",
		zap.String("path", path),
		zap.Int("reads", idx.Len()),
		zap.Int("unmapped", p.Skipped()))
	return idx, p.Dictionary(), nil
}

func loadVariants(path, format string, passOnly bool, logger *zap.Logger) (*engine.VariantIndex, error) {
	p, err := openVariants(path, format)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	all, err := vcf.ReadAll(p, passOnly)
	if err != nil {
		return nil, err
	}
	idx := engine.NewVariantIndex(all)
	logger.Info("loaded variants", zap.String("path", path), zap.Int("variants", idx.Len()))
	return idx, nil
}

// dbSink batches trim results into a DuckDB store. A zero dbSink discards
// everything.
type dbSink struct {
	store   *duckdb.Store
	runID   string
	pending []duckdb.RegionRecord
	seq     int
}

func newDBSink(path, profilePath string, cfg engine.Config, logger *zap.Logger) (*dbSink, error) {
	if path == "" {
		return &dbSink{}, nil
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return nil, err
	}

	fp := duckdb.FileFingerprint{Path: profilePath}
	if profilePath != "-" {
		if fp, err = duckdb.StatFile(profilePath); err != nil {
			store.Close()
			return nil, fmt.Errorf("stat profile: %w", err)
		}
	}
	run, err := store.CreateRun(fp, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("recording run", zap.String("db", path), zap.String("run", run.ID))
	return &dbSink{store: store, runID: run.ID}, nil
}

func (s *dbSink) add(wr engine.WorkResult) error {
	if s.store == nil {
		return nil
	}
	s.pending = append(s.pending, duckdb.NewRegionRecord(s.seq, wr.Result))
	s.seq++
	if len(s.pending) >= dbBatchSize {
		return s.flush()
	}
	return nil
}

func (s *dbSink) flush() error {
	if s.store == nil || len(s.pending) == 0 {
		return nil
	}
	if err := s.store.WriteRegions(s.runID, s.pending); err != nil {
		return fmt.Errorf("write regions to db: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

func (s *dbSink) close() {
	if s.store != nil {
		s.store.Close()
	}
}
