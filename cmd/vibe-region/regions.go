package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-region/internal/activity"
	"github.com/inodb/vibe-region/internal/engine"
	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/output"
	"github.com/inodb/vibe-region/internal/region"
)

type inputOptions struct {
	fai       string
	reference string
}

func (o *inputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.fai, "fai", "", "FASTA index (.fai) giving contig lengths")
	cmd.Flags().StringVar(&o.reference, "reference", "", "Reference FASTA (its .fai is used when present)")
}

func newRegionsCmd(logger func() *zap.Logger) *cobra.Command {
	var (
		in         inputOptions
		outputFile string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "regions [flags] <profile>",
		Short: "Segment an activity profile into assembly regions",
		Long: `Segment a per-position activity profile into active and inactive
assembly regions.

The profile is a 3-column track (contig, 1-based position, probability) or an
IGV line track (Chromosome, Start, End, Feature, Value). Use '-' for stdin.`,
		Example: `  vibe-region regions --fai ref.fa.fai profile.igv
  vibe-region regions --reference ref.fa -f bed -o regions.bed profile.igv.gz`,
		Args: exactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return &usageError{err: err}
			}
			cfg, err := engineConfig()
			if err != nil {
				return err
			}
			dict, err := loadDictionary(in.fai, in.reference, nil)
			if err != nil {
				return err
			}
			out, closeOut, err := openOutput(outputFile, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeOut()

			return runRegions(cmd.Context(), args[0], cfg, dict, output.NewRegionWriter(out, f), logger())
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "tab", "Output format: tab, bed")
	addRegionFlags(cmd.Flags())

	return cmd
}

func runRegions(ctx context.Context, profilePath string, cfg engine.Config, dict genome.ContigLengths, w *output.RegionWriter, logger *zap.Logger) error {
	reader, err := activity.NewReader(profilePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	seg, err := engine.NewSegmenter(cfg, dict)
	if err != nil {
		return err
	}
	seg.SetLogger(logger)

	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	n, active := 0, 0
	err = seg.Run(ctx, reader, func(r *region.Region) error {
		n++
		if r.IsActive() {
			active++
		}
		return w.Write(r)
	})
	if err != nil {
		return fmt.Errorf("segment %s: %w", profilePath, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	logger.Info("segmented profile",
		zap.String("profile", profilePath),
		zap.Int("regions", n),
		zap.Int("active", active))
	return nil
}

// openOutput opens path for writing, or returns def when path is empty.
func openOutput(path string, def io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return def, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
