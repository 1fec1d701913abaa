package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-region/internal/duckdb"
	"github.com/inodb/vibe-region/internal/genome"
)

func newRunsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect trim runs stored in a DuckDB database",
		Long: `List, show or delete the runs recorded by 'vibe-region trim --db'.

Each run holds the parameters it was made with and one row per region.`,
		Example: `  vibe-region runs list --db regions.duckdb
  vibe-region runs show --db regions.duckdb --region chr1:1000-2000 <run-id>
  vibe-region runs delete --db regions.duckdb <run-id>`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "DuckDB database written by trim --db (required)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recorded runs, most recent first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(dbPath, func(s *duckdb.Store) error {
				return runRunsList(cmd.OutOrStdout(), s)
			})
		},
	})

	var regionFlag string
	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the regions of a run",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var loc *genome.Interval
			if regionFlag != "" {
				l, err := genome.ParseInterval(regionFlag)
				if err != nil {
					return &usageError{err: err}
				}
				loc = &l
			}
			return withStore(dbPath, func(s *duckdb.Store) error {
				return runRunsShow(cmd.OutOrStdout(), s, args[0], loc)
			})
		},
	}
	show.Flags().StringVar(&regionFlag, "region", "", "Only regions overlapping contig:start-end")
	cmd.AddCommand(show)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a run and its regions",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(dbPath, func(s *duckdb.Store) error {
				if err := s.DeleteRun(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func withStore(path string, fn func(*duckdb.Store) error) error {
	if path == "" {
		return usagef("--db is required")
	}
	s, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func runRunsList(w io.Writer, s *duckdb.Store) error {
	runs, err := s.Runs()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "#Run\tStarted\tProfile\tThreshold\tExtension\tPadding\tIndel_padding\tNo_variation\tNo_trimming\tTrimmed")
	for _, r := range runs {
		counts, err := s.OutcomeCounts(r.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Profile.Path,
			r.Config.Threshold, r.Config.Extension,
			r.Config.Trim.VariantPadding, r.Config.Trim.IndelPadding,
			counts["no_variation"], counts["no_trimming"], counts["trimmed"])
	}
	return nil
}

func runRunsShow(w io.Writer, s *duckdb.Store, runID string, loc *genome.Interval) error {
	var records []duckdb.RegionRecord
	var err error
	if loc != nil {
		records, err = s.RegionsOverlapping(runID, *loc)
	} else {
		records, err = s.Regions(runID)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "#Region\tActive\tExtension\tReads\tOutcome\tEvents\tVariant_span\tPadded_span\tLeft_flank\tRight_flank")
	for _, r := range records {
		fmt.Fprintln(w, strings.Join([]string{
			r.Span.String(),
			fmt.Sprint(r.Active),
			fmt.Sprint(r.Extension),
			fmt.Sprint(r.Reads),
			r.Outcome,
			fmt.Sprint(r.Events),
			spanOrDash(r.VariantSpan),
			spanOrDash(r.PaddedSpan),
			spanOrDash(r.LeftFlank),
			spanOrDash(r.RightFlank),
		}, "\t"))
	}
	return nil
}

func spanOrDash(i *genome.Interval) string {
	if i == nil {
		return "-"
	}
	return i.String()
}
