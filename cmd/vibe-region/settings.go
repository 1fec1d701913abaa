package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-region/internal/engine"
	"github.com/inodb/vibe-region/internal/genome"
)

// Config keys
const (
	keyThreshold      = "regions.threshold"
	keyMinSize        = "regions.min-size"
	keyMaxSize        = "regions.max-size"
	keyExtension      = "regions.extension"
	keyForceActive    = "regions.force-active"
	keyMaxReadsStart  = "regions.max-reads-per-start"
	keyPadding        = "trim.padding"
	keyIndelPadding   = "trim.indel-padding"
	keyDisableTrim    = "trim.disable"
	keyCapToExtension = "trim.cap-to-extension"
	keyWorkers        = "workers"
)

func setDefaults() {
	d := engine.DefaultConfig()
	viper.SetDefault(keyThreshold, d.Threshold)
	viper.SetDefault(keyMinSize, d.MinRegionSize)
	viper.SetDefault(keyMaxSize, d.MaxRegionSize)
	viper.SetDefault(keyExtension, d.Extension)
	viper.SetDefault(keyForceActive, false)
	viper.SetDefault(keyMaxReadsStart, d.MaxReadsPerAlignmentStart)
	viper.SetDefault(keyPadding, d.Trim.VariantPadding)
	viper.SetDefault(keyIndelPadding, d.Trim.IndelPadding)
	viper.SetDefault(keyDisableTrim, false)
	viper.SetDefault(keyCapToExtension, false)
	viper.SetDefault(keyWorkers, 0)
}

// addRegionFlags registers the segmentation flags on fs.
func addRegionFlags(fs *pflag.FlagSet) {
	d := engine.DefaultConfig()
	fs.Float64("threshold", d.Threshold, "Activity probability above which a position is active")
	fs.Int("min-region-size", d.MinRegionSize, "Minimum size of an active region before it may be cut")
	fs.Int("max-region-size", d.MaxRegionSize, "Maximum size of an assembly region")
	fs.Int("extension", d.Extension, "Bases added on each side of a region for read attachment")
	fs.Bool("force-active", false, "Mark every region active")
}

// addReadFlags registers the read attachment flags on fs.
func addReadFlags(fs *pflag.FlagSet) {
	fs.Int("max-reads-per-start", engine.DefaultConfig().MaxReadsPerAlignmentStart,
		"Maximum reads per alignment start attached to a region (0 = no limit)")
}

// addTrimFlags registers the trimming flags on fs.
func addTrimFlags(fs *pflag.FlagSet) {
	d := engine.DefaultConfig().Trim
	fs.Int("padding", d.VariantPadding, "Padding around a span of single-base substitutions")
	fs.Int("indel-padding", d.IndelPadding, "Padding when any variant is an indel")
	fs.Bool("disable-trimming", false, "Keep regions with variation untrimmed")
	fs.Bool("cap-to-extension", false, "Limit the padded variant span to the region's extended span")
	fs.Int("workers", 0, "Number of trim workers (0 = all CPUs)")
}

var flagKeys = map[string]string{
	"threshold":           keyThreshold,
	"min-region-size":     keyMinSize,
	"max-region-size":     keyMaxSize,
	"extension":           keyExtension,
	"force-active":        keyForceActive,
	"max-reads-per-start": keyMaxReadsStart,
	"padding":             keyPadding,
	"indel-padding":       keyIndelPadding,
	"disable-trimming":    keyDisableTrim,
	"cap-to-extension":    keyCapToExtension,
	"workers":             keyWorkers,
}

// bindFlags binds the flags cmd defines to their config keys. It runs when
// the command executes so subcommands sharing a key do not override each
// other.
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// engineConfig builds the engine configuration from config keys.
func engineConfig() (engine.Config, error) {
	cfg := engine.Config{
		Threshold:     viper.GetFloat64(keyThreshold),
		MinRegionSize: viper.GetInt(keyMinSize),
		MaxRegionSize: viper.GetInt(keyMaxSize),
		Extension:     viper.GetInt(keyExtension),
		ForceActive:   viper.GetBool(keyForceActive),
		Workers:       viper.GetInt(keyWorkers),

		MaxReadsPerAlignmentStart: viper.GetInt(keyMaxReadsStart),
	}
	cfg.Trim.VariantPadding = viper.GetInt(keyPadding)
	cfg.Trim.IndelPadding = viper.GetInt(keyIndelPadding)
	cfg.Trim.DisableTrimming = viper.GetBool(keyDisableTrim)
	cfg.Trim.CapToExtension = viper.GetBool(keyCapToExtension)

	if err := cfg.Validate(); err != nil {
		return cfg, &usageError{err: err}
	}
	return cfg, nil
}

// loadDictionary returns contig lengths from an index file, a reference,
// or fallback (typically SAM @SQ lines), in that order.
func loadDictionary(fai, reference string, fallback *genome.Dictionary) (*genome.Dictionary, error) {
	switch {
	case fai != "":
		return genome.LoadFAI(fai)
	case reference != "":
		if _, err := os.Stat(reference + ".fai"); err == nil {
			return genome.LoadFAI(reference + ".fai")
		}
		fa, err := genome.LoadFASTA(reference)
		if err != nil {
			return nil, err
		}
		return fa.Dictionary, nil
	case fallback != nil && fallback.Len() > 0:
		return fallback, nil
	}
	return nil, usagef("a sequence dictionary is required: use --fai, --reference or --reads with @SQ header lines")
}
