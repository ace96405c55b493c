package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/plasticc-sim/plasticc-sim/sim"
	"github.com/plasticc-sim/plasticc-sim/sim/cosmology"
	"github.com/plasticc-sim/plasticc-sim/sim/dataset"
	"github.com/plasticc-sim/plasticc-sim/sim/resample"
	"github.com/plasticc-sim/plasticc-sim/sim/trace"
)

const traceVersion = 1

var (
	perObject       int     // Augmented copies per reference object
	outDir          string  // Directory the augmented CSV files are written to
	outputName      string  // Name of the augmented dataset
	traceHeaderPath string  // Trace header YAML output
	traceDataPath   string  // Trace attempts CSV output
	printSummary    bool    // Print the attempt summary to stdout
	traceLevel      string  // Attempt trace level (none, attempts)
	hubbleConstant  float64 // H0 of the flat ΛCDM cosmology
	matterDensity   float64 // Om0 of the flat ΛCDM cosmology
)

// augmentOptions configures one augmentation run.
type augmentOptions struct {
	runOptions
	PerObject   int
	OutDir      string
	OutputName  string
	TraceHeader string
	TraceData   string
	Summary     bool
	TraceLevel  string
	H0          float64 // Hubble constant in km/s/Mpc
	Om0         float64 // matter density at z=0
}

// augmentReport is what a run produced.
type augmentReport struct {
	RunID   string
	Dataset *dataset.Dataset
	Trace   *trace.AugmentationTrace
}

var augmentCmd = &cobra.Command{
	Use:   "augment",
	Short: "Augment a reference dataset",
	Run: func(cmd *cobra.Command, args []string) {
		opts := augmentOptions{
			runOptions:  sharedOptions(),
			PerObject:   perObject,
			OutDir:      outDir,
			OutputName:  outputName,
			TraceHeader: traceHeaderPath,
			TraceData:   traceDataPath,
			Summary:     printSummary,
			TraceLevel:  traceLevel,
			H0:          hubbleConstant,
			Om0:         matterDensity,
		}
		startTime := time.Now()
		report, err := runAugment(cmd.Context(), opts)
		if err != nil {
			logrus.Fatalf("Augmentation failed: %v", err)
		}
		if opts.Summary {
			writeSummary(cmd.OutOrStdout(), report)
		}
		logrus.Infof("Run %s complete in %s.", report.RunID, time.Since(startTime).Round(time.Millisecond))
	},
}

func runAugment(ctx context.Context, opts augmentOptions) (*augmentReport, error) {
	if opts.PerObject < 1 {
		return nil, fmt.Errorf("--per-object must be >= 1, got %d", opts.PerObject)
	}
	if opts.OutputName == "" {
		opts.OutputName = opts.Reference + "_augmented"
	}
	if opts.OutDir == "" && opts.DBPath == "" {
		return nil, fmt.Errorf("nowhere to write: set --out-dir or --db")
	}
	if !trace.IsValidTraceLevel(opts.TraceLevel) {
		return nil, fmt.Errorf("unknown trace level %q (want none or attempts)", opts.TraceLevel)
	}
	tracing := trace.TraceLevel(opts.TraceLevel) == trace.TraceLevelAttempts
	if !tracing && (opts.TraceHeader != "" || opts.TraceData != "") {
		return nil, fmt.Errorf("trace export needs --trace-level %s", trace.TraceLevelAttempts)
	}
	cosmo, err := cosmology.New(opts.H0, opts.Om0)
	if err != nil {
		return nil, err
	}
	cfg, err := loadSurveyConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	source, err := openDatasetSource(opts.runOptions)
	if err != nil {
		return nil, err
	}
	defer func() { _ = source.Close() }()

	refs, err := source.loader.Load(ctx, opts.Reference, false)
	if err != nil {
		return nil, fmt.Errorf("loading reference dataset %q: %w", opts.Reference, err)
	}
	logrus.Infof("Loaded %d reference objects from %q", len(refs.Objects), opts.Reference)

	var tr *trace.AugmentationTrace
	if tracing {
		tr = trace.NewAugmentationTrace(trace.TraceConfig{Level: trace.TraceLevelAttempts})
	}
	distmod := cosmo.DistanceModulus
	resampler := resample.New(distmod)
	resampler.MaxExtrapolation = cfg.Redshift.ExtrapolationLimit
	augmentor, err := sim.NewAugmentor(*cfg, source.photozReference(opts.PhotozReference), distmod, resampler, tr)
	if err != nil {
		return nil, err
	}

	report := &augmentReport{RunID: uuid.NewString(), Trace: tr}
	logrus.Infof("Starting run %s: seed=%d, per-object=%d", report.RunID, opts.Seed, opts.PerObject)
	rngs := sim.NewPartitionedRNG(sim.NewAugmentationKey(opts.Seed))
	objects, err := augmentor.AugmentDataset(ctx, refs.Objects, opts.PerObject, rngs)
	if err != nil {
		return nil, err
	}
	report.Dataset = &dataset.Dataset{Name: opts.OutputName, Objects: objects}

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
		if err := dataset.WriteCSV(opts.OutDir, report.Dataset); err != nil {
			return nil, err
		}
		logrus.Infof("Wrote %d objects to %s", len(objects), opts.OutDir)
	}
	if source.store != nil {
		if err := source.store.Save(ctx, report.Dataset, report.RunID); err != nil {
			return nil, err
		}
		logrus.Infof("Saved dataset %q to %s", opts.OutputName, opts.DBPath)
	}
	if opts.TraceHeader != "" && opts.TraceData != "" {
		header := &trace.TraceHeader{
			Version:   traceVersion,
			RunID:     report.RunID,
			Seed:      opts.Seed,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Reference: opts.Reference,
			PerObject: opts.PerObject,
		}
		if err := trace.Export(header, tr, opts.TraceHeader, opts.TraceData); err != nil {
			return nil, err
		}
	} else if opts.TraceHeader != "" || opts.TraceData != "" {
		logrus.Warn("Trace export needs both --trace-header and --trace-data; skipping")
	}
	return report, nil
}

func writeSummary(w io.Writer, report *augmentReport) {
	_, _ = fmt.Fprintf(w, "=== Augmentation Summary (run %s) ===\n", report.RunID)
	_, _ = fmt.Fprintf(w, "Objects:          %d\n", len(report.Dataset.Objects))
	if report.Trace == nil {
		return
	}
	s := trace.Summarize(report.Trace)
	_, _ = fmt.Fprintf(w, "References:       %d\n", s.UniqueReferences)
	_, _ = fmt.Fprintf(w, "Attempts:         %d (%.1f%% passed)\n", s.TotalAttempts, 100*s.PassRate)
	_, _ = fmt.Fprintf(w, "Detected epochs:  %.1f ± %.1f\n", s.MeanDetected, s.StdDevDetected)
	_, _ = fmt.Fprintf(w, "Target epochs:    %.1f\n", s.MeanTargetEpochs)
	for _, region := range sortedKeys(s.RegionCounts) {
		_, _ = fmt.Fprintf(w, "Region %-10s %d attempts\n", region+":", s.RegionCounts[region])
	}
	for _, reason := range sortedKeys(s.FailureReasons) {
		_, _ = fmt.Fprintf(w, "Failed (%s): %d\n", reason, s.FailureReasons[reason])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	augmentCmd.Flags().IntVar(&perObject, "per-object", 10, "Augmented objects generated per reference object")
	augmentCmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the augmented dataset CSV files")
	augmentCmd.Flags().StringVar(&outputName, "output-name", "", "Name of the augmented dataset (default <reference>_augmented)")
	augmentCmd.Flags().StringVar(&traceHeaderPath, "trace-header", "", "Write the attempt trace header (YAML) to this path")
	augmentCmd.Flags().StringVar(&traceDataPath, "trace-data", "", "Write the attempt trace records (CSV) to this path")
	augmentCmd.Flags().BoolVar(&printSummary, "summary", false, "Print an attempt summary to stdout")
	augmentCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Attempt trace level (none, attempts); exports and summary statistics need attempts")
	augmentCmd.Flags().Float64Var(&hubbleConstant, "h0", cosmology.PLAsTiCC.H0, "Hubble constant in km/s/Mpc")
	augmentCmd.Flags().Float64Var(&matterDensity, "om0", cosmology.PLAsTiCC.Om0, "Matter density parameter at z=0")
}
