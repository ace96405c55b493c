package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/plasticc-sim/plasticc-sim/sim"
)

var (
	photozRedshift float64 // True redshift to simulate photo-z for
	photozSamples  int     // Number of draws
)

var photozCmd = &cobra.Command{
	Use:   "photoz",
	Short: "Draw simulated photo-z estimates for a true redshift",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPhotoz(cmd.Context(), sharedOptions(), photozRedshift, photozSamples, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Photo-z simulation failed: %v", err)
		}
	},
}

// runPhotoz writes n "photoz photoz_err" lines for redshift z.
func runPhotoz(ctx context.Context, opts runOptions, z float64, n int, w io.Writer) error {
	cfg, err := loadSurveyConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	source, err := openDatasetSource(opts)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	ref := source.photozReference(opts.PhotozReference)
	table, err := ref.Table(ctx)
	if err != nil {
		return err
	}
	if lo, hi, ok := speczRange(table); ok {
		logrus.Infof("Photo-z reference %q: %d rows, spec-z in [%.3f, %.3f]", opts.PhotozReference, table.Len(), lo, hi)
		if z < lo || z > hi {
			logrus.Warnf("Redshift %g is outside the photo-z reference spec-z range", z)
		}
	}

	simulator := sim.NewPhotozSimulator(ref, cfg.Photoz)
	rng := sim.NewPartitionedRNG(sim.NewAugmentationKey(opts.Seed)).ForSubsystem(sim.SubsystemPhotoz)
	for i := 0; i < n; i++ {
		photoz, photozErr, err := simulator.Simulate(ctx, z, rng)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%.6f %.6f\n", photoz, photozErr); err != nil {
			return err
		}
	}
	return nil
}

// speczRange returns the spec-z extent of table. ok is false for an empty
// table.
func speczRange(table *sim.PhotozTable) (lo, hi float64, ok bool) {
	specz := table.Column(sim.PhotozColSpecz)
	if len(specz) == 0 {
		return 0, 0, false
	}
	return floats.Min(specz), floats.Max(specz), true
}

func init() {
	photozCmd.Flags().Float64Var(&photozRedshift, "redshift", 0.5, "True redshift")
	photozCmd.Flags().IntVar(&photozSamples, "n", 10, "Number of photo-z draws")
}
