package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/plasticc-sim/plasticc-sim/sim"
)

var (
	cadenceRegion  string // Survey region, ddf or wfd
	cadenceSamples int    // Number of draws
)

var cadenceCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Draw target epoch counts for a survey region",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCadence(sharedOptions(), cadenceRegion, cadenceSamples, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Cadence sampling failed: %v", err)
		}
	},
}

// runCadence writes n epoch counts for region, one per line.
func runCadence(opts runOptions, region string, n int, w io.Writer) error {
	r, err := parseRegion(region)
	if err != nil {
		return err
	}
	cfg, err := loadSurveyConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	selector, err := sim.NewCadenceSelector(cfg.Cadence)
	if err != nil {
		return err
	}
	rng := sim.NewPartitionedRNG(sim.NewAugmentationKey(opts.Seed)).ForSubsystem(sim.SubsystemCadence)
	meta := &sim.AugmentedMetadata{Region: r}
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintln(w, selector.ChooseEpochCount(meta, rng)); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	cadenceCmd.Flags().StringVar(&cadenceRegion, "region", "wfd", "Survey region (ddf or wfd)")
	cadenceCmd.Flags().IntVar(&cadenceSamples, "n", 10, "Number of epoch counts to draw")
}
