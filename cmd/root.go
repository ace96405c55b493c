package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Flags shared by every subcommand
	seed                int64  // Master seed of the partitioned RNG
	logLevel            string // Log verbosity level
	configPath          string // Survey config YAML overriding the PLAsTiCC defaults
	dataDir             string // Directory of PLAsTiCC-layout CSV files
	dbPath              string // SQLite dataset store; takes precedence over dataDir
	referenceName       string // Dataset to augment
	photozReferenceName string // Dataset whose spec-z/photo-z pairs drive the photo-z simulator
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "plasticc-sim",
	Short: "Light curve augmentation for LSST-like surveys",
	Long: "Generates synthetic astronomical objects from a reference dataset by moving them " +
		"in redshift or brightness and re-observing them with the cadence, noise and " +
		"detection efficiency of the target survey.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// sharedOptions snapshots the persistent flags.
func sharedOptions() runOptions {
	return runOptions{
		Seed:            seed,
		ConfigPath:      configPath,
		DataDir:         dataDir,
		DBPath:          dbPath,
		Reference:       referenceName,
		PhotozReference: photozReferenceName,
	}
}

// Execute runs the CLI root command. An interrupt cancels the running
// command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	flags := rootCmd.PersistentFlags()
	flags.Int64Var(&seed, "seed", 42, "Seed for all random draws")
	flags.StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	flags.StringVar(&configPath, "config", "", "Survey config YAML; keys not set keep their PLAsTiCC defaults")
	flags.StringVar(&dataDir, "data-dir", "data", "Directory holding <name>_metadata.csv and <name>.csv")
	flags.StringVar(&dbPath, "db", "", "SQLite dataset store (used instead of --data-dir when set)")
	flags.StringVar(&referenceName, "reference", "training_set", "Name of the dataset to augment")
	flags.StringVar(&photozReferenceName, "photoz-reference", "plasticc_test", "Name of the dataset the photo-z residuals are drawn from")

	rootCmd.AddCommand(augmentCmd)
	rootCmd.AddCommand(photozCmd)
	rootCmd.AddCommand(cadenceCmd)
	rootCmd.AddCommand(configCmd)
}
