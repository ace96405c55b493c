package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective survey config as YAML",
	Long:  "Prints the PLAsTiCC defaults, or the defaults with --config applied. The output is a complete config file and can be edited and passed back with --config.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeConfig(configPath, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Printing config failed: %v", err)
		}
	},
}

func writeConfig(path string, w io.Writer) error {
	cfg, err := loadSurveyConfig(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling survey config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
