package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"banortesmart/backend/internal/config"
	"banortesmart/backend/internal/consumption"
	"banortesmart/backend/internal/logging"
)

var (
	datasetPath string
	debug       bool
)

var rootCmd = &cobra.Command{
	Use:   "mayactl",
	Short: "Inspect consumption data and talk to Maya from the terminal",
	Long: `mayactl loads the weekly electricity and water datasets used by the API.
It prints summaries, answers assistant questions and publishes spike alerts over MQTT.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(debug)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "YAML dataset file (default is the bundled demo data)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig reads .env and the environment. The --dataset flag wins over
// DATASET_PATH.
func loadConfig() config.Config {
	cfg := config.Load()
	if datasetPath != "" {
		cfg.DatasetPath = datasetPath
	}
	return cfg
}

func loadCatalog(cfg config.Config) (*consumption.Catalog, error) {
	catalog, err := consumption.Load(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	return catalog, nil
}
