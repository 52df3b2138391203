package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"banortesmart/backend/internal/consumption"
	"banortesmart/backend/internal/publisher"
)

var publishCmd = &cobra.Command{
	Use:   "publish-spikes",
	Short: "Publish spike alerts to MQTT",
	Long:  `Computes the spike days of both utilities and publishes one QoS 1 message per spike to MQTT_BROKER.`,
	RunE:  runPublishSpikes,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublishSpikes(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	pub, err := publisher.New(cfg)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	out := cmd.OutOrStdout()
	for _, utility := range consumption.Utilities {
		summary, err := catalog.Summary(utility)
		if err != nil {
			return fmt.Errorf("summarizing %s: %w", utility, err)
		}
		count, err := pub.PublishSpikes(summary)
		if err != nil {
			return fmt.Errorf("publishing %s spikes: %w", utility, err)
		}
		fmt.Fprintf(out, "%s: published %d spike alerts to %s\n", utility, count, publisher.Topic(cfg.MQTTTopicPrefix, utility))
	}
	return nil
}
