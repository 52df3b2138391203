// Package publisher pushes consumption spike alerts to an MQTT broker.
package publisher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"banortesmart/backend/internal/config"
	"banortesmart/backend/internal/consumption"
	"banortesmart/backend/internal/logging"
)

const defaultTopicPrefix = "maya"

// SpikeAlert is the JSON payload published for one spike day.
type SpikeAlert struct {
	Utility   consumption.Utility `json:"utility"`
	Day       string              `json:"day"`
	Date      string              `json:"date"`
	Week      string              `json:"week"`
	Cost      float64             `json:"cost"`
	Threshold float64             `json:"threshold"`
}

// BuildAlerts returns one alert per spike in the summary, in summary order.
func BuildAlerts(summary consumption.Summary) []SpikeAlert {
	threshold := summary.SpikeThreshold()
	alerts := make([]SpikeAlert, 0, len(summary.Spikes))
	for _, spike := range summary.Spikes {
		alerts = append(alerts, SpikeAlert{
			Utility:   summary.Utility,
			Day:       spike.Day,
			Date:      spike.Date,
			Week:      spike.Week,
			Cost:      spike.Cost,
			Threshold: threshold,
		})
	}
	return alerts
}

func Topic(prefix string, utility consumption.Utility) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return fmt.Sprintf("%s/%s/spikes", prefix, utility)
}

// Publisher sends alerts to the broker.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	send        func(topic string, payload []byte) error
}

func New(cfg config.Config) (*Publisher, error) {
	if strings.TrimSpace(cfg.MQTTBroker) == "" {
		return nil, fmt.Errorf("MQTT broker address is required")
	}

	broker := cfg.MQTTBroker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("maya-" + fmt.Sprint(time.Now().UnixNano()))
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
	}
	if cfg.MQTTPassword != "" {
		opts.SetPassword(cfg.MQTTPassword)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.MQTTTopicPrefix,
		send: func(topic string, payload []byte) error {
			token := client.Publish(topic, 1, false, payload)
			token.Wait()
			return token.Error()
		},
	}, nil
}

// PublishSpikes sends every spike of the summary and returns how many were
// published.
func (p *Publisher) PublishSpikes(summary consumption.Summary) (int, error) {
	topic := Topic(p.topicPrefix, summary.Utility)
	published := 0
	for _, alert := range BuildAlerts(summary) {
		payload, err := json.Marshal(alert)
		if err != nil {
			return published, fmt.Errorf("encoding alert: %w", err)
		}
		if err := p.send(topic, payload); err != nil {
			return published, fmt.Errorf("publishing to %s: %w", topic, err)
		}
		published++
		logging.Debugw("spike alert published", "topic", topic, "date", alert.Date, "cost", alert.Cost)
	}
	return published, nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
