package publisher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/carmascraper/internal/config"
	"github.com/jgoulah/carmascraper/pkg/models"
)

// Publisher handles publishing to Home Assistant
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
}

// New creates a new publisher (supports both MQTT and HA HTTP API)
func New(mqttCfg config.MQTTConfig, haCfg config.HAConfig) (*Publisher, error) {
	// Validate HA config if enabled
	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	var client mqtt.Client
	var topicPrefix string

	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		topicPrefix = mqttCfg.TopicPrefix
		if topicPrefix == "" {
			topicPrefix = "electric_meter"
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID("carmascraper")
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
	}

	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
		haConfig:    haCfg,
	}, nil
}

// HAPayload matches the Home Assistant backfill service call data
type HAPayload struct {
	EntityID    string `json:"entity_id"`
	State       string `json:"state"`
	LastChanged string `json:"last_changed"`
	LastUpdated string `json:"last_updated"`
}

// mqttPayload is the daily reading state published over MQTT
type mqttPayload struct {
	Date     string  `json:"date"`
	KWh      float64 `json:"kwh"`
	Location string  `json:"location,omitempty"`
	Unit     string  `json:"unit"`
}

// Publish sends one daily consumption record to Home Assistant over
// whichever transports are enabled
func (p *Publisher) Publish(record models.DailyConsumption) error {
	if p.client != nil {
		if err := p.publishMQTT(record); err != nil {
			return err
		}
	}
	if p.haConfig.Enabled {
		return p.publishHTTP(record)
	}
	if p.client == nil {
		return fmt.Errorf("no publishing transport is enabled in config")
	}
	return nil
}

// publishMQTT posts the record as a retained state message
func (p *Publisher) publishMQTT(record models.DailyConsumption) error {
	topic := fmt.Sprintf("%s/daily/%s", p.topicPrefix, record.Date.Format("2006-01-02"))

	payload, err := json.Marshal(mqttPayload{
		Date:     record.Date.Format("2006-01-02"),
		KWh:      record.KWh,
		Location: record.Location,
		Unit:     "kWh",
	})
	if err != nil {
		return fmt.Errorf("encoding MQTT payload: %w", err)
	}

	if token := p.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// publishHTTP sends the record to the Home Assistant backfill endpoint
func (p *Publisher) publishHTTP(record models.DailyConsumption) error {
	// Build the full API URL (AppDaemon API endpoint)
	apiURL := fmt.Sprintf("%s/api/appdaemon/backfill_state", p.haConfig.URL)

	timestamp := record.Date.Format(time.RFC3339)

	payload := HAPayload{
		EntityID:    p.haConfig.EntityID,
		State:       fmt.Sprintf("%.2f", record.KWh),
		LastChanged: timestamp,
		LastUpdated: timestamp,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read error response body for debugging
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
