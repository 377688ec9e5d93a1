// Package feed publishes accepted samples to MQTT so local integrations
// (dashboards, automations) see live data without polling the collector.
package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jelson/sensornode/internal/device"
)

const publishTimeout = 5 * time.Second

type liveSample struct {
	Time         int64   `json:"time"`
	TemperatureC float64 `json:"temperature_C"`
	HumidityPerc float64 `json:"humidity_perc"`
}

// Publisher is a best-effort MQTT feed. Connection management is left to
// paho's auto-reconnect; a broker outage turns publishes into logged no-ops
// and never delays a probe.
type Publisher struct {
	client mqtt.Client
	log    *slog.Logger
}

func NewPublisher(broker string, port int, clientID string, log *slog.Logger) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", broker, port))
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		log.Info("mqtt connected", "broker", broker, "port", port)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", "error", err)
	})

	p := &Publisher{client: mqtt.NewClient(opts), log: log}
	// Fire and forget: ConnectRetry keeps trying in the background.
	p.client.Connect()
	return p
}

// Publish sends one sample to sensors/<identity>/live.
func (p *Publisher) Publish(identity string, s device.Sample) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	topic := fmt.Sprintf("sensors/%s/live", identity)
	payload, err := json.Marshal(liveSample{
		Time:         s.Time,
		TemperatureC: s.TemperatureC,
		HumidityPerc: s.HumidityPct,
	})
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("publish sample: %w", token.Error())
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
	p.log.Info("mqtt disconnected")
}
