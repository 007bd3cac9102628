package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/voltwatch/voltwatch/internal/monitor"
	"github.com/voltwatch/voltwatch/internal/telemetry"
)

// ingestTimeout bounds one reading's trip through the pipeline; a broker
// callback must never block indefinitely on the store.
const ingestTimeout = 5 * time.Second

// Options configures the MQTT consumer.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string

	// Topic is the subscription filter, e.g. "batteries/+/readings".
	Topic string
}

// Consumer subscribes to battery telemetry topics and feeds each reading to
// the monitor. Rejected readings are logged and dropped — a bad sample from
// one device must not stall the stream.
type Consumer struct {
	monitor *monitor.Monitor
	client  mqtt.Client
	topic   string
}

// NewConsumer connects to the broker and subscribes. The subscription is
// re-established on every reconnect.
func NewConsumer(m *monitor.Monitor, opts Options) (*Consumer, error) {
	c := &Consumer{monitor: m, topic: opts.Topic}

	o := mqtt.NewClientOptions()
	o.AddBroker(opts.Broker)
	o.SetClientID(opts.ClientID)
	if opts.Username != "" {
		o.SetUsername(opts.Username)
		o.SetPassword(opts.Password)
	}
	o.SetAutoReconnect(true)
	o.SetKeepAlive(60 * time.Second)
	o.SetPingTimeout(10 * time.Second)
	o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("mqtt: connection lost", "err", err)
	})
	o.SetOnConnectHandler(func(client mqtt.Client) {
		slog.Info("mqtt: connected", "broker", opts.Broker, "topic", opts.Topic)
		if token := client.Subscribe(opts.Topic, 1, c.handle); token.Wait() && token.Error() != nil {
			slog.Error("mqtt: subscribe failed", "topic", opts.Topic, "err", token.Error())
		}
	})

	client := mqtt.NewClient(o)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", opts.Broker, token.Error())
	}

	c.client = client
	return c, nil
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (c *Consumer) Close() {
	c.client.Disconnect(250)
}

// handle processes one telemetry message.
func (c *Consumer) handle(_ mqtt.Client, msg mqtt.Message) {
	var r telemetry.Reading
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		slog.Warn("mqtt: bad reading payload", "topic", msg.Topic(), "err", err)
		return
	}
	if r.BatteryID == "" {
		r.BatteryID = batteryFromTopic(msg.Topic())
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	if _, err := c.monitor.Ingest(ctx, r); err != nil {
		slog.Warn("mqtt: reading rejected",
			"topic", msg.Topic(), "battery", r.BatteryID, "err", err)
	}
}

// batteryFromTopic extracts the battery id from "batteries/<id>/readings".
func batteryFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}
