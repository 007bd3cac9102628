package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server: {}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := cfg.Server
	if s.HTTPPort != DefaultHTTPPort {
		t.Errorf("HTTPPort: got %d, want %d", s.HTTPPort, DefaultHTTPPort)
	}
	if s.Database != DefaultDatabase {
		t.Errorf("Database: got %q, want %q", s.Database, DefaultDatabase)
	}
	if s.WindowCapacity != DefaultWindowCapacity {
		t.Errorf("WindowCapacity: got %d, want %d", s.WindowCapacity, DefaultWindowCapacity)
	}
	if s.BroadcastInterval != DefaultBroadcastInterval {
		t.Errorf("BroadcastInterval: got %v, want %v", s.BroadcastInterval, DefaultBroadcastInterval)
	}
	if s.Thresholds.LowVoltage != DefaultLowVoltage {
		t.Errorf("LowVoltage: got %v, want %v", s.Thresholds.LowVoltage, DefaultLowVoltage)
	}
	if s.MQTT.Enabled {
		t.Error("MQTT: enabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  http_port: 9090
  database: /var/lib/voltwatch/data.db
  window_capacity: 50
  broadcast_interval: 2s
  thresholds:
    low_voltage: 3.2
    high_temperature: 50
    low_soc: 15
  mqtt:
    enabled: true
    broker: tcp://broker:1883
    topic: fleet/+/telemetry
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := cfg.Server
	if s.HTTPPort != 9090 {
		t.Errorf("HTTPPort: got %d, want 9090", s.HTTPPort)
	}
	if s.WindowCapacity != 50 {
		t.Errorf("WindowCapacity: got %d, want 50", s.WindowCapacity)
	}
	if s.BroadcastInterval != 2*time.Second {
		t.Errorf("BroadcastInterval: got %v, want 2s", s.BroadcastInterval)
	}
	if s.Thresholds.LowVoltage != 3.2 || s.Thresholds.HighTemperature != 50 || s.Thresholds.LowSoC != 15 {
		t.Errorf("Thresholds: got %+v", s.Thresholds)
	}
	if !s.MQTT.Enabled || s.MQTT.Topic != "fleet/+/telemetry" {
		t.Errorf("MQTT: got %+v", s.MQTT)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"bad yaml", "server: [not a map", "parse yaml"},
		{"port out of range", "server:\n  http_port: 70000\n", "http_port"},
		{"empty database", "server:\n  database: \"\"\n", "database"},
		{"zero capacity", "server:\n  window_capacity: -1\n", "window_capacity"},
		{"soc threshold out of range", "server:\n  thresholds:\n    low_soc: 120\n", "low_soc"},
		{"mqtt enabled without broker", "server:\n  mqtt:\n    enabled: true\n    broker: \"\"\n", "mqtt.broker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load: expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Load: error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load: expected error for missing file")
	}
}

func TestMQTTCredentials(t *testing.T) {
	t.Setenv("VW_TEST_MQTT_USER", "sensor")
	t.Setenv("VW_TEST_MQTT_PASS", "hunter2")

	m := MQTTConfig{UserEnv: "VW_TEST_MQTT_USER", PassEnv: "VW_TEST_MQTT_PASS"}
	if got := m.Username(); got != "sensor" {
		t.Errorf("Username: got %q, want sensor", got)
	}
	if got := m.Password(); got != "hunter2" {
		t.Errorf("Password: got %q, want hunter2", got)
	}

	empty := MQTTConfig{}
	if empty.Username() != "" || empty.Password() != "" {
		t.Error("unset env names should resolve to empty credentials")
	}
}
