package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort          = 8080
	DefaultDatabase          = "voltwatch.db"
	DefaultModelPath         = "models/battery_health.json"
	DefaultWindowCapacity    = 10
	DefaultBroadcastInterval = 5 * time.Second

	DefaultLowVoltage      = 3.0
	DefaultHighTemperature = 45.0
	DefaultLowSoC          = 20.0
)

// Config is the root of the parsed yaml file.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// Database is the sqlite file path.
	Database string `yaml:"database"`

	// ModelPath is the scoring model coefficients file exported by the
	// training pipeline. A missing file is not fatal at startup — health
	// predictions fail until one is provided.
	ModelPath string `yaml:"model_path"`

	// WindowCapacity is the number of recent readings kept per battery.
	WindowCapacity int `yaml:"window_capacity"`

	// BroadcastInterval is how often the WebSocket hub pushes the fleet
	// overview to connected clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// Thresholds are the alert trigger levels. Editing this section while
	// the server runs takes effect without a restart.
	Thresholds ThresholdConfig `yaml:"thresholds"`

	// MQTT configures the optional telemetry ingestion bridge.
	MQTT MQTTConfig `yaml:"mqtt"`
}

// ThresholdConfig holds the alert trigger levels.
type ThresholdConfig struct {
	LowVoltage      float64 `yaml:"low_voltage"`
	HighTemperature float64 `yaml:"high_temperature"`
	LowSoC          float64 `yaml:"low_soc"`
}

// MQTTConfig configures the MQTT telemetry subscriber.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`

	// Topic is the subscription filter, e.g. "batteries/+/readings".
	Topic string `yaml:"topic"`

	// UserEnv/PassEnv name the environment variables holding credentials.
	UserEnv string `yaml:"user_env"`
	PassEnv string `yaml:"pass_env"`
}

// Username returns the broker username resolved from the environment.
func (m MQTTConfig) Username() string {
	if m.UserEnv == "" {
		return ""
	}
	return os.Getenv(m.UserEnv)
}

// Password returns the broker password resolved from the environment.
func (m MQTTConfig) Password() string {
	if m.PassEnv == "" {
		return ""
	}
	return os.Getenv(m.PassEnv)
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			Database:          DefaultDatabase,
			ModelPath:         DefaultModelPath,
			WindowCapacity:    DefaultWindowCapacity,
			BroadcastInterval: DefaultBroadcastInterval,
			Thresholds: ThresholdConfig{
				LowVoltage:      DefaultLowVoltage,
				HighTemperature: DefaultHighTemperature,
				LowSoC:          DefaultLowSoC,
			},
			MQTT: MQTTConfig{
				Broker:   "tcp://localhost:1883",
				ClientID: "voltwatch-server",
				Topic:    "batteries/+/readings",
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	if s.Database == "" {
		return fmt.Errorf("server.database must not be empty")
	}
	if s.WindowCapacity <= 0 {
		return fmt.Errorf("server.window_capacity must be positive, got %d", s.WindowCapacity)
	}
	if s.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	if s.Thresholds.LowSoC < 0 || s.Thresholds.LowSoC > 100 {
		return fmt.Errorf("server.thresholds.low_soc %.1f is out of range [0, 100]", s.Thresholds.LowSoC)
	}
	if s.MQTT.Enabled {
		if s.MQTT.Broker == "" {
			return fmt.Errorf("server.mqtt.broker must be set when mqtt is enabled")
		}
		if s.MQTT.Topic == "" {
			return fmt.Errorf("server.mqtt.topic must be set when mqtt is enabled")
		}
	}
	return nil
}
