package telemetry

import "time"

// Battery lifecycle statuses, owned by the device registry.
const (
	StatusActive      = "ACTIVE"
	StatusRetired     = "RETIRED"
	StatusMaintenance = "MAINTENANCE"
)

// Battery is a registered device identity. The monitoring engine only reads
// it by id; the registry owns the rest.
type Battery struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	Capacity         float64   `json:"capacity"`
	Manufacturer     string    `json:"manufacturer"`
	InstallationDate time.Time `json:"installation_date"`
	Status           string    `json:"status"`
}

// Reading is one telemetry sample. Current is signed: positive while
// charging, negative while discharging. Immutable once validated.
type Reading struct {
	BatteryID   string    `json:"battery_id"`
	Voltage     float64   `json:"voltage"`
	Current     float64   `json:"current"`
	Temperature float64   `json:"temperature"`
	SoC         float64   `json:"soc"`
	Timestamp   time.Time `json:"timestamp"`
}

// Alert types.
const (
	AlertLowVoltage      = "LOW_VOLTAGE"
	AlertHighTemperature = "HIGH_TEMPERATURE"
	AlertLowSoC          = "LOW_SOC"
)

// Alert severities.
const (
	SeverityWarning = "WARNING"
	SeveritySevere  = "SEVERE"
)

// Alert is one threshold breach emitted by the evaluator. Never mutated
// after creation; persistence is the orchestrator's job.
type Alert struct {
	BatteryID string    `json:"battery_id"`
	Type      string    `json:"alert_type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Health status categories derived from the health score.
const (
	HealthExcellent = "EXCELLENT"
	HealthGood      = "GOOD"
	HealthFair      = "FAIR"
	HealthPoor      = "POOR"
)

// HealthPrediction is one scoring pass over a battery's recent telemetry.
// Predictions are append-only history; a newer one never invalidates a
// prior one.
type HealthPrediction struct {
	BatteryID         string    `json:"battery_id"`
	HealthScore       float64   `json:"health_score"`
	RemainingCapacity float64   `json:"remaining_capacity"`
	EstimatedLifetime int       `json:"estimated_lifetime"`
	Status            string    `json:"status"`
	Recommendations   []string  `json:"recommendations"`
	Timestamp         time.Time `json:"timestamp"`
}

// AnalyticsSummary is a derived time-windowed view over persisted readings.
// Recomputed per query, never persisted.
type AnalyticsSummary struct {
	BatteryID          string    `json:"battery_id"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	AverageVoltage     float64   `json:"average_voltage"`
	AverageTemperature float64   `json:"average_temperature"`
	MaxCurrent         float64   `json:"max_current"`
	MinSoC             float64   `json:"min_soc"`
	TotalCycles        int       `json:"total_cycles"`
	HealthTrend        []float64 `json:"health_trend"`
	ReadingCount       int       `json:"reading_count"`
}
