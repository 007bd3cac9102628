package api

// FleetResponse is the live per-battery overview, served on
// GET /api/v1/fleet and broadcast over the WebSocket hub.
type FleetResponse struct {
	Batteries     []BatteryStatus `json:"batteries"`
	BatteryCount  int             `json:"battery_count"`
	AlertingCount int             `json:"alerting_count"`
	GeneratedAt   string          `json:"generated_at"` // RFC3339
}

// BatteryStatus is one battery's latest state within the fleet overview.
type BatteryStatus struct {
	BatteryID   string   `json:"battery_id"`
	Voltage     float64  `json:"voltage"`
	Current     float64  `json:"current"`
	Temperature float64  `json:"temperature"`
	SoC         float64  `json:"soc"`
	SampleCount int      `json:"sample_count"`
	Breaches    []string `json:"breaches,omitempty"` // alert types the latest reading trips
	LastSeen    string   `json:"last_seen"`          // RFC3339
}

// ThresholdsResponse is the payload for GET /api/v1/thresholds.
type ThresholdsResponse struct {
	LowVoltage      float64 `json:"low_voltage"`
	HighTemperature float64 `json:"high_temperature"`
	LowSoC          float64 `json:"low_soc"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
