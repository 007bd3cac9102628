package alerts

import (
	"fmt"
	"sync"

	"github.com/voltwatch/voltwatch/internal/telemetry"
)

// Default trigger levels.
const (
	DefaultLowVoltage      = 3.0
	DefaultHighTemperature = 45.0
	DefaultLowSoC          = 20.0
)

// Thresholds holds the alert trigger levels. Breaches use strict
// comparison — a value equal to its threshold does not alert.
type Thresholds struct {
	LowVoltage      float64
	HighTemperature float64
	LowSoC          float64
}

// DefaultThresholds returns the stock trigger levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowVoltage:      DefaultLowVoltage,
		HighTemperature: DefaultHighTemperature,
		LowSoC:          DefaultLowSoC,
	}
}

// Evaluator tests readings against the configured thresholds.
// Safe for concurrent use; thresholds may change at runtime.
type Evaluator struct {
	mu sync.RWMutex
	t  Thresholds
}

// New creates an Evaluator with the given thresholds.
func New(t Thresholds) *Evaluator {
	return &Evaluator{t: t}
}

// SetThresholds replaces the trigger levels. In-flight evaluations finish
// against the levels they started with.
func (e *Evaluator) SetThresholds(t Thresholds) {
	e.mu.Lock()
	e.t = t
	e.mu.Unlock()
}

// Thresholds returns the current trigger levels.
func (e *Evaluator) Thresholds() Thresholds {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.t
}

// Evaluate checks r in fixed order: voltage, then temperature, then state
// of charge. The three checks are independent — every breached threshold
// produces its own alert, so one reading can emit up to three.
func (e *Evaluator) Evaluate(r telemetry.Reading) []telemetry.Alert {
	e.mu.RLock()
	t := e.t
	e.mu.RUnlock()

	var out []telemetry.Alert
	if r.Voltage < t.LowVoltage {
		out = append(out, telemetry.Alert{
			BatteryID: r.BatteryID,
			Type:      telemetry.AlertLowVoltage,
			Severity:  telemetry.SeveritySevere,
			Message:   fmt.Sprintf("battery voltage below critical threshold: %.2fV", r.Voltage),
			Timestamp: r.Timestamp,
		})
	}
	if r.Temperature > t.HighTemperature {
		out = append(out, telemetry.Alert{
			BatteryID: r.BatteryID,
			Type:      telemetry.AlertHighTemperature,
			Severity:  telemetry.SeverityWarning,
			Message:   fmt.Sprintf("battery temperature above threshold: %.1f°C", r.Temperature),
			Timestamp: r.Timestamp,
		})
	}
	if r.SoC < t.LowSoC {
		out = append(out, telemetry.Alert{
			BatteryID: r.BatteryID,
			Type:      telemetry.AlertLowSoC,
			Severity:  telemetry.SeverityWarning,
			Message:   fmt.Sprintf("battery state of charge below threshold: %.1f%%", r.SoC),
			Timestamp: r.Timestamp,
		})
	}
	return out
}
