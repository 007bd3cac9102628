package features

import (
	"github.com/voltwatch/voltwatch/internal/telemetry"
)

// Names lists the scoring model's input schema. Vector indices match this
// order exactly — it is the column order the training pipeline exports.
var Names = []string{
	"voltage", "current", "temperature", "soc",
	"cycle_count", "time_since_last_charge",
	"charging_rate", "discharge_rate",
	"max_voltage", "min_voltage",
	"max_temperature", "min_temperature",
}

// Vector is a feature vector in Names order.
type Vector []float64

// Derive computes the model input features from a window snapshot, oldest
// first. A short window uses however many samples are available; an empty
// window yields an all-zero vector so a never-seen battery can still be
// scored. Rates come from the latest sample only; extrema span the window.
func Derive(window []telemetry.Reading) Vector {
	v := make(Vector, len(Names))
	if len(window) == 0 {
		return v
	}

	latest := window[len(window)-1]

	var charging, discharge float64
	if latest.Current > 0 {
		charging = latest.Current
	}
	if latest.Current < 0 {
		discharge = -latest.Current
	}

	maxV, minV := latest.Voltage, latest.Voltage
	maxT, minT := latest.Temperature, latest.Temperature
	for _, r := range window {
		if r.Voltage > maxV {
			maxV = r.Voltage
		}
		if r.Voltage < minV {
			minV = r.Voltage
		}
		if r.Temperature > maxT {
			maxT = r.Temperature
		}
		if r.Temperature < minT {
			minT = r.Temperature
		}
	}

	v[0] = latest.Voltage
	v[1] = latest.Current
	v[2] = latest.Temperature
	v[3] = latest.SoC
	v[4] = float64(CycleCount(window))
	v[5] = timeSinceLastCharge(window)
	v[6] = charging
	v[7] = discharge
	v[8] = maxV
	v[9] = minV
	v[10] = maxT
	v[11] = minT
	return v
}

// CycleCount counts charge cycles in a reading sequence: one cycle each
// time current transitions from ≤0 to >0 between consecutive samples.
func CycleCount(seq []telemetry.Reading) int {
	cycles := 0
	for i := 1; i < len(seq); i++ {
		if seq[i-1].Current <= 0 && seq[i].Current > 0 {
			cycles++
		}
	}
	return cycles
}

// timeSinceLastCharge is the gap in seconds between the latest sample and
// the most recent sample that was charging. Zero when the latest sample is
// itself charging; the full window span when nothing in the window charged.
func timeSinceLastCharge(window []telemetry.Reading) float64 {
	latest := window[len(window)-1]
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].Current > 0 {
			return latest.Timestamp.Sub(window[i].Timestamp).Seconds()
		}
	}
	return latest.Timestamp.Sub(window[0].Timestamp).Seconds()
}
