package features

import (
	"testing"
	"time"

	"github.com/voltwatch/voltwatch/internal/telemetry"
)

var base = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func sample(offsetSec int, voltage, current, temp, soc float64) telemetry.Reading {
	return telemetry.Reading{
		BatteryID:   "B1",
		Voltage:     voltage,
		Current:     current,
		Temperature: temp,
		SoC:         soc,
		Timestamp:   base.Add(time.Duration(offsetSec) * time.Second),
	}
}

// index looks up a feature by schema name.
func index(t *testing.T, name string) int {
	t.Helper()
	for i, n := range Names {
		if n == name {
			return i
		}
	}
	t.Fatalf("feature %q not in schema", name)
	return -1
}

func TestDerive_EmptyWindow(t *testing.T) {
	v := Derive(nil)
	if len(v) != len(Names) {
		t.Fatalf("Derive: got %d features, want %d", len(v), len(Names))
	}
	for i, f := range v {
		if f != 0 {
			t.Errorf("feature %s: got %v, want 0 for empty window", Names[i], f)
		}
	}
}

func TestDerive_SingleReading(t *testing.T) {
	v := Derive([]telemetry.Reading{sample(0, 3.7, 1.5, 28, 80)})

	checks := map[string]float64{
		"voltage":                3.7,
		"current":                1.5,
		"temperature":            28,
		"soc":                    80,
		"cycle_count":            0,
		"time_since_last_charge": 0, // latest sample is charging
		"charging_rate":          1.5,
		"discharge_rate":         0,
		"max_voltage":            3.7,
		"min_voltage":            3.7,
		"max_temperature":        28,
		"min_temperature":        28,
	}
	for name, want := range checks {
		if got := v[index(t, name)]; got != want {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
}

func TestDerive_DischargingRates(t *testing.T) {
	v := Derive([]telemetry.Reading{sample(0, 3.6, -2.0, 30, 60)})

	if got := v[index(t, "charging_rate")]; got != 0 {
		t.Errorf("charging_rate: got %v, want 0", got)
	}
	if got := v[index(t, "discharge_rate")]; got != 2.0 {
		t.Errorf("discharge_rate: got %v, want 2.0", got)
	}
}

func TestDerive_ExtremaSpanWindow(t *testing.T) {
	v := Derive([]telemetry.Reading{
		sample(0, 3.2, 1.0, 22, 40),
		sample(60, 4.1, 1.0, 35, 50),
		sample(120, 3.7, 1.0, 28, 60),
	})

	checks := map[string]float64{
		"max_voltage":     4.1,
		"min_voltage":     3.2,
		"max_temperature": 35,
		"min_temperature": 22,
		"voltage":         3.7, // latest
	}
	for name, want := range checks {
		if got := v[index(t, name)]; got != want {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
}

func TestCycleCount(t *testing.T) {
	tests := []struct {
		name     string
		currents []float64
		want     int
	}{
		{"empty", nil, 0},
		{"single", []float64{1}, 0},
		{"steady charge", []float64{1, 2, 3}, 0},
		{"steady discharge", []float64{-1, -2, -3}, 0},
		{"one cycle", []float64{-1, 2}, 1},
		{"zero counts as not charging", []float64{0, 2}, 1},
		{"two cycles", []float64{-1, 2, -3, 4}, 2},
		{"charge to discharge is not a cycle", []float64{2, -1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := make([]telemetry.Reading, 0, len(tt.currents))
			for i, c := range tt.currents {
				seq = append(seq, sample(i*60, 3.7, c, 25, 50))
			}
			if got := CycleCount(seq); got != tt.want {
				t.Errorf("CycleCount(%v): got %d, want %d", tt.currents, got, tt.want)
			}
		})
	}
}

func TestDerive_TimeSinceLastCharge(t *testing.T) {
	// Charging at t=60, then discharging; latest at t=300.
	v := Derive([]telemetry.Reading{
		sample(0, 3.7, -1.0, 25, 50),
		sample(60, 3.8, 2.0, 25, 55),
		sample(180, 3.7, -1.0, 25, 52),
		sample(300, 3.6, -1.5, 25, 48),
	})

	if got := v[index(t, "time_since_last_charge")]; got != 240 {
		t.Errorf("time_since_last_charge: got %v, want 240", got)
	}
}

func TestDerive_TimeSinceLastCharge_NeverCharged(t *testing.T) {
	// No charging sample: falls back to the window span.
	v := Derive([]telemetry.Reading{
		sample(0, 3.7, -1.0, 25, 50),
		sample(600, 3.6, -1.0, 25, 45),
	})

	if got := v[index(t, "time_since_last_charge")]; got != 600 {
		t.Errorf("time_since_last_charge: got %v, want 600", got)
	}
}
