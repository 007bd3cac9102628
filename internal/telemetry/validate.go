package telemetry

import (
	"fmt"
	"time"
)

// absoluteZeroC is the physical floor for a temperature reading.
const absoluteZeroC = -273.15

// ValidateReading checks a raw sample before it enters the pipeline and
// fills a missing timestamp with now. Cross-field plausibility (voltage vs
// chemistry) is not enforced here.
func ValidateReading(r Reading, now time.Time) (Reading, error) {
	if r.BatteryID == "" {
		return Reading{}, &ValidationError{Field: "battery_id", Reason: "required"}
	}
	if r.SoC < 0 || r.SoC > 100 {
		return Reading{}, &ValidationError{
			Field:  "soc",
			Reason: fmt.Sprintf("%.2f outside [0, 100]", r.SoC),
		}
	}
	if r.Temperature < absoluteZeroC {
		return Reading{}, &ValidationError{
			Field:  "temperature",
			Reason: fmt.Sprintf("%.2f°C below absolute zero", r.Temperature),
		}
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = now
	}
	return r, nil
}
