package analytics

import (
	"context"
	"math"
	"time"

	"github.com/voltwatch/voltwatch/internal/features"
	"github.com/voltwatch/voltwatch/internal/store"
	"github.com/voltwatch/voltwatch/internal/telemetry"
)

// Aggregator builds analytics summaries from the persistence store.
type Aggregator struct {
	store store.Store
}

// New creates an Aggregator reading from st.
func New(st store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// Summarize computes the summary for batteryID over [start, end]. Zero
// bounds mean all history. A range with no readings yields an empty-but-
// valid summary — zeros and an empty trend, never an error. The health
// trend comes from persisted predictions, ascending by time; it is not
// recomputed.
func (a *Aggregator) Summarize(ctx context.Context, batteryID string, start, end time.Time) (telemetry.AnalyticsSummary, error) {
	sum := telemetry.AnalyticsSummary{
		BatteryID: batteryID,
		Start:     start,
		End:       end,
	}

	readings, err := a.store.QueryReadings(ctx, batteryID, start, end)
	if err != nil {
		return telemetry.AnalyticsSummary{}, err
	}
	if len(readings) == 0 {
		return sum, nil
	}

	var vSum, tSum float64
	minSoC := readings[0].SoC
	for _, r := range readings {
		vSum += r.Voltage
		tSum += r.Temperature
		if abs := math.Abs(r.Current); abs > sum.MaxCurrent {
			sum.MaxCurrent = abs
		}
		if r.SoC < minSoC {
			minSoC = r.SoC
		}
	}
	n := float64(len(readings))
	sum.AverageVoltage = vSum / n
	sum.AverageTemperature = tSum / n
	sum.MinSoC = minSoC
	sum.TotalCycles = features.CycleCount(readings)
	sum.ReadingCount = len(readings)

	history, err := a.store.QueryHealthHistory(ctx, batteryID, start, end)
	if err != nil {
		return telemetry.AnalyticsSummary{}, err
	}
	for _, p := range history {
		sum.HealthTrend = append(sum.HealthTrend, p.HealthScore)
	}
	return sum, nil
}
