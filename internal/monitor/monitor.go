package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/voltwatch/voltwatch/internal/alerts"
	"github.com/voltwatch/voltwatch/internal/analytics"
	"github.com/voltwatch/voltwatch/internal/health"
	"github.com/voltwatch/voltwatch/internal/metrics"
	"github.com/voltwatch/voltwatch/internal/store"
	"github.com/voltwatch/voltwatch/internal/telemetry"
	"github.com/voltwatch/voltwatch/internal/window"
)

// Deps are the collaborators a Monitor sequences. All fields are required.
type Deps struct {
	Windows   *window.Store
	Evaluator *alerts.Evaluator
	Health    *health.Engine
	Analytics *analytics.Aggregator
	Store     store.Store
	Registry  store.Registry
	Stats     *metrics.Collector
}

// Monitor coordinates the monitoring pipeline. Construct one per process
// and keep it for the process lifetime; every operation is safe for
// concurrent use.
type Monitor struct {
	windows   *window.Store
	evaluator *alerts.Evaluator
	health    *health.Engine
	analytics *analytics.Aggregator
	store     store.Store
	registry  store.Registry
	stats     *metrics.Collector
	now       func() time.Time
}

// New creates a Monitor from its collaborators.
func New(d Deps) *Monitor {
	return &Monitor{
		windows:   d.Windows,
		evaluator: d.Evaluator,
		health:    d.Health,
		analytics: d.Analytics,
		store:     d.Store,
		registry:  d.Registry,
		stats:     d.Stats,
		now:       time.Now,
	}
}

// Ingest validates r, persists it, appends it to the rolling window and
// evaluates alerts, persisting each one emitted. Duplicate identical
// readings may persist duplicate alerts — accepted, not deduplicated here.
func (m *Monitor) Ingest(ctx context.Context, r telemetry.Reading) (telemetry.Reading, error) {
	r, err := telemetry.ValidateReading(r, m.now().UTC())
	if err != nil {
		m.stats.ReadingRejected()
		return telemetry.Reading{}, err
	}

	if err := m.store.SaveReading(ctx, r); err != nil {
		return telemetry.Reading{}, err
	}

	m.windows.Append(r.BatteryID, r)
	m.stats.ReadingIngested()

	for _, a := range m.evaluator.Evaluate(r) {
		if err := m.store.SaveAlert(ctx, a); err != nil {
			return telemetry.Reading{}, fmt.Errorf("persist alert: %w", err)
		}
		m.stats.AlertFired(a.Type)
		slog.Warn("alert fired",
			"battery", a.BatteryID,
			"type", a.Type,
			"severity", a.Severity,
			"message", a.Message,
		)
	}
	return r, nil
}

// PredictHealth checks batteryID against the registry, scores it and
// appends the prediction to the store's history. A failed history write is
// logged but does not fail the prediction — the score itself succeeded and
// the trend is derived data.
func (m *Monitor) PredictHealth(ctx context.Context, batteryID string) (telemetry.HealthPrediction, error) {
	if _, err := m.registry.GetBattery(ctx, batteryID); err != nil {
		return telemetry.HealthPrediction{}, err
	}

	p, err := m.health.Predict(ctx, batteryID)
	if err != nil {
		m.stats.ModelFailed()
		return telemetry.HealthPrediction{}, err
	}
	m.stats.PredictionServed()

	if err := m.store.SaveHealthPrediction(ctx, p); err != nil {
		slog.Warn("health history not persisted", "battery", batteryID, "err", err)
	}
	return p, nil
}

// Analytics checks batteryID against the registry and delegates to the
// aggregator. Zero start/end bounds mean all history.
func (m *Monitor) Analytics(ctx context.Context, batteryID string, start, end time.Time) (telemetry.AnalyticsSummary, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return telemetry.AnalyticsSummary{}, &telemetry.ValidationError{
			Field:  "start",
			Reason: "start is after end",
		}
	}
	if _, err := m.registry.GetBattery(ctx, batteryID); err != nil {
		return telemetry.AnalyticsSummary{}, err
	}
	return m.analytics.Summarize(ctx, batteryID, start, end)
}

// RegisterBattery upserts b into the registry, defaulting a blank status
// to ACTIVE.
func (m *Monitor) RegisterBattery(ctx context.Context, b telemetry.Battery) (telemetry.Battery, error) {
	if b.ID == "" {
		return telemetry.Battery{}, &telemetry.ValidationError{Field: "id", Reason: "required"}
	}
	if b.Status == "" {
		b.Status = telemetry.StatusActive
	}
	if b.InstallationDate.IsZero() {
		b.InstallationDate = m.now().UTC()
	}
	if err := m.registry.PutBattery(ctx, b); err != nil {
		return telemetry.Battery{}, err
	}
	return b, nil
}

// Battery looks up one registered battery.
func (m *Monitor) Battery(ctx context.Context, id string) (telemetry.Battery, error) {
	return m.registry.GetBattery(ctx, id)
}

// Batteries lists every registered battery.
func (m *Monitor) Batteries(ctx context.Context) ([]telemetry.Battery, error) {
	return m.registry.ListBatteries(ctx)
}
