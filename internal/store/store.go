package store

import (
	"context"
	"time"

	"github.com/voltwatch/voltwatch/internal/telemetry"
)

// Store is the persistence capability: the orchestrator writes readings,
// alerts and prediction history through it, and the analytics aggregator
// reads them back. A zero start or end time means that bound is open.
//
// Implementations surface context deadline expiry as
// telemetry.ErrDependencyTimeout and other failures as
// telemetry.ErrStoreUnavailable.
type Store interface {
	SaveReading(ctx context.Context, r telemetry.Reading) error
	SaveAlert(ctx context.Context, a telemetry.Alert) error
	SaveHealthPrediction(ctx context.Context, p telemetry.HealthPrediction) error
	QueryReadings(ctx context.Context, batteryID string, start, end time.Time) ([]telemetry.Reading, error)
	QueryHealthHistory(ctx context.Context, batteryID string, start, end time.Time) ([]telemetry.HealthPrediction, error)
}

// Registry resolves battery identities. GetBattery returns
// telemetry.ErrNotFound for an unknown id; the engine never caches
// registry data.
type Registry interface {
	GetBattery(ctx context.Context, id string) (telemetry.Battery, error)
	PutBattery(ctx context.Context, b telemetry.Battery) error
	ListBatteries(ctx context.Context) ([]telemetry.Battery, error)
}
