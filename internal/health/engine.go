package health

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/voltwatch/voltwatch/internal/features"
	"github.com/voltwatch/voltwatch/internal/model"
	"github.com/voltwatch/voltwatch/internal/telemetry"
	"github.com/voltwatch/voltwatch/internal/window"
)

// Status thresholds. A clamped score maps to exactly one category.
const (
	ThresholdExcellent = 90.0
	ThresholdGood      = 75.0
	ThresholdFair      = 60.0
)

// Model is the external scoring capability. Implementations may block on
// I/O; the engine passes the caller's context through.
type Model interface {
	Score(ctx context.Context, v features.Vector) (model.Output, error)
}

// Engine produces health predictions from rolling-window telemetry.
type Engine struct {
	windows *window.Store
	model   Model
	now     func() time.Time // injectable for deterministic tests
}

// New creates an Engine. A nil scorer is valid — Predict then fails with
// telemetry.ErrModelUnavailable until a model is provided.
func New(windows *window.Store, m Model) *Engine {
	return &Engine{
		windows: windows,
		model:   m,
		now:     time.Now,
	}
}

// Predict scores batteryID from its current rolling window. A battery with
// no readings is scored from the empty-window fallback features. When the
// model is missing or fails, Predict returns an error — never a fabricated
// score.
func (e *Engine) Predict(ctx context.Context, batteryID string) (telemetry.HealthPrediction, error) {
	if e.model == nil {
		return telemetry.HealthPrediction{}, fmt.Errorf("predict %s: %w", batteryID, telemetry.ErrModelUnavailable)
	}

	vec := features.Derive(e.windows.Snapshot(batteryID))

	out, err := e.model.Score(ctx, vec)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return telemetry.HealthPrediction{}, fmt.Errorf("predict %s: %w", batteryID, telemetry.ErrDependencyTimeout)
		}
		return telemetry.HealthPrediction{}, fmt.Errorf("predict %s: %v: %w", batteryID, err, telemetry.ErrModelUnavailable)
	}

	score := clamp(out.HealthScore, 0, 100)
	lifetime := int(math.Round(out.EstimatedLifetime))
	if lifetime < 0 {
		lifetime = 0
	}

	status := StatusFor(score)
	return telemetry.HealthPrediction{
		BatteryID:         batteryID,
		HealthScore:       score,
		RemainingCapacity: clamp(out.RemainingCapacity, 0, 100),
		EstimatedLifetime: lifetime,
		Status:            status,
		Recommendations:   Recommendations(status),
		Timestamp:         e.now().UTC(),
	}, nil
}

// StatusFor maps a clamped health score to its status category. Total and
// deterministic.
func StatusFor(score float64) string {
	switch {
	case score >= ThresholdExcellent:
		return telemetry.HealthExcellent
	case score >= ThresholdGood:
		return telemetry.HealthGood
	case score >= ThresholdFair:
		return telemetry.HealthFair
	default:
		return telemetry.HealthPoor
	}
}

// Recommendations returns the advisory list for a status category.
func Recommendations(status string) []string {
	switch status {
	case telemetry.HealthPoor:
		return []string{
			"Schedule immediate maintenance check",
			"Consider battery replacement",
			"Monitor temperature closely",
		}
	case telemetry.HealthFair:
		return []string{
			"Schedule routine maintenance check",
			"Monitor battery performance",
			"Check for any unusual patterns",
		}
	default:
		return []string{"Battery performance is within normal range"}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
