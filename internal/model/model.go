package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/voltwatch/voltwatch/internal/features"
)

// Target names the model must produce.
const (
	TargetHealthScore        = "health_score"
	TargetRemainingCapacity  = "remaining_capacity"
	TargetEstimatedLifetime  = "estimated_lifetime"
	TargetFailureProbability = "failure_probability"
)

// Output holds the raw targets from one scoring pass. Values are unclamped;
// the health engine applies range clamps.
type Output struct {
	HealthScore        float64 `json:"health_score"`
	RemainingCapacity  float64 `json:"remaining_capacity"`
	EstimatedLifetime  float64 `json:"estimated_lifetime"`
	FailureProbability float64 `json:"failure_probability"`
}

// Target is one output's linear form: intercept + Σ coefficient·feature.
// Coefficients are keyed by feature name; unknown names are ignored so a
// retrained model with extra columns stays loadable.
type Target struct {
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// Linear is a per-target linear model.
type Linear struct {
	Targets map[string]Target `json:"targets"`
}

// Load reads a coefficients file. A missing or malformed file is an error —
// the caller decides whether to run without a model.
func Load(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read %q: %w", path, err)
	}
	var m Linear
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("model: parse %q: %w", path, err)
	}
	if len(m.Targets) == 0 {
		return nil, fmt.Errorf("model: %q defines no targets", path)
	}
	return &m, nil
}

// Score evaluates every target against v. The context is accepted for
// interface symmetry with remote scoring backends; a linear model never
// blocks.
func (m *Linear) Score(_ context.Context, v features.Vector) (Output, error) {
	return Output{
		HealthScore:        m.eval(TargetHealthScore, v),
		RemainingCapacity:  m.eval(TargetRemainingCapacity, v),
		EstimatedLifetime:  m.eval(TargetEstimatedLifetime, v),
		FailureProbability: m.eval(TargetFailureProbability, v),
	}, nil
}

func (m *Linear) eval(target string, v features.Vector) float64 {
	t, ok := m.Targets[target]
	if !ok {
		return 0
	}
	score := t.Intercept
	for i, name := range features.Names {
		if i >= len(v) {
			break
		}
		if c, ok := t.Coefficients[name]; ok {
			score += c * v[i]
		}
	}
	return score
}

// WriteSample writes a hand-tuned baseline model to path, for bootstrapping
// a deployment before the first trained export is available.
func WriteSample(path string) error {
	sample := Linear{
		Targets: map[string]Target{
			TargetHealthScore: {
				Intercept: 70,
				Coefficients: map[string]float64{
					"soc":             0.25,
					"temperature":     -0.30,
					"cycle_count":     -0.50,
					"max_temperature": -0.10,
				},
			},
			TargetRemainingCapacity: {
				Intercept: 85,
				Coefficients: map[string]float64{
					"soc":         0.15,
					"cycle_count": -0.40,
				},
			},
			TargetEstimatedLifetime: {
				Intercept: 400,
				Coefficients: map[string]float64{
					"cycle_count":     -8,
					"max_temperature": -2,
				},
			},
			TargetFailureProbability: {
				Intercept: 0.05,
				Coefficients: map[string]float64{
					"max_temperature": 0.002,
					"cycle_count":     0.005,
				},
			},
		},
	}

	data, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return fmt.Errorf("model: marshal sample: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("model: write %q: %w", path, err)
	}
	return nil
}
