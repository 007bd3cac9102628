// Package model implements the scoring-model capability: a per-target
// linear model loaded from the JSON coefficients file the offline training
// pipeline exports.
package model
