// Package health turns a battery's recent telemetry into a health
// prediction by deriving features from the rolling window and invoking the
// external scoring model.
package health
