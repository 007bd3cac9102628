// Package telemetry defines the core battery telemetry types shared across
// the monitoring engine — readings, alerts, health predictions and analytics
// summaries — together with reading validation and the error taxonomy
// returned to callers.
package telemetry
