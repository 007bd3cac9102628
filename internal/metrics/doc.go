// Package metrics tracks operational counters for the monitoring engine
// and exposes them in Prometheus text exposition format.
package metrics
