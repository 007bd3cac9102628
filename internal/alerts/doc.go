// Package alerts evaluates battery readings against configured safety
// thresholds and emits typed alerts. Thresholds can be swapped at runtime;
// persistence of the emitted alerts belongs to the orchestrator.
package alerts
