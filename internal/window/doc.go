// Package window holds the per-battery rolling history of recent readings.
// It is the only shared mutable state the monitoring engine owns.
package window
