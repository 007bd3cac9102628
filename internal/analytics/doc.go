// Package analytics computes time-windowed summaries over persisted
// readings and prediction history. Summaries are derived per query and
// never stored.
package analytics
