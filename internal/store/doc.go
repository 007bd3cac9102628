// Package store defines the persistence and device-registry capabilities
// the monitoring engine depends on, and implements both on a local SQLite
// database with time-range query support for historical data.
package store
