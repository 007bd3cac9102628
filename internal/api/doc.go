// Package api is the JSON HTTP surface over the monitoring engine: reading
// ingestion, health prediction, analytics queries, the battery registry and
// the live fleet overview.
package api
