// Package monitor is the facade the transport layer calls into. It owns no
// business rules itself — only the sequencing of validation, window
// appends, alert evaluation, scoring and analytics.
package monitor
