// Package ingest bridges MQTT battery telemetry into the monitor. Devices
// publish one JSON reading per message on batteries/<id>/readings.
package ingest
