package logger

import (
	"time"

	"github.com/turboprint/turboprint/core"
)

// Observer receives pipeline telemetry. The metrics package provides a
// Prometheus-backed implementation; a nil observer disables reporting.
type Observer interface {
	// RecordProcessed is called once per dispatched record with the
	// time spent in the pipeline.
	RecordProcessed(level core.Level, d time.Duration)
	// ErrorOccurred is called for every contained handler or filter
	// failure.
	ErrorOccurred()
}
