package middleware

import (
	"github.com/turboprint/turboprint/core"
)

// ErrorAlertMiddleware watches dispatched records and invokes an
// alert callback for every record at or above a threshold level. It
// runs after handlers, so it sees what was actually delivered.
type ErrorAlertMiddleware struct {
	priority  int
	threshold core.Level
	alert     func(rec *core.Record)
}

// NewErrorAlertMiddleware creates the alerting middleware. The
// threshold defaults to ErrorLevel when not positive.
func NewErrorAlertMiddleware(priority int, threshold core.Level, alert func(rec *core.Record)) *ErrorAlertMiddleware {
	if threshold <= core.NotSetLevel {
		threshold = core.ErrorLevel
	}
	return &ErrorAlertMiddleware{priority: priority, threshold: threshold, alert: alert}
}

// Priority implements Outer.
func (m *ErrorAlertMiddleware) Priority() int { return m.priority }

// Handle fires the alert for records at or above the threshold.
func (m *ErrorAlertMiddleware) Handle(rec *core.Record) error {
	if m.alert != nil && rec.Level >= m.threshold {
		m.alert(rec)
	}
	return nil
}
