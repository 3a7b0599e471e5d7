package middleware

import (
	"sort"

	"github.com/turboprint/turboprint/core"
)

// Inner middleware runs between filter admission and handler
// dispatch. It may transform the record (returning a replacement) or
// veto it by returning core.ErrRejected. Any other error is reported
// and the pre-failure record continues down the pipeline.
type Inner interface {
	// Priority orders execution; lower runs first.
	Priority() int
	// Handle transforms or vetoes the record. Returning a nil record
	// with a nil error keeps the input record.
	Handle(rec *core.Record) (*core.Record, error)
}

// Outer middleware observes the final record after every handler has
// run. It cannot transform or veto; errors are reported and ignored.
type Outer interface {
	// Priority orders execution; lower runs first.
	Priority() int
	// Handle observes the record.
	Handle(rec *core.Record) error
}

// SortInner orders inner middleware ascending by priority, stably, so
// equal priorities keep registration order. The slice is sorted in
// place and returned.
func SortInner(ms []Inner) []Inner {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Priority() < ms[j].Priority() })
	return ms
}

// SortOuter orders outer middleware ascending by priority, stably.
func SortOuter(ms []Outer) []Outer {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Priority() < ms[j].Priority() })
	return ms
}
