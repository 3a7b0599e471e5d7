// Package core defines the shared types used across the TurboPrint
// framework.
//
// It provides the Level type for severity gating, the Record type that
// represents a single log event, the Field type for ordered key-value
// extras, and the error taxonomy shared by constructors and the
// dispatch pipeline.
//
// Levels are plain integers with registered names and colors, so they
// compare naturally against untyped constants and can be extended at
// runtime with RegisterLevel. Records are immutable once dispatched:
// handlers read them, and only the dispatcher derives re-stamped
// copies when a record propagates to a parent logger.
package core
