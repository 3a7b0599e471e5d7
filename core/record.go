package core

import (
	"time"
)

// Record represents one emitted log event. A record is created fresh
// for every log call and is shared read-only across the fan-out to
// multiple handlers; only the dispatcher derives copies of it (via
// Restamp) when propagating up the logger tree.
type Record struct {
	// Message is the raw log message.
	Message string
	// Level is the record's severity.
	Level Level
	// LoggerName is the name of the logger that created the record,
	// re-stamped on propagation.
	LoggerName string
	// Prefix is the logger's display prefix; defaults to LoggerName.
	Prefix string
	// CreatedAt is the record's creation timestamp.
	CreatedAt time.Time
	// ParentName is the name of the creating logger's parent, if any.
	ParentName string
	// Extra carries the open extension bag: per-logger context merged
	// with call-site fields, call-site winning on key collision.
	Extra []Field
}

// NewRecord builds a record for a single log call. Context fields come
// first and call-site fields after them; MergeFields resolves key
// collisions in favor of the call site.
func NewRecord(name, prefix, parentName, message string, level Level, context, fields []Field) *Record {
	if prefix == "" {
		prefix = name
	}
	return &Record{
		Message:    message,
		Level:      level,
		LoggerName: name,
		Prefix:     prefix,
		CreatedAt:  time.Now(),
		ParentName: parentName,
		Extra:      MergeFields(context, fields),
	}
}

// Restamp returns a copy of the record carrying the given logger
// identity. The message, level, timestamp and extras are shared with
// the original; handlers never mutate them.
func (r *Record) Restamp(name, prefix, parentName string) *Record {
	clone := *r
	clone.LoggerName = name
	clone.Prefix = prefix
	if clone.Prefix == "" {
		clone.Prefix = name
	}
	clone.ParentName = parentName
	return &clone
}

// PrefixOrName returns the record's prefix, falling back to the
// logger name when the prefix is empty.
func (r *Record) PrefixOrName() string {
	if r.Prefix != "" {
		return r.Prefix
	}
	return r.LoggerName
}

// Lookup returns the last field with the given key; later fields win
// so call-site values shadow context values.
func (r *Record) Lookup(key string) (Field, bool) {
	for i := len(r.Extra) - 1; i >= 0; i-- {
		if r.Extra[i].Key == key {
			return r.Extra[i], true
		}
	}
	return Field{}, false
}

// MergeFields appends overrides to base, replacing base entries whose
// key appears in overrides so that each key occurs at most once and
// the override's value wins.
func MergeFields(base, overrides []Field) []Field {
	if len(base) == 0 {
		merged := make([]Field, len(overrides))
		copy(merged, overrides)
		return merged
	}

	merged := make([]Field, 0, len(base)+len(overrides))
	for _, f := range base {
		if containsKey(overrides, f.Key) {
			continue
		}
		merged = append(merged, f)
	}
	return append(merged, overrides...)
}

func containsKey(fields []Field, key string) bool {
	for _, f := range fields {
		if f.Key == key {
			return true
		}
	}
	return false
}
