package middleware

import (
	"github.com/turboprint/turboprint/core"
)

// ContextMiddleware stamps a fixed set of fields onto every record.
// Record fields win on key collision; the middleware supplies
// defaults, it does not override call sites.
type ContextMiddleware struct {
	priority int
	fields   []core.Field
}

// NewContextMiddleware creates a context middleware with the given
// priority and fields.
func NewContextMiddleware(priority int, fields ...core.Field) *ContextMiddleware {
	return &ContextMiddleware{priority: priority, fields: fields}
}

// Priority implements Inner.
func (m *ContextMiddleware) Priority() int { return m.priority }

// Handle merges the middleware's fields under the record's own.
func (m *ContextMiddleware) Handle(rec *core.Record) (*core.Record, error) {
	if len(m.fields) == 0 {
		return rec, nil
	}
	out := *rec
	out.Extra = core.MergeFields(m.fields, rec.Extra)
	return &out, nil
}

// RewriteMiddleware transforms the record's message through a
// user-supplied function: redaction, truncation, tagging.
type RewriteMiddleware struct {
	priority int
	rewrite  func(message string) string
}

// NewRewriteMiddleware creates a rewrite middleware. A nil rewrite
// function passes records through unchanged.
func NewRewriteMiddleware(priority int, rewrite func(string) string) *RewriteMiddleware {
	return &RewriteMiddleware{priority: priority, rewrite: rewrite}
}

// Priority implements Inner.
func (m *RewriteMiddleware) Priority() int { return m.priority }

// Handle returns a copy of the record with the rewritten message.
func (m *RewriteMiddleware) Handle(rec *core.Record) (*core.Record, error) {
	if m.rewrite == nil {
		return rec, nil
	}
	out := *rec
	out.Message = m.rewrite(rec.Message)
	return &out, nil
}
