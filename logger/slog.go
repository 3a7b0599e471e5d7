package logger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/turboprint/turboprint/core"
)

// SlogHandler adapts a Logger to log/slog, so stdlib-structured code
// can emit into the registry tree without changes.
type SlogHandler struct {
	logger *Logger
	attrs  []core.Field
	groups []string
}

var _ slog.Handler = (*SlogHandler)(nil)

// NewSlogHandler wraps the logger for use with slog.New.
func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{logger: l}
}

// Enabled reports whether the mapped level passes the logger's gate.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled() && mapSlogLevel(level) >= h.logger.Level()
}

// Handle converts the slog record and dispatches it.
func (h *SlogHandler) Handle(_ context.Context, rec slog.Record) error {
	fields := make([]core.Field, 0, rec.NumAttrs()+len(h.attrs))
	fields = append(fields, h.attrs...)
	rec.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, h.field(attr))
		return true
	})
	h.logger.Log(mapSlogLevel(rec.Level), rec.Message, fields...)
	return nil
}

// WithAttrs returns a handler carrying the additional attributes.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := *h
	out.attrs = append([]core.Field(nil), h.attrs...)
	for _, attr := range attrs {
		out.attrs = append(out.attrs, h.field(attr))
	}
	return &out
}

// WithGroup returns a handler qualifying attribute keys with the
// group name.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	out := *h
	out.groups = append(append([]string(nil), h.groups...), name)
	return &out
}

func (h *SlogHandler) field(attr slog.Attr) core.Field {
	key := attr.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}
	v := attr.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return core.String(key, v.String())
	case slog.KindInt64:
		return core.Int64(key, v.Int64())
	case slog.KindFloat64:
		return core.Float64(key, v.Float64())
	case slog.KindBool:
		return core.Bool(key, v.Bool())
	case slog.KindTime:
		return core.Time(key, v.Time())
	case slog.KindDuration:
		return core.Duration(key, v.Duration())
	default:
		return core.Any(key, v.Any())
	}
}

// mapSlogLevel projects slog's four levels onto the record levels.
func mapSlogLevel(level slog.Level) core.Level {
	switch {
	case level < slog.LevelInfo:
		return core.DebugLevel
	case level < slog.LevelWarn:
		return core.InfoLevel
	case level < slog.LevelError:
		return core.WarnLevel
	default:
		return core.ErrorLevel
	}
}
