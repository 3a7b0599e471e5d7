package logger

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/filter"
	"github.com/turboprint/turboprint/formatter"
	"github.com/turboprint/turboprint/handler"
	"github.com/turboprint/turboprint/middleware"
)

// Logger is one node of the registry's tree. Records flow through its
// pipeline: level gate, inherited-then-own filters, inner middleware,
// handlers, outer middleware, then propagation to the parent.
//
// The level and the enabled and propagate flags are atomics so the
// fast gate never takes a lock; the collaborator lists are copy-on-
// write under the mutex, so dispatch reads a consistent snapshot.
type Logger struct {
	registry *Registry
	name     string
	parent   *Logger

	level     atomic.Int64
	enabled   atomic.Bool
	propagate atomic.Bool

	mu        sync.RWMutex
	prefix    string
	formatter formatter.Formatter
	fields    []core.Field
	filters   []filter.Filter
	handlers  []handler.Handler
	inner     []middleware.Inner
	outer     []middleware.Outer
	children  []*Logger

	async *asyncQueue
}

func newLogger(registry *Registry, name string, parent *Logger) *Logger {
	l := &Logger{
		registry: registry,
		name:     name,
		parent:   parent,
		prefix:   name,
	}
	l.level.Store(int64(core.NotSetLevel))
	l.enabled.Store(true)
	l.propagate.Store(true)
	return l
}

// Name returns the logger's registered name.
func (l *Logger) Name() string { return l.name }

// Parent returns the parent logger, nil for the root.
func (l *Logger) Parent() *Logger { return l.parent }

// Prefix returns the display prefix (defaults to the name).
func (l *Logger) Prefix() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.prefix
}

// SetPrefix overrides the display prefix.
func (l *Logger) SetPrefix(prefix string) {
	l.mu.Lock()
	l.prefix = prefix
	l.mu.Unlock()
}

// Level returns the logger's threshold level.
func (l *Logger) Level() core.Level { return core.Level(l.level.Load()) }

// SetLevel changes the threshold level.
func (l *Logger) SetLevel(level core.Level) { l.level.Store(int64(level)) }

// Enabled reports whether the logger emits at all.
func (l *Logger) Enabled() bool { return l.enabled.Load() }

// SetEnabled switches the logger on or off.
func (l *Logger) SetEnabled(enabled bool) { l.enabled.Store(enabled) }

// Propagate reports whether records are re-offered to the parent.
func (l *Logger) Propagate() bool { return l.propagate.Load() }

// SetPropagate switches propagation to the parent.
func (l *Logger) SetPropagate(propagate bool) { l.propagate.Store(propagate) }

// Formatter returns the logger's formatter, walking up the tree when
// unset and falling back to the default text formatter at the root.
func (l *Logger) Formatter() formatter.Formatter {
	for node := l; node != nil; node = node.parent {
		node.mu.RLock()
		f := node.formatter
		node.mu.RUnlock()
		if f != nil {
			return f
		}
	}
	return formatter.NewTextFormatter("")
}

// SetFormatter sets the logger's own formatter; nil reverts to
// inheritance.
func (l *Logger) SetFormatter(f formatter.Formatter) {
	l.mu.Lock()
	l.formatter = f
	l.mu.Unlock()
}

// WithContext appends fields stamped onto every record this logger
// emits. Call-site fields win on key collision.
func (l *Logger) WithContext(fields ...core.Field) *Logger {
	l.mu.Lock()
	l.fields = append(append([]core.Field(nil), l.fields...), fields...)
	l.mu.Unlock()
	return l
}

// AddHandler attaches a handler.
func (l *Logger) AddHandler(h handler.Handler) {
	l.mu.Lock()
	l.handlers = append(append([]handler.Handler(nil), l.handlers...), h)
	l.mu.Unlock()
}

// RemoveHandlers detaches every handler without closing them.
func (l *Logger) RemoveHandlers() {
	l.mu.Lock()
	l.handlers = nil
	l.mu.Unlock()
}

// AddFilter attaches a filter to the logger's own chain.
func (l *Logger) AddFilter(f filter.Filter) {
	l.mu.Lock()
	l.filters = append(append([]filter.Filter(nil), l.filters...), f)
	l.mu.Unlock()
}

// AddInner attaches an inner middleware; the list stays sorted by
// ascending priority.
func (l *Logger) AddInner(m middleware.Inner) {
	l.mu.Lock()
	l.inner = middleware.SortInner(append(append([]middleware.Inner(nil), l.inner...), m))
	l.mu.Unlock()
}

// AddOuter attaches an outer middleware; the list stays sorted by
// ascending priority.
func (l *Logger) AddOuter(m middleware.Outer) {
	l.mu.Lock()
	l.outer = middleware.SortOuter(append(append([]middleware.Outer(nil), l.outer...), m))
	l.mu.Unlock()
}

// Handlers returns a snapshot of the attached handlers.
func (l *Logger) Handlers() []handler.Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handlers
}

// Children returns a snapshot of the direct children.
func (l *Logger) Children() []*Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Logger(nil), l.children...)
}

func (l *Logger) addChild(child *Logger) {
	l.mu.Lock()
	l.children = append(l.children, child)
	l.mu.Unlock()
}

// Debug logs at DebugLevel.
func (l *Logger) Debug(msg string, fields ...core.Field) bool {
	return l.Log(core.DebugLevel, msg, fields...)
}

// Info logs at InfoLevel.
func (l *Logger) Info(msg string, fields ...core.Field) bool {
	return l.Log(core.InfoLevel, msg, fields...)
}

// Success logs at SuccessLevel.
func (l *Logger) Success(msg string, fields ...core.Field) bool {
	return l.Log(core.SuccessLevel, msg, fields...)
}

// Notice logs at NoticeLevel.
func (l *Logger) Notice(msg string, fields ...core.Field) bool {
	return l.Log(core.NoticeLevel, msg, fields...)
}

// Warn logs at WarnLevel.
func (l *Logger) Warn(msg string, fields ...core.Field) bool {
	return l.Log(core.WarnLevel, msg, fields...)
}

// Error logs at ErrorLevel.
func (l *Logger) Error(msg string, fields ...core.Field) bool {
	return l.Log(core.ErrorLevel, msg, fields...)
}

// Fatal logs at FatalLevel. The process keeps running; exiting is the
// caller's decision.
func (l *Logger) Fatal(msg string, fields ...core.Field) bool {
	return l.Log(core.FatalLevel, msg, fields...)
}

// Logf logs a formatted message.
func (l *Logger) Logf(level core.Level, format string, args ...interface{}) bool {
	if !l.enabled.Load() || level < core.Level(l.level.Load()) {
		return false
	}
	return l.Log(level, fmt.Sprintf(format, args...))
}

// Log dispatches one record through the pipeline. It reports whether
// the record was admitted; delivery failures of individual sinks do
// not turn an admitted record into a rejection.
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) bool {
	// Fast gate, before any allocation or filter work.
	if !l.enabled.Load() || level < core.Level(l.level.Load()) {
		return false
	}

	l.mu.RLock()
	prefix := l.prefix
	context := l.fields
	async := l.async
	l.mu.RUnlock()

	parentName := ""
	if l.parent != nil {
		parentName = l.parent.name
	}
	rec := core.NewRecord(l.name, prefix, parentName, msg, level, context, fields)

	if !l.admit(rec) {
		return false
	}

	if async != nil {
		return async.enqueue(rec)
	}
	l.deliver(rec)
	return true
}

// admit evaluates the effective filter chain: furthest ancestor first,
// own filters last. A filter error rejects the record and is reported.
func (l *Logger) admit(rec *core.Record) bool {
	var chain []*Logger
	for node := l; node != nil; node = node.parent {
		chain = append(chain, node)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		node := chain[i]
		node.mu.RLock()
		filters := node.filters
		node.mu.RUnlock()
		for _, f := range filters {
			ok, err := f.Admit(rec)
			if err != nil {
				l.registry.reportf("filter error on logger %q: %v", l.name, err)
				l.registry.observeError()
				return false
			}
			if !ok {
				return false
			}
		}
	}
	return true
}

// deliver runs middleware, handlers and propagation for one admitted
// record.
func (l *Logger) deliver(rec *core.Record) {
	start := time.Now()

	l.mu.RLock()
	inner := l.inner
	outer := l.outer
	l.mu.RUnlock()

	for _, m := range inner {
		next, err := m.Handle(rec)
		if err != nil {
			if errors.Is(err, core.ErrRejected) {
				return
			}
			// The chain continues with the pre-failure record.
			l.registry.reportf("middleware error on logger %q: %v", l.name, err)
			continue
		}
		if next != nil {
			rec = next
		}
	}

	l.dispatch(rec)

	for _, m := range outer {
		if err := m.Handle(rec); err != nil {
			l.registry.reportf("middleware error on logger %q: %v", l.name, err)
		}
	}

	if l.propagate.Load() && l.parent != nil {
		l.parent.receive(rec)
	}

	l.registry.observeProcessed(rec.Level, time.Since(start))
}

// dispatch offers the record to every attached handler. A failing
// handler is reported through the remaining handlers as a synthesized
// error record and never re-entered for it.
func (l *Logger) dispatch(rec *core.Record) {
	l.mu.RLock()
	handlers := l.handlers
	l.mu.RUnlock()

	for i, h := range handlers {
		err := h.Handle(l, rec)
		if err == nil {
			continue
		}
		l.registry.observeError()
		l.registry.reportf("handler error on logger %q: %v", l.name, err)

		parentName := ""
		if l.parent != nil {
			parentName = l.parent.name
		}
		errRec := core.NewRecord(l.name, l.Prefix(), parentName,
			fmt.Sprintf("handler failure: %v", err), core.ErrorLevel, nil, nil)
		for j, other := range handlers {
			if j == i {
				continue
			}
			// Best effort; a second failure is only reported.
			if herr := other.Handle(l, errRec); herr != nil {
				l.registry.reportf("handler error on logger %q: %v", l.name, herr)
			}
		}
	}
}

// receive re-offers a propagated record: the record is re-stamped
// with this logger's identity, then its own gate and own filters
// decide, and only its directly-owned handlers run.
func (l *Logger) receive(rec *core.Record) {
	if l.enabled.Load() && rec.Level >= core.Level(l.level.Load()) {
		l.mu.RLock()
		prefix := l.prefix
		l.mu.RUnlock()
		parentName := ""
		if l.parent != nil {
			parentName = l.parent.name
		}
		clone := rec.Restamp(l.name, prefix, parentName)
		if l.admitOwn(clone) {
			l.dispatch(clone)
		}
	}
	if l.propagate.Load() && l.parent != nil {
		l.parent.receive(rec)
	}
}

// admitOwn evaluates only this logger's own filters.
func (l *Logger) admitOwn(rec *core.Record) bool {
	l.mu.RLock()
	filters := l.filters
	l.mu.RUnlock()
	for _, f := range filters {
		ok, err := f.Admit(rec)
		if err != nil {
			l.registry.reportf("filter error on logger %q: %v", l.name, err)
			l.registry.observeError()
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}

// Close drains the async queue when one is running. Handlers stay
// open; they belong to the registry.
func (l *Logger) Close() error {
	l.mu.Lock()
	async := l.async
	l.async = nil
	l.mu.Unlock()

	if async != nil {
		async.close()
	}
	return nil
}
