package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/handler"
)

// RootName is the name of the registry's root logger.
const RootName = "root"

// Registry owns the logger tree. Names are unique case-insensitively;
// loggers live until the registry is closed. The zero value is not
// usable; construct with NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	root    *Logger
	closed  bool

	errOutput io.Writer
	observer  Observer
}

// RegistryConfig holds construction options for a registry.
type RegistryConfig struct {
	// ErrOutput receives internal fault reports: filter errors,
	// handler failures, middleware errors (default: os.Stderr).
	ErrOutput io.Writer
	// Observer receives pipeline telemetry; nil disables it.
	Observer Observer
	// RootHandler seeds the root logger (default: a console handler
	// on stdout).
	RootHandler handler.Handler
}

// NewRegistry creates a registry with a root logger named "root"
// carrying one console handler.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.ErrOutput == nil {
		cfg.ErrOutput = os.Stderr
	}
	if cfg.RootHandler == nil {
		cfg.RootHandler = handler.NewConsoleHandler(handler.ConsoleConfig{})
	}

	r := &Registry{
		loggers:   make(map[string]*Logger),
		errOutput: cfg.ErrOutput,
		observer:  cfg.Observer,
	}
	r.root = newLogger(r, RootName, nil)
	r.root.SetLevel(core.InfoLevel)
	r.root.AddHandler(cfg.RootHandler)
	r.loggers[RootName] = r.root
	return r
}

// Root returns the root logger.
func (r *Registry) Root() *Logger {
	return r.root
}

// Get returns the logger registered under name, case-insensitively.
func (r *Registry) Get(name string) (*Logger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loggers[strings.ToLower(name)]
	return l, ok
}

// Create registers a logger under a fresh name as a child of the root
// (or of the dotted ancestor for hierarchical names). A name already
// taken, in any case variant, is a configuration error.
func (r *Registry) Create(name string) (*Logger, error) {
	if name == "" {
		return nil, core.NewConfigurationError("logger name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, core.NewConfigurationError("registry is closed")
	}
	if _, taken := r.loggers[strings.ToLower(name)]; taken {
		return nil, core.NewConfigurationError("logger %q is already registered", name)
	}
	return r.materialize(name), nil
}

// GetOrCreate returns the logger registered under the dotted name,
// creating it and every missing ancestor on the way. "a.b.c" hangs
// under "a.b" under "a" under the root.
func (r *Registry) GetOrCreate(name string) *Logger {
	if name == "" {
		return r.root
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loggers[strings.ToLower(name)]; ok {
		return l
	}
	return r.materialize(name)
}

// materialize creates the logger and its missing ancestors. Caller
// must hold the lock.
func (r *Registry) materialize(name string) *Logger {
	parent := r.root
	segments := strings.Split(name, ".")
	for i := range segments {
		ancestor := strings.Join(segments[:i+1], ".")
		key := strings.ToLower(ancestor)
		if l, ok := r.loggers[key]; ok {
			parent = l
			continue
		}
		l := newLogger(r, ancestor, parent)
		r.loggers[key] = l
		parent.addChild(l)
		parent = l
	}
	return parent
}

// Loggers returns a snapshot of every registered logger.
func (r *Registry) Loggers() []*Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Logger, 0, len(r.loggers))
	for _, l := range r.loggers {
		out = append(out, l)
	}
	return out
}

// Close drains async loggers and closes every attached handler
// exactly once, even when shared between loggers. Closing an already
// closed registry is a no-op.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	loggers := make([]*Logger, 0, len(r.loggers))
	for _, l := range r.loggers {
		loggers = append(loggers, l)
	}
	r.mu.Unlock()

	var firstErr error
	seen := make(map[handler.Handler]struct{})
	for _, l := range loggers {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		for _, h := range l.Handlers() {
			if _, done := seen[h]; done {
				continue
			}
			seen[h] = struct{}{}
			if err := h.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// reportf writes an internal fault report. Faults in the pipeline are
// reported, never raised to the caller of a log method.
func (r *Registry) reportf(format string, args ...interface{}) {
	fmt.Fprintf(r.errOutput, "turboprint: "+format+"\n", args...)
}

func (r *Registry) observeError() {
	if r.observer != nil {
		r.observer.ErrorOccurred()
	}
}

func (r *Registry) observeProcessed(level core.Level, d time.Duration) {
	if r.observer != nil {
		r.observer.RecordProcessed(level, d)
	}
}
