package handler

import (
	"io"
	"os"
	"sync"

	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/filter"
	"github.com/turboprint/turboprint/formatter"
)

// ConsoleHandler writes the decorated rendering of each record to an
// io.Writer, one line per record.
type ConsoleHandler struct {
	base
	writer io.Writer
	mu     sync.Mutex
	closed bool
}

// ConsoleConfig holds configuration for the console handler.
type ConsoleConfig struct {
	// Writer to write to (default: os.Stdout).
	Writer io.Writer
	// Formatter overrides the owning logger's formatter when set.
	Formatter formatter.Formatter
	// Filters are the handler's own admission predicates.
	Filters []filter.Filter
}

// NewConsoleHandler creates a new console handler.
func NewConsoleHandler(cfg ConsoleConfig) *ConsoleHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	return &ConsoleHandler{
		base:   base{formatter: cfg.Formatter, filters: cfg.Filters},
		writer: cfg.Writer,
	}
}

// Handle writes the colored rendering of the record.
func (h *ConsoleHandler) Handle(owner Owner, rec *core.Record) error {
	if !h.admits(rec) {
		return nil
	}

	line, err := h.formatterFor(owner).FormatColored(rec)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return os.ErrClosed
	}
	_, err = io.WriteString(h.writer, line+"\n")
	return err
}

// Close marks the handler closed. The underlying writer is not owned
// by the handler and stays open.
func (h *ConsoleHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
