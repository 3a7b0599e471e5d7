package handler

import (
	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/filter"
	"github.com/turboprint/turboprint/formatter"
)

// Owner is the narrow view of the logger that owns a handler. It
// exists so handlers can fall back to the owning logger's formatter
// without depending on the logger package.
type Owner interface {
	// Name returns the owning logger's name.
	Name() string
	// Formatter returns the owning logger's formatter.
	Formatter() formatter.Formatter
}

// Handler consumes a record and performs an effect: write to console,
// append to a rotating file, forward to a remote sink. A handler
// rejects silently when its own filters deny the record; any returned
// error is a delivery failure that the owning logger reports without
// failing the caller's log call.
type Handler interface {
	// Handle processes one record.
	Handle(owner Owner, rec *core.Record) error

	// Close releases the handler's resources. Closing twice is a
	// no-op.
	Close() error
}

// base carries the per-handler filter list and optional formatter
// override shared by every handler implementation.
type base struct {
	formatter formatter.Formatter
	filters   []filter.Filter
}

// admits evaluates the handler's own filters. A filter error counts
// as a rejection.
func (b *base) admits(rec *core.Record) bool {
	for _, f := range b.filters {
		ok, err := f.Admit(rec)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// formatterFor returns the handler's formatter, falling back to the
// owning logger's.
func (b *base) formatterFor(owner Owner) formatter.Formatter {
	if b.formatter != nil {
		return b.formatter
	}
	if owner != nil {
		return owner.Formatter()
	}
	return formatter.NewTextFormatter("")
}
