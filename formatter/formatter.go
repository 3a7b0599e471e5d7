package formatter

import (
	"bytes"
	"sync"

	"github.com/turboprint/turboprint/core"
)

// Formatter renders a record to text. Every formatter produces two
// projections of the same record: a plain one for files and remote
// sinks, and a decorated one that wraps the plain text in the level's
// color sequence for console output.
type Formatter interface {
	// Format renders the record as plain text, without a trailing
	// newline.
	Format(rec *core.Record) (string, error)

	// FormatColored renders the record wrapped in the level's color
	// prefix and a reset suffix.
	FormatColored(rec *core.Record) (string, error)
}

// colored is the shared decoration rule: color prefix + plain + reset.
func colored(rec *core.Record, plain string) string {
	return rec.Level.Color() + plain + core.ColorReset
}

// bufferPool is a pool of bytes.Buffer to reduce allocations
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}
