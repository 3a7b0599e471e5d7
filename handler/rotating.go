package handler

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/filter"
	"github.com/turboprint/turboprint/formatter"
)

// Filename template tokens recognized by the rotating file handlers.
const (
	// IndexToken is the rotation-index placeholder. It is required
	// in every RotatingFileHandler template.
	IndexToken = "{index}"
	// DateToken expands to the current date (2006-01-02).
	DateToken = "{date}"
	// TimeToken expands to the current wall-clock time (15-04-05).
	TimeToken = "{time}"
)

const (
	// DefaultMaxProbes bounds the candidate-file search.
	DefaultMaxProbes = 1000
	// writeRetries bounds re-attempts of a failed append before the
	// record is dropped and the failure surfaced.
	writeRetries = 2
)

// RotatingFileHandler appends formatted records to files under a
// directory, advancing to a fresh file index whenever the current
// file reaches its size or line bound.
//
// The size/line check, the candidate search and the append are one
// critical section under a single per-instance mutex, so concurrent
// writers sharing one handler serialize and two handler instances
// never contend.
type RotatingFileHandler struct {
	base

	dir       string
	template  string
	maxSize   int64
	maxLines  int64
	maxProbes int

	mu sync.Mutex
	// files caches open handles keyed by resolved path.
	files       map[string]*os.File
	current     *os.File
	currentPath string
	index       int
	size        int64
	lines       int64
	closed      bool
}

// RotatingFileConfig holds configuration for the rotating file
// handler.
type RotatingFileConfig struct {
	// Directory is created if absent; all files live under it.
	Directory string
	// FilenameTemplate must contain {index}; {date} and {time} are
	// optional.
	FilenameTemplate string
	// MaxSize is the byte bound per file; a file at or above it is
	// ineligible. Required.
	MaxSize int64
	// MaxLines optionally bounds the line count per file (0 = no
	// line bound).
	MaxLines int64
	// MaxProbes bounds the candidate search (default:
	// DefaultMaxProbes).
	MaxProbes int
	// Formatter overrides the owning logger's formatter when set.
	Formatter formatter.Formatter
	// Filters are the handler's own admission predicates.
	Filters []filter.Filter
}

// NewRotatingFileHandler validates the configuration and adopts the
// first eligible file. A template without {index} and a non-positive
// MaxSize are configuration errors, rejected before any file I/O.
func NewRotatingFileHandler(cfg RotatingFileConfig) (*RotatingFileHandler, error) {
	if cfg.Directory == "" {
		return nil, core.NewConfigurationError("rotating file handler requires a directory")
	}
	if !strings.Contains(cfg.FilenameTemplate, IndexToken) {
		return nil, core.NewConfigurationError(
			"filename template %q must contain the %s placeholder", cfg.FilenameTemplate, IndexToken)
	}
	if cfg.MaxSize <= 0 {
		return nil, core.NewConfigurationError("max size must be positive, got %d", cfg.MaxSize)
	}
	if cfg.MaxLines < 0 {
		return nil, core.NewConfigurationError("max lines must not be negative, got %d", cfg.MaxLines)
	}
	if cfg.MaxProbes <= 0 {
		cfg.MaxProbes = DefaultMaxProbes
	}

	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, err
	}

	h := &RotatingFileHandler{
		base:      base{formatter: cfg.Formatter, filters: cfg.Filters},
		dir:       cfg.Directory,
		template:  cfg.FilenameTemplate,
		maxSize:   cfg.MaxSize,
		maxLines:  cfg.MaxLines,
		maxProbes: cfg.MaxProbes,
		files:     make(map[string]*os.File),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.adoptEligible(1); err != nil {
		return nil, err
	}
	return h, nil
}

// Handle appends the formatted record to the current file, rotating
// first when the file is over its size or line bound.
func (h *RotatingFileHandler) Handle(owner Owner, rec *core.Record) error {
	if !h.admits(rec) {
		return nil
	}

	line, err := h.formatterFor(owner).Format(rec)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return os.ErrClosed
	}

	if h.overLimit() {
		if err := h.adoptEligible(h.index + 1); err != nil {
			return err
		}
	}

	n, err := h.append(line)
	h.size += int64(n)
	if n > 0 {
		h.lines++
	}
	return err
}

// overLimit reports whether the current file has reached its size or
// line bound. Caller must hold the lock.
func (h *RotatingFileHandler) overLimit() bool {
	if h.size >= h.maxSize {
		return true
	}
	return h.maxLines > 0 && h.lines >= h.maxLines
}

// append writes line + newline, retrying a bounded number of times so
// a failing disk can never hang the caller. Caller must hold the lock.
func (h *RotatingFileHandler) append(line string) (int, error) {
	data := make([]byte, 0, len(line)+1)
	data = append(data, line...)
	data = append(data, '\n')

	var err error
	for attempt := 0; attempt <= writeRetries; attempt++ {
		var n int
		n, err = h.current.Write(data)
		if err == nil {
			return n, nil
		}
		if n > 0 {
			// Partial write landed; do not retry into a torn line.
			return n, err
		}
	}
	return 0, fmt.Errorf("writing %s: %w", h.currentPath, err)
}

// adoptEligible probes candidate files starting at the given index
// and adopts the first one below both bounds, creating absent files
// on the way. The search is bounded by maxProbes. Caller must hold
// the lock.
func (h *RotatingFileHandler) adoptEligible(from int) error {
	for probe := 0; probe < h.maxProbes; probe++ {
		index := from + probe
		path := h.resolvePath(index)

		file, err := h.open(path)
		if err != nil {
			return err
		}

		size, lines, err := h.measure(path, file)
		if err != nil {
			return err
		}

		if size < h.maxSize && (h.maxLines == 0 || lines < h.maxLines) {
			h.current = file
			h.currentPath = path
			h.index = index
			h.size = size
			h.lines = lines
			return nil
		}
	}
	return fmt.Errorf("no eligible file within %d probes of template %q", h.maxProbes, h.template)
}

// open returns the cached handle for path, creating the file when
// absent. Caller must hold the lock.
func (h *RotatingFileHandler) open(path string) (*os.File, error) {
	if file, ok := h.files[path]; ok {
		return file, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	h.files[path] = file
	return file, nil
}

// measure returns the file's current size and, when a line bound is
// configured, its line count.
func (h *RotatingFileHandler) measure(path string, file *os.File) (int64, int64, error) {
	info, err := file.Stat()
	if err != nil {
		return 0, 0, err
	}
	size := info.Size()

	if h.maxLines == 0 || size == 0 {
		return size, 0, nil
	}
	lines, err := countLines(path)
	if err != nil {
		return 0, 0, err
	}
	return size, lines, nil
}

// resolvePath expands the template for one rotation index.
func (h *RotatingFileHandler) resolvePath(index int) string {
	now := time.Now()
	name := strings.NewReplacer(
		IndexToken, strconv.Itoa(index),
		DateToken, now.Format("2006-01-02"),
		TimeToken, now.Format("15-04-05"),
	).Replace(h.template)
	return filepath.Join(h.dir, name)
}

// CurrentPath returns the path of the file currently being written.
func (h *RotatingFileHandler) CurrentPath() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentPath
}

// Index returns the current rotation index.
func (h *RotatingFileHandler) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

// Close flushes and closes every cached file exactly once; closing
// again is a no-op.
func (h *RotatingFileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	var firstErr error
	for path, file := range h.files {
		if err := file.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(h.files, path)
	}
	h.current = nil
	return firstErr
}

// countLines counts newline-terminated lines in the file at path.
func countLines(path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var count int64
	buf := make([]byte, 32*1024)
	for {
		n, err := file.Read(buf)
		count += int64(bytes.Count(buf[:n], []byte{'\n'}))
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
	}
}
