package handler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/filter"
	"github.com/turboprint/turboprint/formatter"
)

// RotationUnit selects the interval unit of a time-based rotation.
type RotationUnit string

const (
	// RotateSeconds rotates every Interval seconds.
	RotateSeconds RotationUnit = "s"
	// RotateMinutes rotates every Interval minutes.
	RotateMinutes RotationUnit = "m"
	// RotateHours rotates every Interval hours.
	RotateHours RotationUnit = "h"
	// RotateDays rotates every Interval days.
	RotateDays RotationUnit = "d"
	// RotateMidnight rotates at the next midnight, then every
	// Interval days.
	RotateMidnight RotationUnit = "midnight"
)

// TimedRotatingFileHandler appends formatted records to a file and
// rotates on a wall-clock deadline, independent of size. Retired
// files beyond the retention count are deleted, or handed to the
// Compressor collaborator when one is configured.
type TimedRotatingFileHandler struct {
	base

	dir         string
	template    string
	unit        RotationUnit
	interval    int
	backupCount int
	compressor  Compressor
	errOutput   io.Writer

	mu          sync.Mutex
	current     *os.File
	currentPath string
	deadline    time.Time
	closed      bool
}

// TimedRotatingFileConfig holds configuration for the timed rotating
// file handler.
type TimedRotatingFileConfig struct {
	// Directory is created if absent.
	Directory string
	// FilenameTemplate names each generation; {date} and {time}
	// tokens keep generations distinct (default:
	// "log_{date}_{time}").
	FilenameTemplate string
	// When selects the rotation unit (default: RotateDays).
	When RotationUnit
	// Interval is the rotation interval in units of When (default 1).
	Interval int
	// BackupCount bounds retained generations (default 5).
	BackupCount int
	// Compressor, when set, archives retired generations instead of
	// deleting them.
	Compressor Compressor
	// ErrOutput receives non-fatal retention failures (default:
	// os.Stderr).
	ErrOutput io.Writer
	// Formatter overrides the owning logger's formatter when set.
	Formatter formatter.Formatter
	// Filters are the handler's own admission predicates.
	Filters []filter.Filter
}

// NewTimedRotatingFileHandler validates the configuration and opens
// the first generation.
func NewTimedRotatingFileHandler(cfg TimedRotatingFileConfig) (*TimedRotatingFileHandler, error) {
	if cfg.Directory == "" {
		return nil, core.NewConfigurationError("timed rotating file handler requires a directory")
	}
	if cfg.FilenameTemplate == "" {
		cfg.FilenameTemplate = "log_{date}_{time}"
	}
	switch cfg.When {
	case "":
		cfg.When = RotateDays
	case RotateSeconds, RotateMinutes, RotateHours, RotateDays, RotateMidnight:
	default:
		return nil, core.NewConfigurationError("unknown rotation unit %q", cfg.When)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 1
	}
	if cfg.BackupCount <= 0 {
		cfg.BackupCount = 5
	}
	if cfg.ErrOutput == nil {
		cfg.ErrOutput = os.Stderr
	}

	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, err
	}

	h := &TimedRotatingFileHandler{
		base:        base{formatter: cfg.Formatter, filters: cfg.Filters},
		dir:         cfg.Directory,
		template:    cfg.FilenameTemplate,
		unit:        cfg.When,
		interval:    cfg.Interval,
		backupCount: cfg.BackupCount,
		compressor:  cfg.Compressor,
		errOutput:   cfg.ErrOutput,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.openGeneration(time.Now()); err != nil {
		return nil, err
	}
	return h, nil
}

// Handle appends the formatted record, rotating first when the
// deadline has passed.
func (h *TimedRotatingFileHandler) Handle(owner Owner, rec *core.Record) error {
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

	now := time.Now()
	if !now.Before(h.deadline) {
		if err := h.rotate(now); err != nil {
			return err
		}
	}

	_, err = h.current.WriteString(line + "\n")
	return err
}

// rotate closes the current generation, applies retention, and opens
// the next one. Caller must hold the lock.
func (h *TimedRotatingFileHandler) rotate(now time.Time) error {
	if h.current != nil {
		if err := h.current.Sync(); err != nil {
			return err
		}
		if err := h.current.Close(); err != nil {
			return err
		}
		h.current = nil
	}

	h.applyRetention()
	return h.openGeneration(now)
}

// openGeneration opens a fresh generation file and computes the next
// rotation deadline. Caller must hold the lock.
func (h *TimedRotatingFileHandler) openGeneration(now time.Time) error {
	path := filepath.Join(h.dir, strings.NewReplacer(
		DateToken, now.Format("2006-01-02"),
		TimeToken, now.Format("15-04-05"),
	).Replace(h.template))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	h.current = file
	h.currentPath = path
	h.deadline = h.nextDeadline(now)
	return nil
}

// nextDeadline computes the first rotation instant after now.
func (h *TimedRotatingFileHandler) nextDeadline(now time.Time) time.Time {
	switch h.unit {
	case RotateSeconds:
		return now.Add(time.Duration(h.interval) * time.Second)
	case RotateMinutes:
		return now.Add(time.Duration(h.interval) * time.Minute)
	case RotateHours:
		return now.Add(time.Duration(h.interval) * time.Hour)
	case RotateDays:
		return now.AddDate(0, 0, h.interval)
	case RotateMidnight:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
		return midnight.AddDate(0, 0, h.interval-1)
	default:
		return now.AddDate(0, 0, 1)
	}
}

// applyRetention deletes or compresses generations beyond the backup
// count, oldest first. Failures are reported to ErrOutput and never
// abort the rotation. Caller must hold the lock.
func (h *TimedRotatingFileHandler) applyRetention() {
	pattern := filepath.Join(h.dir, strings.NewReplacer(
		DateToken, "*",
		TimeToken, "*",
	).Replace(h.template))

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}

	sort.Slice(matches, func(i, j int) bool {
		infoI, errI := os.Stat(matches[i])
		infoJ, errJ := os.Stat(matches[j])
		if errI != nil || errJ != nil {
			return false
		}
		return infoI.ModTime().Before(infoJ.ModTime())
	})

	if len(matches) <= h.backupCount {
		return
	}
	for _, retired := range matches[:len(matches)-h.backupCount] {
		if h.compressor != nil {
			if _, err := h.compressor.Compress(retired); err != nil {
				fmt.Fprintf(h.errOutput, "turboprint: compressing %s: %v\n", retired, err)
			}
			continue
		}
		if err := os.Remove(retired); err != nil {
			fmt.Fprintf(h.errOutput, "turboprint: removing %s: %v\n", retired, err)
		}
	}
}

// CurrentPath returns the path of the generation currently being
// written.
func (h *TimedRotatingFileHandler) CurrentPath() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentPath
}

// Close flushes and closes the current generation exactly once.
func (h *TimedRotatingFileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.current == nil {
		return nil
	}
	if err := h.current.Sync(); err != nil {
		h.current.Close()
		return err
	}
	return h.current.Close()
}
