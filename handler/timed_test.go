package handler

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/formatter"
)

func TestTimedRotatingFileHandlerRejectsBadConfig(t *testing.T) {
	_, err := NewTimedRotatingFileHandler(TimedRotatingFileConfig{})
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))

	_, err = NewTimedRotatingFileHandler(TimedRotatingFileConfig{
		Directory: t.TempDir(),
		When:      "fortnight",
	})
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}

func TestTimedRotatingFileHandlerWritesCurrentGeneration(t *testing.T) {
	dir := t.TempDir()
	h, err := NewTimedRotatingFileHandler(TimedRotatingFileConfig{
		Directory: dir,
		When:      RotateDays,
		Formatter: formatter.NewTextFormatter("{message}"),
	})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Handle(nil, record("first", core.InfoLevel)))
	require.NoError(t, h.Handle(nil, record("second", core.InfoLevel)))

	data, err := os.ReadFile(h.CurrentPath())
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestTimedRotatingFileHandlerRotatesPastDeadline(t *testing.T) {
	dir := t.TempDir()
	h, err := NewTimedRotatingFileHandler(TimedRotatingFileConfig{
		Directory:        dir,
		FilenameTemplate: "gen_{date}_{time}.log",
		When:             RotateSeconds,
		Interval:         1,
		Formatter:        formatter.NewTextFormatter("{message}"),
	})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Handle(nil, record("before", core.InfoLevel)))
	first := h.CurrentPath()

	// Force the deadline into the past instead of sleeping a second.
	h.mu.Lock()
	h.deadline = time.Now().Add(-time.Millisecond)
	h.mu.Unlock()

	require.NoError(t, h.Handle(nil, record("after", core.InfoLevel)))

	if h.CurrentPath() == first {
		// Same-second rotation reopens the same generation name; the
		// record still lands.
		data, err := os.ReadFile(first)
		require.NoError(t, err)
		assert.Contains(t, string(data), "after")
		return
	}
	data, err := os.ReadFile(h.CurrentPath())
	require.NoError(t, err)
	assert.Equal(t, "after\n", string(data))
}

func TestTimedRotatingFileHandlerRetentionDeletes(t *testing.T) {
	dir := t.TempDir()
	h, err := NewTimedRotatingFileHandler(TimedRotatingFileConfig{
		Directory:        dir,
		FilenameTemplate: "gen_{date}_{time}.log",
		When:             RotateDays,
		BackupCount:      2,
		Formatter:        formatter.NewTextFormatter("{message}"),
	})
	require.NoError(t, err)
	defer h.Close()

	// Seed stale generations matching the template.
	for i, name := range []string{"gen_2026-01-01_00-00-00.log", "gen_2026-01-02_00-00-00.log", "gen_2026-01-03_00-00-00.log"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))
		stamp := time.Now().Add(time.Duration(i-10) * time.Hour)
		require.NoError(t, os.Chtimes(path, stamp, stamp))
	}

	h.mu.Lock()
	h.applyRetention()
	h.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(dir, "gen_*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestTimedRotatingFileHandlerRetentionCompresses(t *testing.T) {
	dir := t.TempDir()
	var errOut bytes.Buffer
	h, err := NewTimedRotatingFileHandler(TimedRotatingFileConfig{
		Directory:        dir,
		FilenameTemplate: "gen_{date}_{time}.log",
		When:             RotateDays,
		BackupCount:      1,
		Compressor:       NewGzipCompressor(),
		ErrOutput:        &errOut,
		Formatter:        formatter.NewTextFormatter("{message}"),
	})
	require.NoError(t, err)
	defer h.Close()

	stale := filepath.Join(dir, "gen_2026-01-01_00-00-00.log")
	require.NoError(t, os.WriteFile(stale, []byte("old\n"), 0644))
	stamp := time.Now().Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(stale, stamp, stamp))

	h.mu.Lock()
	h.applyRetention()
	h.mu.Unlock()

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "retired source removed")
	_, err = os.Stat(stale + ".gz")
	assert.NoError(t, err, "archive created")
	assert.Empty(t, errOut.String())
}

func TestTimedRotatingFileHandlerCloseIdempotent(t *testing.T) {
	h, err := NewTimedRotatingFileHandler(TimedRotatingFileConfig{Directory: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.ErrorIs(t, h.Handle(nil, record("late", core.InfoLevel)), os.ErrClosed)
}
