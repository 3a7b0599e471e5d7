package logger

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/formatter"
	"github.com/turboprint/turboprint/handler"
	"github.com/turboprint/turboprint/middleware"
)

func TestEndToEndRotatedFilesAccountForEveryByte(t *testing.T) {
	r, _ := quietRegistry(t)
	dir := t.TempDir()

	fh, err := handler.NewRotatingFileHandler(handler.RotatingFileConfig{
		Directory:        dir,
		FilenameTemplate: "app_{index}.log",
		MaxSize:          1024,
		Formatter:        formatter.NewTextFormatter("{message}"),
	})
	require.NoError(t, err)

	l := r.GetOrCreate("app")
	l.SetPropagate(false)
	l.AddHandler(fh)

	msg := strings.Repeat("b", 29)
	for i := 0; i < 50; i++ {
		require.True(t, l.Info(msg))
	}
	require.NoError(t, fh.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var total int64
	for _, entry := range entries {
		info, err := entry.Info()
		require.NoError(t, err)
		total += info.Size()
		assert.LessOrEqual(t, info.Size(), int64(1024+30), entry.Name())
	}
	assert.Equal(t, int64(50*30), total)
}

func TestEndToEndMiddlewarePipeline(t *testing.T) {
	r, _ := quietRegistry(t)
	sink := &memoryHandler{}

	var alerts []string
	l := r.GetOrCreate("pipeline")
	l.SetPropagate(false)
	l.AddHandler(sink)
	l.AddInner(middleware.NewContextMiddleware(10, core.String("service", "api")))
	l.AddInner(middleware.NewRewriteMiddleware(20, func(msg string) string {
		return strings.ReplaceAll(msg, "token=abc123", "token=***")
	}))
	l.AddOuter(middleware.NewErrorAlertMiddleware(0, core.ErrorLevel, func(rec *core.Record) {
		alerts = append(alerts, rec.Message)
	}))

	require.True(t, l.Info("auth with token=abc123"))
	require.True(t, l.Error("upstream gone"))

	records := sink.all()
	require.Len(t, records, 2)
	assert.Equal(t, "auth with token=***", records[0].Message)
	service, ok := records[0].Lookup("service")
	require.True(t, ok)
	assert.Equal(t, "api", service.StringValue())

	assert.Equal(t, []string{"upstream gone"}, alerts)
}

func TestEndToEndRateLimitRejects(t *testing.T) {
	r, _ := quietRegistry(t)
	sink := &memoryHandler{}
	l := r.GetOrCreate("limited")
	l.SetPropagate(false)
	l.AddHandler(sink)
	l.AddInner(middleware.NewRateLimitMiddleware(0, 1, 3))

	delivered := 0
	for i := 0; i < 10; i++ {
		if l.Info("burst") {
			delivered++
		}
	}
	// Admission happens before the rate limit, so the return value
	// stays true; the sink shows what actually got through.
	assert.Equal(t, 10, delivered)
	assert.Len(t, sink.all(), 3)
}
