package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/formatter"
	"github.com/turboprint/turboprint/handler"
	"github.com/turboprint/turboprint/logger"
)

func newRegistry(t *testing.T) *logger.Registry {
	t.Helper()
	r := logger.NewRegistry(logger.RegistryConfig{
		ErrOutput:   &bytes.Buffer{},
		RootHandler: handler.NewConsoleHandler(handler.ConsoleConfig{Writer: io.Discard}),
	})
	t.Cleanup(func() { r.Close() })
	return r
}

func TestBuildConfiguresLogger(t *testing.T) {
	r := newRegistry(t)
	dir := t.TempDir()

	err := Build(r, map[string]interface{}{
		"name":   "app.db",
		"prefix": "DB",
		"level":  "WARNING",
		"formatter": map[string]interface{}{
			"type": "json",
		},
		"handlers": []interface{}{
			map[string]interface{}{
				"type":           "file",
				"file_directory": dir,
				"file_name":      "db_{index}.log",
				"max_size":       2048,
			},
		},
		"filters": []interface{}{
			map[string]interface{}{
				"type":    "regex",
				"pattern": "slow query",
			},
		},
	})
	require.NoError(t, err)

	l, ok := r.Get("app.db")
	require.True(t, ok)
	assert.Equal(t, "DB", l.Prefix())
	assert.Equal(t, core.WarnLevel, l.Level())
	assert.IsType(t, &formatter.JSONFormatter{}, l.Formatter())
	require.Len(t, l.Handlers(), 1)
	assert.IsType(t, &handler.RotatingFileHandler{}, l.Handlers()[0])

	// The filter chain is live: non-matching warnings are rejected.
	assert.False(t, l.Warn("fast query"))
	assert.True(t, l.Warn("slow query on users"))
}

func TestBuildLevelAliases(t *testing.T) {
	r := newRegistry(t)

	require.NoError(t, Build(r, map[string]interface{}{"name": "a", "level": "CRITICAL"}))
	l, _ := r.Get("a")
	assert.Equal(t, core.FatalLevel, l.Level())

	require.NoError(t, Build(r, map[string]interface{}{"name": "b", "level": "LOG"}))
	l, _ = r.Get("b")
	assert.Equal(t, core.NoticeLevel, l.Level())
}

func TestBuildUnknownTypesFail(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]interface{}
	}{
		{"formatter", map[string]interface{}{
			"name":      "x",
			"formatter": map[string]interface{}{"type": "protobuf"},
		}},
		{"handler", map[string]interface{}{
			"name":     "x",
			"handlers": []interface{}{map[string]interface{}{"type": "carrier-pigeon"}},
		}},
		{"filter", map[string]interface{}{
			"name":    "x",
			"filters": []interface{}{map[string]interface{}{"type": "vibes"}},
		}},
		{"level", map[string]interface{}{"name": "x", "level": "LOUD"}},
		{"composite mode", map[string]interface{}{
			"name":    "x",
			"filters": []interface{}{map[string]interface{}{"type": "composite", "mode": "XOR"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Build(newRegistry(t), tt.m)
			require.Error(t, err)
			assert.True(t, core.IsConfigurationError(err))
		})
	}
}

func TestBuildEmptyNameTargetsRoot(t *testing.T) {
	r := newRegistry(t)

	require.NoError(t, Build(r, map[string]interface{}{"level": "ERROR"}))
	assert.Equal(t, core.ErrorLevel, r.Root().Level())
}

func TestBuildCompositeFilter(t *testing.T) {
	r := newRegistry(t)

	err := Build(r, map[string]interface{}{
		"name": "combo",
		"filters": []interface{}{
			map[string]interface{}{
				"type": "composite",
				"mode": "OR",
				"filters": []interface{}{
					map[string]interface{}{"type": "level", "level": "ERROR"},
					map[string]interface{}{"type": "regex", "pattern": "^audit:"},
				},
			},
		},
	})
	require.NoError(t, err)

	l, _ := r.Get("combo")
	l.SetPropagate(false)
	assert.False(t, l.Info("routine"))
	assert.True(t, l.Info("audit: login"))
	assert.True(t, l.Error("anything"))
}

func TestLoadYAMLFile(t *testing.T) {
	r := newRegistry(t)
	dir := t.TempDir()

	yamlBody := `
loggers:
  - name: app
    level: DEBUG
    formatter:
      type: default
      template: "{level_name}: {message}"
  - name: app.timed
    level: INFO
    handlers:
      - type: timed_rotating_file
        file_directory: ` + filepath.ToSlash(dir) + `
        file_name: "gen_{date}_{time}.log"
        when: d
        interval: 1
        backup_count: 3
`
	path := filepath.Join(t.TempDir(), "logging.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0644))

	require.NoError(t, Load(r, path))

	app, ok := r.Get("app")
	require.True(t, ok)
	assert.Equal(t, core.DebugLevel, app.Level())

	timed, ok := r.Get("app.timed")
	require.True(t, ok)
	require.Len(t, timed.Handlers(), 1)
	assert.IsType(t, &handler.TimedRotatingFileHandler{}, timed.Handlers()[0])
}

func TestLoadMissingFile(t *testing.T) {
	err := Load(newRegistry(t), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}
