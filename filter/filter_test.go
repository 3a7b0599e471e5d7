package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turboprint/turboprint/core"
)

func record(level core.Level, message string) *core.Record {
	return core.NewRecord("test", "", "", message, level, nil, nil)
}

func TestLevelFilter(t *testing.T) {
	f := NewLevelFilter(core.WarnLevel)

	tests := []struct {
		level core.Level
		want  bool
	}{
		{core.NotSetLevel, false},
		{core.DebugLevel, false},
		{core.InfoLevel, false},
		// Boundary: equal passes.
		{core.WarnLevel, true},
		{core.ErrorLevel, true},
		{core.FatalLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			ok, err := f.Admit(record(tt.level, "msg"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestRegexFilter(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		invert  bool
		message string
		want    bool
	}{
		{"match", "conn.*refused", false, "connection refused", true},
		{"no match", "timeout", false, "connection refused", false},
		{"empty message", "x", false, "", false},
		{"empty message inverted", "x", true, "", true},
		{"multi-line", "(?m)^second", false, "first\nsecond", true},
		{"invert negates match", "refused", true, "connection refused", false},
		{"invert negates miss", "refused", true, "all good", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewRegexFilter(tt.pattern, tt.invert)
			require.NoError(t, err)

			ok, err := f.Admit(record(core.InfoLevel, tt.message))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestRegexFilter_InvalidPattern(t *testing.T) {
	_, err := NewRegexFilter("(", false)
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}

func TestTimeFilter(t *testing.T) {
	at := func(hour, minute int) *core.Record {
		rec := record(core.InfoLevel, "msg")
		rec.CreatedAt = time.Date(2026, 3, 1, hour, minute, 0, 0, time.UTC)
		return rec
	}

	t.Run("plain window", func(t *testing.T) {
		f, err := NewTimeFilter("09:00", "17:00")
		require.NoError(t, err)

		ok, _ := f.Admit(at(12, 30))
		assert.True(t, ok)
		ok, _ = f.Admit(at(9, 0))
		assert.True(t, ok)
		ok, _ = f.Admit(at(17, 0))
		assert.True(t, ok)
		ok, _ = f.Admit(at(8, 59))
		assert.False(t, ok)
		ok, _ = f.Admit(at(20, 0))
		assert.False(t, ok)
	})

	t.Run("window wraps past midnight", func(t *testing.T) {
		f, err := NewTimeFilter("22:00", "06:00")
		require.NoError(t, err)

		ok, _ := f.Admit(at(23, 30))
		assert.True(t, ok)
		ok, _ = f.Admit(at(2, 0))
		assert.True(t, ok)
		ok, _ = f.Admit(at(12, 0))
		assert.False(t, ok)
	})
}

func TestTimeFilter_InvalidBounds(t *testing.T) {
	for _, bad := range []string{"", "9", "25:00", "09:61", "aa:bb", "1:2:3:4"} {
		_, err := NewTimeFilter(bad, "12:00")
		assert.Error(t, err, "start %q", bad)
	}
}

func TestModuleFilter(t *testing.T) {
	f := NewModuleFilter("app.db")

	ok, err := f.Admit(record(core.InfoLevel, "msg"))
	require.NoError(t, err)
	assert.False(t, ok)

	rec := record(core.InfoLevel, "msg")
	rec.LoggerName = "app.db"
	ok, err = f.Admit(rec)
	require.NoError(t, err)
	assert.True(t, ok)
}

type staticFilter struct {
	admit bool
	err   error
}

func (f staticFilter) Admit(*core.Record) (bool, error) { return f.admit, f.err }

func TestCompositeFilter(t *testing.T) {
	admit := staticFilter{admit: true}
	reject := staticFilter{admit: false}
	rec := record(core.InfoLevel, "msg")

	tests := []struct {
		name    string
		mode    Mode
		filters []Filter
		want    bool
	}{
		{"AND empty admits", And, nil, true},
		{"AND single admit", And, []Filter{admit}, true},
		{"AND single reject", And, []Filter{reject}, false},
		{"AND all admit", And, []Filter{admit, admit, admit}, true},
		{"AND one reject", And, []Filter{admit, reject, admit}, false},
		{"OR empty admits", Or, nil, true},
		{"OR single admit", Or, []Filter{admit}, true},
		{"OR single reject", Or, []Filter{reject}, false},
		{"OR one admit", Or, []Filter{reject, reject, admit}, true},
		{"OR all reject", Or, []Filter{reject, reject, reject}, false},
		{"unknown mode fails closed", Mode("XOR"), []Filter{admit}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewCompositeFilter(tt.mode, tt.filters...)
			ok, err := f.Admit(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCompositeFilter_ChildError(t *testing.T) {
	boom := staticFilter{err: errors.New("bad filter")}
	rec := record(core.InfoLevel, "msg")

	ok, err := NewCompositeFilter(And, boom).Admit(rec)
	assert.False(t, ok)
	assert.Error(t, err)

	ok, err = NewCompositeFilter(Or, boom).Admit(rec)
	assert.False(t, ok)
	assert.Error(t, err)
}
