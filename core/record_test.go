package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	rec := NewRecord("app.db", "DB", "app", "connected", InfoLevel, nil, nil)

	assert.Equal(t, "connected", rec.Message)
	assert.Equal(t, InfoLevel, rec.Level)
	assert.Equal(t, "app.db", rec.LoggerName)
	assert.Equal(t, "DB", rec.Prefix)
	assert.Equal(t, "app", rec.ParentName)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Empty(t, rec.Extra)
}

func TestNewRecord_PrefixDefaultsToName(t *testing.T) {
	rec := NewRecord("app", "", "", "msg", InfoLevel, nil, nil)
	assert.Equal(t, "app", rec.Prefix)
	assert.Equal(t, "app", rec.PrefixOrName())
}

func TestNewRecord_MergesContextAndCallFields(t *testing.T) {
	context := []Field{String("request_id", "ctx"), String("user", "alice")}
	fields := []Field{String("request_id", "call"), Int("attempt", 2)}

	rec := NewRecord("app", "", "", "msg", InfoLevel, context, fields)

	require.Len(t, rec.Extra, 3)
	got, ok := rec.Lookup("request_id")
	require.True(t, ok)
	// Call-site fields win on key collision.
	assert.Equal(t, "call", got.Str)

	got, ok = rec.Lookup("user")
	require.True(t, ok)
	assert.Equal(t, "alice", got.Str)
}

func TestRecord_Restamp(t *testing.T) {
	rec := NewRecord("app.db", "DB", "app", "msg", WarnLevel, nil, []Field{Int("n", 1)})
	clone := rec.Restamp("app", "APP", "root")

	assert.Equal(t, "app", clone.LoggerName)
	assert.Equal(t, "APP", clone.Prefix)
	assert.Equal(t, "root", clone.ParentName)

	// Message, level, timestamp and extras carry over unchanged.
	assert.Equal(t, rec.Message, clone.Message)
	assert.Equal(t, rec.Level, clone.Level)
	assert.Equal(t, rec.CreatedAt, clone.CreatedAt)
	assert.Equal(t, rec.Extra, clone.Extra)

	// The original is untouched.
	assert.Equal(t, "app.db", rec.LoggerName)
}

func TestRecord_Restamp_EmptyPrefixFallsBack(t *testing.T) {
	rec := NewRecord("app.db", "DB", "app", "msg", InfoLevel, nil, nil)
	clone := rec.Restamp("parent", "", "")
	assert.Equal(t, "parent", clone.Prefix)
}

func TestMergeFields(t *testing.T) {
	tests := []struct {
		name      string
		base      []Field
		overrides []Field
		wantKeys  []string
	}{
		{"both empty", nil, nil, nil},
		{"base only", []Field{String("a", "1")}, nil, []string{"a"}},
		{"overrides only", nil, []Field{String("b", "2")}, []string{"b"}},
		{
			"disjoint",
			[]Field{String("a", "1")},
			[]Field{String("b", "2")},
			[]string{"a", "b"},
		},
		{
			"collision drops base entry",
			[]Field{String("a", "1"), String("b", "2")},
			[]Field{String("a", "3")},
			[]string{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeFields(tt.base, tt.overrides)
			keys := make([]string, 0, len(merged))
			for _, f := range merged {
				keys = append(keys, f.Key)
			}
			if len(tt.wantKeys) == 0 {
				assert.Empty(t, keys)
				return
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestField_StringValue(t *testing.T) {
	assert.Equal(t, "text", String("k", "text").StringValue())
	assert.Equal(t, "42", Int("k", 42).StringValue())
	assert.Equal(t, "true", Bool("k", true).StringValue())
	assert.Equal(t, "3.5", Float64("k", 3.5).StringValue())
	assert.Equal(t, "error", Err(assert.AnError).Key)
	assert.Equal(t, assert.AnError.Error(), Err(assert.AnError).StringValue())
}
