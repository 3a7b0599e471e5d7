package filter

import (
	"regexp"
	"strings"

	"github.com/turboprint/turboprint/core"
)

// Filter is the admission predicate evaluated over a record before it
// reaches any handler. Filters must treat the record as read-only.
// A returned error counts as a rejection; the dispatcher logs it and
// keeps the log call alive.
type Filter interface {
	// Admit reports whether the record should be processed.
	Admit(rec *core.Record) (bool, error)
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(rec *core.Record) (bool, error)

// Admit implements Filter.
func (f FilterFunc) Admit(rec *core.Record) (bool, error) {
	return f(rec)
}

// Mode selects how a CompositeFilter combines its children.
type Mode string

const (
	// And admits only when every child admits.
	And Mode = "AND"
	// Or admits when at least one child admits.
	Or Mode = "OR"
)

// LevelFilter admits records at or above a minimum level.
type LevelFilter struct {
	Threshold core.Level
}

// NewLevelFilter creates a filter that admits records with
// level >= threshold.
func NewLevelFilter(threshold core.Level) *LevelFilter {
	return &LevelFilter{Threshold: threshold}
}

// Admit implements Filter.
func (f *LevelFilter) Admit(rec *core.Record) (bool, error) {
	return rec.Level >= f.Threshold, nil
}

// RegexFilter admits records whose message matches a pattern. Invert
// negates exactly that result.
type RegexFilter struct {
	pattern *regexp.Regexp
	invert  bool
}

// NewRegexFilter compiles the pattern; an invalid pattern is a
// configuration error.
func NewRegexFilter(pattern string, invert bool) (*RegexFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, core.NewConfigurationError("invalid regex pattern %q: %v", pattern, err)
	}
	return &RegexFilter{pattern: re, invert: invert}, nil
}

// Admit implements Filter.
func (f *RegexFilter) Admit(rec *core.Record) (bool, error) {
	matched := f.pattern.MatchString(rec.Message)
	if f.invert {
		return !matched, nil
	}
	return matched, nil
}

// TimeFilter admits records created inside a time-of-day window. When
// start is later than end the window wraps past midnight, admitting
// times >= start or <= end.
type TimeFilter struct {
	start int // seconds since midnight
	end   int
}

// NewTimeFilter parses "HH:MM" or "HH:MM:SS" bounds.
func NewTimeFilter(start, end string) (*TimeFilter, error) {
	startSec, err := parseClock(start)
	if err != nil {
		return nil, err
	}
	endSec, err := parseClock(end)
	if err != nil {
		return nil, err
	}
	return &TimeFilter{start: startSec, end: endSec}, nil
}

// Admit implements Filter.
func (f *TimeFilter) Admit(rec *core.Record) (bool, error) {
	t := rec.CreatedAt
	sec := t.Hour()*3600 + t.Minute()*60 + t.Second()

	if f.start <= f.end {
		return sec >= f.start && sec <= f.end, nil
	}
	// Window wraps past midnight.
	return sec >= f.start || sec <= f.end, nil
}

func parseClock(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, core.NewConfigurationError("invalid time-of-day %q, want HH:MM or HH:MM:SS", value)
	}

	total := 0
	limits := []int{23, 59, 59}
	multipliers := []int{3600, 60, 1}
	for i, part := range parts {
		n, err := parseClockPart(part)
		if err != nil || n > limits[i] {
			return 0, core.NewConfigurationError("invalid time-of-day %q", value)
		}
		total += n * multipliers[i]
	}
	return total, nil
}

func parseClockPart(part string) (int, error) {
	if len(part) == 0 || len(part) > 2 {
		return 0, core.NewConfigurationError("invalid time component %q", part)
	}
	n := 0
	for _, c := range part {
		if c < '0' || c > '9' {
			return 0, core.NewConfigurationError("invalid time component %q", part)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// ModuleFilter admits records created by a single named logger.
type ModuleFilter struct {
	Name string
}

// NewModuleFilter creates a filter matching the logger name exactly.
func NewModuleFilter(name string) *ModuleFilter {
	return &ModuleFilter{Name: name}
}

// Admit implements Filter.
func (f *ModuleFilter) Admit(rec *core.Record) (bool, error) {
	return rec.LoggerName == f.Name, nil
}

// CompositeFilter combines child filters with AND or OR semantics.
// Children are evaluated in list order with short-circuiting; an empty
// child list admits. Unknown modes reject every record (fail closed).
type CompositeFilter struct {
	Filters []Filter
	Mode    Mode
}

// NewCompositeFilter creates a composite over the given children.
func NewCompositeFilter(mode Mode, filters ...Filter) *CompositeFilter {
	return &CompositeFilter{Filters: filters, Mode: mode}
}

// Admit implements Filter.
func (f *CompositeFilter) Admit(rec *core.Record) (bool, error) {
	switch f.Mode {
	case And:
		for _, child := range f.Filters {
			ok, err := child.Admit(rec)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case Or:
		if len(f.Filters) == 0 {
			return true, nil
		}
		for _, child := range f.Filters {
			ok, err := child.Admit(rec)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, nil
	}
}
