package core

import (
	"strconv"
	"strings"
	"sync"
)

// Level represents the severity of a log record. Levels are plain
// integers so they order and compare naturally against untyped
// constants; the gaps between the built-in values leave room for
// custom levels registered at runtime.
type Level int

const (
	// NotSetLevel admits everything; it is the zero value
	NotSetLevel Level = 0
	// DebugLevel for detailed debugging information
	DebugLevel Level = 10
	// InfoLevel for general informational messages
	InfoLevel Level = 20
	// SuccessLevel for successful completion messages
	SuccessLevel Level = 30
	// NoticeLevel for normal but significant events
	NoticeLevel Level = 40
	// WarnLevel for potentially harmful situations
	WarnLevel Level = 50
	// ErrorLevel for serious problems
	ErrorLevel Level = 60
	// FatalLevel for critical errors
	FatalLevel Level = 70
)

// ANSI color sequences used by the colored formatters.
const (
	colorWhite     = "\033[37m"
	colorMagenta   = "\033[95m"
	colorBlue      = "\033[34m"
	colorGreen     = "\033[32m"
	colorCyan      = "\033[96m"
	colorYellow    = "\033[93m"
	colorLightRed  = "\033[91m"
	colorBrightRed = "\033[31;1m"

	// ColorReset restores the terminal's default attributes.
	ColorReset = "\033[0m"
)

// levelNames and levelColors are closed lookups over the built-in
// values; custom levels registered via RegisterLevel extend them.
var (
	levelMu sync.RWMutex

	levelNames = map[Level]string{
		NotSetLevel:  "NOTSET",
		DebugLevel:   "DEBUG",
		InfoLevel:    "INFO",
		SuccessLevel: "SUCCESS",
		NoticeLevel:  "NOTICE",
		WarnLevel:    "WARNING",
		ErrorLevel:   "ERROR",
		FatalLevel:   "FATAL",
	}

	levelValues = map[string]Level{
		"NOTSET":  NotSetLevel,
		"DEBUG":   DebugLevel,
		"INFO":    InfoLevel,
		"SUCCESS": SuccessLevel,
		"NOTICE":  NoticeLevel,
		"WARNING": WarnLevel,
		"ERROR":   ErrorLevel,
		"FATAL":   FatalLevel,
		// Aliases
		"LOG":      NoticeLevel,
		"WARN":     WarnLevel,
		"CRITICAL": FatalLevel,
	}

	levelColors = map[Level]string{
		NotSetLevel:  colorWhite,
		DebugLevel:   colorMagenta,
		InfoLevel:    colorBlue,
		SuccessLevel: colorGreen,
		NoticeLevel:  colorCyan,
		WarnLevel:    colorYellow,
		ErrorLevel:   colorLightRed,
		FatalLevel:   colorBrightRed,
	}
)

// String returns the registered name of the level, or the numeric
// value for levels that were never registered.
func (l Level) String() string {
	levelMu.RLock()
	name, ok := levelNames[l]
	levelMu.RUnlock()
	if !ok {
		return strconv.Itoa(int(l))
	}
	return name
}

// Color returns the ANSI color sequence bound to the level. Unknown
// levels fall back to the default color.
func (l Level) Color() string {
	levelMu.RLock()
	color, ok := levelColors[l]
	levelMu.RUnlock()
	if !ok {
		return colorWhite
	}
	return color
}

// ParseLevel converts a level name (case-insensitive, aliases
// included) to its Level value.
func ParseLevel(name string) (Level, error) {
	levelMu.RLock()
	level, ok := levelValues[strings.ToUpper(name)]
	levelMu.RUnlock()
	if !ok {
		return NotSetLevel, NewConfigurationError("unknown level name %q", name)
	}
	return level, nil
}

// RegisterLevel binds a new named level to a value and color so it can
// be used like the built-in levels. Registering a name that already
// exists is a configuration error.
func RegisterLevel(name string, value Level, color string) (Level, error) {
	key := strings.ToUpper(name)

	levelMu.Lock()
	defer levelMu.Unlock()

	if _, exists := levelValues[key]; exists {
		return NotSetLevel, NewConfigurationError("level %q is already registered", name)
	}

	levelValues[key] = value
	levelNames[value] = key
	levelColors[value] = color
	return value, nil
}
