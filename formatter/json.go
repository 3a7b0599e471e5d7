package formatter

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/turboprint/turboprint/core"
)

// JSONFormatter renders records as single-line JSON objects.
type JSONFormatter struct {
	// TimeFormat is the layout for the time field (default:
	// time.RFC3339Nano).
	TimeFormat string
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{TimeFormat: time.RFC3339Nano}
}

type jsonRecord struct {
	Time       string                 `json:"time"`
	Name       string                 `json:"name"`
	Prefix     string                 `json:"prefix"`
	LevelName  string                 `json:"level"`
	LevelValue int                    `json:"level_value"`
	Message    string                 `json:"message"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// Format renders the record as JSON.
func (f *JSONFormatter) Format(rec *core.Record) (string, error) {
	layout := f.TimeFormat
	if layout == "" {
		layout = time.RFC3339Nano
	}

	out := jsonRecord{
		Time:       rec.CreatedAt.Format(layout),
		Name:       rec.LoggerName,
		Prefix:     rec.PrefixOrName(),
		LevelName:  rec.Level.String(),
		LevelValue: int(rec.Level),
		Message:    rec.Message,
	}
	if len(rec.Extra) > 0 {
		out.Extra = make(map[string]interface{}, len(rec.Extra))
		for _, field := range rec.Extra {
			out.Extra[field.Key] = field.Value()
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatColored renders the JSON wrapped in the level's color.
func (f *JSONFormatter) FormatColored(rec *core.Record) (string, error) {
	plain, err := f.Format(rec)
	if err != nil {
		return "", err
	}
	return colored(rec, plain), nil
}
