package formatter

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/turboprint/turboprint/core"
)

// DefaultTemplate is the template used when none is configured.
const DefaultTemplate = "[{time}] {prefix} | {level_name}[{level_value}]: {message}"

// DefaultTimeFormat is the timestamp layout used when none is
// configured.
const DefaultTimeFormat = "02/01/2006 15:04:05"

// TextFormatter renders records against a token template.
//
// Recognized tokens: {time}, {name}, {prefix} (prefix falling back to
// the logger name), {level_name}, {level_value}, {message}, {elapsed}
// (time since the formatter was created), plus every extra field
// spliced in by key. Reserved tokens take precedence over extra keys
// of the same name; tokens that resolve to nothing are left literal.
type TextFormatter struct {
	// Template is the token template (default: DefaultTemplate).
	Template string
	// TimeFormat is the layout for the {time} token (default:
	// DefaultTimeFormat).
	TimeFormat string

	started time.Time
}

// NewTextFormatter creates a text formatter for the given template;
// an empty template selects DefaultTemplate.
func NewTextFormatter(template string) *TextFormatter {
	if template == "" {
		template = DefaultTemplate
	}
	return &TextFormatter{
		Template:   template,
		TimeFormat: DefaultTimeFormat,
		started:    time.Now(),
	}
}

// Format renders the record against the template.
func (f *TextFormatter) Format(rec *core.Record) (string, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.expand(rec, buf)
	return buf.String(), nil
}

// FormatColored renders the record wrapped in the level's color.
func (f *TextFormatter) FormatColored(rec *core.Record) (string, error) {
	plain, err := f.Format(rec)
	if err != nil {
		return "", err
	}
	return colored(rec, plain), nil
}

// expand writes the template with all tokens substituted into buf.
func (f *TextFormatter) expand(rec *core.Record, buf *bytes.Buffer) {
	template := f.Template
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			buf.WriteString(template)
			return
		}
		closing := strings.IndexByte(template[open:], '}')
		if closing < 0 {
			buf.WriteString(template)
			return
		}
		closing += open

		buf.WriteString(template[:open])
		token := template[open+1 : closing]
		if value, ok := f.resolve(rec, token); ok {
			buf.WriteString(value)
		} else {
			// Unknown token: keep it literal.
			buf.WriteString(template[open : closing+1])
		}
		template = template[closing+1:]
	}
}

// resolve maps a token to its value. Reserved tokens win over extra
// keys of the same name.
func (f *TextFormatter) resolve(rec *core.Record, token string) (string, bool) {
	switch token {
	case "time":
		layout := f.TimeFormat
		if layout == "" {
			layout = DefaultTimeFormat
		}
		return rec.CreatedAt.Format(layout), true
	case "name":
		return rec.LoggerName, true
	case "prefix":
		return rec.PrefixOrName(), true
	case "level_name":
		return rec.Level.String(), true
	case "level_value":
		return strconv.Itoa(int(rec.Level)), true
	case "message":
		return rec.Message, true
	case "elapsed":
		return rec.CreatedAt.Sub(f.started).String(), true
	}

	if field, ok := rec.Lookup(token); ok {
		return field.StringValue(), true
	}
	return "", false
}
