package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/turboprint/turboprint/core"
)

// The structured formatters are alternate pure projections of the same
// record field set: time, name, prefix, level name, level value,
// message, extras. They are interchangeable with the text and JSON
// formatters anywhere a Formatter is accepted.

// XMLFormatter renders records as single <record> elements.
type XMLFormatter struct{}

// NewXMLFormatter creates an XML formatter.
func NewXMLFormatter() *XMLFormatter { return &XMLFormatter{} }

// Format renders the record as XML.
func (f *XMLFormatter) Format(rec *core.Record) (string, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	buf.WriteString(`<record level="`)
	xml.EscapeText(buf, []byte(rec.Level.String()))
	buf.WriteString(`" value="`)
	buf.WriteString(strconv.Itoa(int(rec.Level)))
	buf.WriteString(`">`)

	writeXMLElement(buf, "time", rec.CreatedAt.Format(time.RFC3339))
	writeXMLElement(buf, "name", rec.LoggerName)
	writeXMLElement(buf, "prefix", rec.PrefixOrName())
	writeXMLElement(buf, "message", rec.Message)
	for _, field := range rec.Extra {
		buf.WriteString(`<extra key="`)
		xml.EscapeText(buf, []byte(field.Key))
		buf.WriteString(`">`)
		xml.EscapeText(buf, []byte(field.StringValue()))
		buf.WriteString("</extra>")
	}

	buf.WriteString("</record>")
	return buf.String(), nil
}

// FormatColored renders the XML wrapped in the level's color.
func (f *XMLFormatter) FormatColored(rec *core.Record) (string, error) {
	plain, err := f.Format(rec)
	if err != nil {
		return "", err
	}
	return colored(rec, plain), nil
}

func writeXMLElement(buf *bytes.Buffer, name, value string) {
	buf.WriteString("<" + name + ">")
	xml.EscapeText(buf, []byte(value))
	buf.WriteString("</" + name + ">")
}

// YAMLFormatter renders records as YAML documents.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a YAML formatter.
func NewYAMLFormatter() *YAMLFormatter { return &YAMLFormatter{} }

type yamlRecord struct {
	Time       string                 `yaml:"time"`
	Name       string                 `yaml:"name"`
	Prefix     string                 `yaml:"prefix"`
	LevelName  string                 `yaml:"level"`
	LevelValue int                    `yaml:"level_value"`
	Message    string                 `yaml:"message"`
	Extra      map[string]interface{} `yaml:"extra,omitempty"`
}

// Format renders the record as YAML.
func (f *YAMLFormatter) Format(rec *core.Record) (string, error) {
	out := yamlRecord{
		Time:       rec.CreatedAt.Format(time.RFC3339),
		Name:       rec.LoggerName,
		Prefix:     rec.PrefixOrName(),
		LevelName:  rec.Level.String(),
		LevelValue: int(rec.Level),
		Message:    rec.Message,
	}
	if len(rec.Extra) > 0 {
		out.Extra = make(map[string]interface{}, len(rec.Extra))
		for _, field := range rec.Extra {
			out.Extra[field.Key] = field.StringValue()
		}
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// FormatColored renders the YAML wrapped in the level's color.
func (f *YAMLFormatter) FormatColored(rec *core.Record) (string, error) {
	plain, err := f.Format(rec)
	if err != nil {
		return "", err
	}
	return colored(rec, plain), nil
}

// CSVFormatter renders records as CSV rows: time, name, prefix, level
// name, level value, message, then one key=value column per extra.
type CSVFormatter struct{}

// NewCSVFormatter creates a CSV formatter.
func NewCSVFormatter() *CSVFormatter { return &CSVFormatter{} }

// Format renders the record as a CSV row.
func (f *CSVFormatter) Format(rec *core.Record) (string, error) {
	row := []string{
		rec.CreatedAt.Format(time.RFC3339),
		rec.LoggerName,
		rec.PrefixOrName(),
		rec.Level.String(),
		strconv.Itoa(int(rec.Level)),
		rec.Message,
	}
	for _, field := range rec.Extra {
		row = append(row, field.Key+"="+field.StringValue())
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(row); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// FormatColored renders the CSV row wrapped in the level's color.
func (f *CSVFormatter) FormatColored(rec *core.Record) (string, error) {
	plain, err := f.Format(rec)
	if err != nil {
		return "", err
	}
	return colored(rec, plain), nil
}

// HTMLFormatter renders records as <div> blocks with a per-level CSS
// class.
type HTMLFormatter struct{}

// NewHTMLFormatter creates an HTML formatter.
func NewHTMLFormatter() *HTMLFormatter { return &HTMLFormatter{} }

// Format renders the record as HTML.
func (f *HTMLFormatter) Format(rec *core.Record) (string, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	levelName := rec.Level.String()
	buf.WriteString(`<div class="log log-`)
	buf.WriteString(strings.ToLower(levelName))
	buf.WriteString(`"><span class="time">`)
	buf.WriteString(htmlEscape(rec.CreatedAt.Format(time.RFC3339)))
	buf.WriteString(`</span> <span class="prefix">`)
	buf.WriteString(htmlEscape(rec.PrefixOrName()))
	buf.WriteString(`</span> <span class="level">`)
	buf.WriteString(htmlEscape(levelName))
	buf.WriteString(`</span> <span class="message">`)
	buf.WriteString(htmlEscape(rec.Message))
	buf.WriteString(`</span>`)
	for _, field := range rec.Extra {
		buf.WriteString(` <span class="extra" data-key="`)
		buf.WriteString(htmlEscape(field.Key))
		buf.WriteString(`">`)
		buf.WriteString(htmlEscape(field.StringValue()))
		buf.WriteString(`</span>`)
	}
	buf.WriteString(`</div>`)
	return buf.String(), nil
}

// FormatColored renders the HTML wrapped in the level's color.
func (f *HTMLFormatter) FormatColored(rec *core.Record) (string, error) {
	plain, err := f.Format(rec)
	if err != nil {
		return "", err
	}
	return colored(rec, plain), nil
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func htmlEscape(s string) string {
	return htmlEscaper.Replace(s)
}

// MarkdownFormatter renders records as Markdown list items.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a Markdown formatter.
func NewMarkdownFormatter() *MarkdownFormatter { return &MarkdownFormatter{} }

// Format renders the record as Markdown.
func (f *MarkdownFormatter) Format(rec *core.Record) (string, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	buf.WriteString("- **")
	buf.WriteString(rec.Level.String())
	buf.WriteString("** `")
	buf.WriteString(rec.CreatedAt.Format(time.RFC3339))
	buf.WriteString("` _")
	buf.WriteString(rec.PrefixOrName())
	buf.WriteString("_: ")
	buf.WriteString(rec.Message)
	for _, field := range rec.Extra {
		buf.WriteString(" `")
		buf.WriteString(field.Key)
		buf.WriteString("=")
		buf.WriteString(field.StringValue())
		buf.WriteString("`")
	}
	return buf.String(), nil
}

// FormatColored renders the Markdown wrapped in the level's color.
func (f *MarkdownFormatter) FormatColored(rec *core.Record) (string, error) {
	plain, err := f.Format(rec)
	if err != nil {
		return "", err
	}
	return colored(rec, plain), nil
}
