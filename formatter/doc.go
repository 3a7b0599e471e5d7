// Package formatter renders records to text.
//
// Every formatter produces two projections of the same record: a
// plain one and a decorated one that wraps the plain text in the
// record level's ANSI color. TextFormatter binds a token template
// against the record; the structured formatters (JSON, XML, YAML,
// CSV, HTML, Markdown) project the identical field set into their
// respective syntaxes, so they are interchangeable anywhere a
// Formatter is accepted.
package formatter
