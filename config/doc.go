// Package config builds loggers, handlers, filters and formatters
// from declarative YAML files or plain maps. Parsing is delegated to
// koanf; every unknown type value is rejected as a configuration
// error before any logger is touched by it.
package config
