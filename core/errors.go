package core

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an invalid construction request: a
// duplicate logger name, a filename template without its rotation
// token, an unknown handler or filter type. It is returned
// synchronously from the failing constructor and is fatal to that
// call only.
type ConfigurationError struct {
	msg string
}

// NewConfigurationError builds a ConfigurationError from a format
// string.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.msg
}

// IsConfigurationError reports whether err is (or wraps) a
// ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ErrRejected is returned by middleware to short-circuit a dispatch
// without treating it as a failure.
var ErrRejected = errors.New("record rejected")
