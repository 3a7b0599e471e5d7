package logger

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/turboprint/turboprint/core"
)

// Exception logs an error with its type and stack trace captured into
// the record's extras, at ErrorLevel.
func (l *Logger) Exception(msg string, err error, fields ...core.Field) bool {
	return l.ExceptionAt(core.ErrorLevel, msg, err, fields...)
}

// ExceptionAt is Exception with an explicit level.
func (l *Logger) ExceptionAt(level core.Level, msg string, err error, fields ...core.Field) bool {
	if !l.enabled.Load() || level < core.Level(l.level.Load()) {
		return false
	}

	extras := make([]core.Field, 0, len(fields)+3)
	extras = append(extras, fields...)
	if err != nil {
		extras = append(extras,
			core.Err(err),
			core.String("error_type", fmt.Sprintf("%T", err)),
		)
	}
	extras = append(extras, core.String("stack", string(debug.Stack())))
	return l.Log(level, msg, extras...)
}

// Scope logs the start of a named unit of work, runs fn, logs its
// failure when it returns an error, and logs the end with the elapsed
// time on every exit path, a panic inside fn included. The function's
// error is returned unchanged.
func (l *Logger) Scope(msg string, level core.Level, fn func() error) error {
	start := time.Now()
	l.Log(level, msg+": started")
	defer func() {
		l.Log(level, msg+": finished", core.Duration("elapsed", time.Since(start)))
	}()

	err := fn()
	if err != nil {
		l.Error(msg+": failed", core.Err(err))
	}
	return err
}
