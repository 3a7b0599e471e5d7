// Package logger holds the registry and the logger tree. A Registry
// owns uniquely named loggers rooted at "root"; each logger runs the
// dispatch pipeline over its filters, middleware and handlers, then
// propagates to its parent. Loggers dispatch synchronously by default
// and can switch to a bounded async queue with per-level overflow
// policies.
package logger
