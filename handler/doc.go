// Package handler provides the output sinks of the logging pipeline:
// console, size- and line-bounded rotating files, wall-clock rotating
// files with retention and compression, and circuit-broken remote
// forwarding. Handlers carry their own filter chains and may override
// the owning logger's formatter.
package handler
