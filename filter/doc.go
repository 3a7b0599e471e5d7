// Package filter provides the admission predicates evaluated over a
// record before it reaches any handler: minimum level, regex match,
// time-of-day window, exact logger name, and boolean composites.
package filter
