// Package middleware defines the two interception points of the
// dispatch pipeline. Inner middleware runs after filters and before
// handlers and may transform or veto records; outer middleware runs
// after handlers and only observes. Both kinds execute in ascending
// priority order.
package middleware
