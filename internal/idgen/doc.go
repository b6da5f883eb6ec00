// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Notification messages carry these identifiers for log correlation; callers
// should treat them as opaque strings.
package idgen
