// Package tracing wraps OpenTelemetry so that token verification, workflow
// transitions and notification delivery can be traced without the rest of
// the code base importing the SDK directly. Spans are no-ops until Init or
// InitWithExporter installs a provider.
package tracing
