// Package observe provides the broker's observability primitives.
//
// It is a pure instrumentation library: no business logic, no transport, no
// I/O beyond exporter setup. The broker receives a Logger and Metrics as
// collaborators; nothing in the request path writes telemetry directly.
package observe
