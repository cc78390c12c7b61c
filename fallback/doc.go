// Package fallback serves deterministic placeholder content when the
// upstream knowledge service cannot be reached.
//
// Every item a Provider returns is marked degraded and attributed to
// the "fallback" source so callers can tell it apart from genuine
// upstream data. The package performs no I/O.
package fallback
