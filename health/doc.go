// Package health exposes the broker's operational state to hosting
// processes.
//
// A Checker reports one component's status: ChannelChecker probes an
// upstream channel's health endpoint, CircuitChecker projects a circuit
// breaker's phase without touching the upstream. Aggregator runs all
// registered checks concurrently and reports the worst status, and the
// HTTP handlers expose liveness, readiness, and a detailed JSON report.
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewChannelChecker(primary))
//	agg.Register(health.NewCircuitChecker("primary-circuit", breaker))
//	health.RegisterHandlers(mux, agg)
package health
