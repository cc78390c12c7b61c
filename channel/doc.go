// Package channel provides the transports to the upstream knowledge
// service.
//
// Two implementations share one contract: a REST transport and a JSON-RPC
// transport. Error classification and the mapping from loose wire shapes
// into typed knowledge items both live at this boundary.
package channel
