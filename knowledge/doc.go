// Package knowledge defines the typed result shapes the broker serves.
//
// Upstream responses are mapped into these types at the channel boundary;
// nothing downstream handles untyped blobs.
package knowledge
