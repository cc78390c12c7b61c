package channel

import "errors"

// Configuration errors.
var (
	// ErrMissingBaseURL indicates HTTPConfig.BaseURL is empty.
	ErrMissingBaseURL = errors.New("channel: base URL is required")

	// ErrMissingEndpoint indicates RPCConfig.Endpoint is empty.
	ErrMissingEndpoint = errors.New("channel: endpoint is required")
)
