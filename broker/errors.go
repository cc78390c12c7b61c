package broker

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnhealthy indicates the circuit for a channel is open
	// and the query was refused without an upstream call.
	ErrUpstreamUnhealthy = errors.New("broker: upstream unhealthy")

	// ErrNoResults indicates the upstream answered but had nothing for
	// the subject.
	ErrNoResults = errors.New("broker: no results")

	// ErrMissingPrimary indicates the broker was constructed without a
	// primary channel.
	ErrMissingPrimary = errors.New("broker: primary channel required")
)

// ValidationError marks a malformed request. It is never retried and
// never answered with fallback content.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("broker: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a request-validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// QueryError wraps an exhausted upstream failure with the query context
// a caller needs to act on it.
type QueryError struct {
	Channel string
	Kind    string
	Subject string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("broker: query %s/%s via %s: %v", e.Kind, e.Subject, e.Channel, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
