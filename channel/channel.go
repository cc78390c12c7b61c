package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/docbroker/knowledge"
)

// Params are the query parameters of one upstream request.
type Params map[string]string

// Channel is one transport to the upstream knowledge service. The broker
// composes a primary and an optional secondary channel with identical
// contracts.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: Request must honor cancellation/deadlines.
//   - Errors: failures are classified at this boundary: *TransientError for
//     anything worth retrying, *NotFoundError when the upstream answered but
//     has nothing, and plain errors for terminal conditions. An upstream
//     that answers with zero items returns (nil, nil), not an error.
type Channel interface {
	// Name identifies the channel in logs, metrics, and errors.
	Name() string

	// Request performs one upstream call and maps the response into typed
	// items.
	Request(ctx context.Context, path string, params Params) ([]knowledge.Item, error)

	// HealthCheck reports whether the channel currently answers.
	HealthCheck(ctx context.Context) bool
}

// TransientError marks a failure worth retrying: transport trouble,
// timeouts, throttling, or server-side errors.
type TransientError struct {
	Channel string
	Err     error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("channel %s: transient: %v", e.Channel, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// NotFoundError means the upstream was reached and has no data for the
// subject. Not retryable.
type NotFoundError struct {
	Channel string
	Subject string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("channel %s: no data for %q", e.Channel, e.Subject)
}

// IsTransient reports whether the error chain contains a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsNotFound reports whether the error chain contains a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
