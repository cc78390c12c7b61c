package resolver

import "errors"

var (
	// ErrEmptyTopic indicates the topic was empty after normalization.
	ErrEmptyTopic = errors.New("resolver: empty topic")

	// ErrUnresolved indicates no identifier could be found for the topic.
	ErrUnresolved = errors.New("resolver: topic not resolved")
)
