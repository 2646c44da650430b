// Package stream is the push channel the engine consumes: topics delivering one
// JSON-encoded live event per message.
package stream

import (
	"context"
	"errors"
)

// ErrClosed is returned by Subscribe once the channel is closed.
var ErrClosed = errors.New("push channel closed")

// Subscription delivers message bodies of one topic until Close.
// After Close returns no further message is delivered.
type Subscription interface {
	Topic() string
	Messages() <-chan []byte
	Close() error
}

// Channel opens topic subscriptions. Subscribe blocks until the transport is connected.
type Channel interface {
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}
