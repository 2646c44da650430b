package storage

import (
	"context"
	"io"
)

type PublishResult struct {
	Key      string
	Location string
	ETag     string
}

// Publisher writes rendered artifacts (bracket JSON) where static clients can fetch them.
type Publisher interface {
	Publish(ctx context.Context, key string, contentType string, reader io.Reader) (*PublishResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
