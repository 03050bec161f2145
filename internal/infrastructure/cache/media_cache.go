package cache

import (
	"context"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
)

// MediaCache maps a content key (share URL or resolved content ID) to media
// already delivered to the messaging platform.
// Implementations should handle serialization/deserialization transparently.
type MediaCache interface {
	// Get retrieves the payload stored under key.
	// Returns nil, nil if the key is absent, expired or unreadable (cache miss).
	Get(ctx context.Context, key string) (*model.Payload, error)

	// Set stores payload under key, replacing any previous entry.
	// The write is durable once Set returns.
	Set(ctx context.Context, key string, payload model.Payload) error

	// Delete removes the entry stored under key.
	// Returns nil if the key was not in cache.
	Delete(ctx context.Context, key string) error

	// Len counts stored entries, including ones that expired but were not
	// read since.
	Len(ctx context.Context) (int, error)
}
