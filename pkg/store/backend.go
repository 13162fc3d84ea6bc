package store

import "context"

// Backend moves opaque record bytes. Implementations must be safe for
// concurrent use. Get reports a missing key as (nil, false, nil).
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
