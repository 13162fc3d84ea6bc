package store

import "context"

// NullBackend is a no-op backend that never stores anything.
// Useful when persistence should be disabled.
type NullBackend struct{}

// NewNullBackend creates a null backend.
func NewNullBackend() *NullBackend {
	return &NullBackend{}
}

// Name returns "none".
func (b *NullBackend) Name() string { return "none" }

// Get always returns a miss.
func (b *NullBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (b *NullBackend) Set(ctx context.Context, key string, data []byte) error {
	return nil
}

// Delete does nothing.
func (b *NullBackend) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (b *NullBackend) Close() error {
	return nil
}

// Ensure NullBackend implements Backend.
var _ Backend = (*NullBackend)(nil)
