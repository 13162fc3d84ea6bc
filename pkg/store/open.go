package store

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemaflow/pkg/theme"
)

// Open builds a Store from configuration. The file backend uses cfg.Dir, or
// the XDG state directory when it is empty. Network backends are pinged
// within cfg.Timeout.
func Open(ctx context.Context, cfg theme.Store, logger *log.Logger) (*Store, error) {
	codec, err := CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(backend, codec, logger), nil
}

func openBackend(ctx context.Context, cfg theme.Store) (Backend, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	switch cfg.Backend {
	case "", theme.BackendFile:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = theme.StateDir(); err != nil {
				return nil, fmt.Errorf("resolve state dir: %w", err)
			}
		}
		return NewFileBackend(dir)
	case theme.BackendMemory:
		return NewMemoryBackend(), nil
	case theme.BackendNone:
		return NewNullBackend(), nil
	case theme.BackendRedis:
		return DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	case theme.BackendMongo:
		return DialMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
