package store

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/errors"
	"github.com/matzehuels/schemaflow/pkg/observability"
)

// Store loads and saves layout records through a backend.
type Store struct {
	backend Backend
	codec   Codec
	logger  *log.Logger
}

// New creates a Store. A nil codec selects JSON; a nil logger discards diagnostics.
func New(backend Backend, codec Codec, logger *log.Logger) *Store {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Store{backend: backend, codec: codec, logger: logger}
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend { return s.backend }

// Load returns the record for id. It never fails: missing records yield an
// empty record silently, unreadable or corrupt ones yield an empty record and
// a warning. Entries that can never be valid (wrong identity kind, non-finite
// coordinates) are dropped.
func (s *Store) Load(ctx context.Context, id FileID) diagram.LayoutRecord {
	rec, err := s.load(ctx, id)
	observability.Store().OnLoad(ctx, s.backend.Name(), len(rec), err)
	if err != nil {
		s.warn("layout unreadable, using automatic layout", "file", id, "err", err)
	}
	return rec
}

func (s *Store) load(ctx context.Context, id FileID) (diagram.LayoutRecord, error) {
	data, ok, err := s.backend.Get(ctx, id.String())
	if err != nil {
		return diagram.LayoutRecord{}, errors.Wrap(errors.ErrCodeStorageRead, err, "read layout")
	}
	if !ok {
		return diagram.LayoutRecord{}, nil
	}
	rec, err := s.codec.Unmarshal(data)
	if err != nil {
		return diagram.LayoutRecord{}, errors.Wrap(errors.ErrCodeStorageRead, err, "decode layout")
	}
	for key, p := range rec {
		if !diagram.Persistable(key) || !p.Finite() {
			delete(rec, key)
		}
	}
	return rec, nil
}

// Save overwrites the record for id. Transient backend failures are retried
// with backoff; the final error carries ErrCodeStorageWrite.
func (s *Store) Save(ctx context.Context, id FileID, rec diagram.LayoutRecord) error {
	start := time.Now()
	err := s.save(ctx, id, rec)
	observability.Store().OnSave(ctx, s.backend.Name(), len(rec), time.Since(start), err)
	return err
}

func (s *Store) save(ctx context.Context, id FileID, rec diagram.LayoutRecord) error {
	data, err := s.codec.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWrite, err, "encode layout")
	}
	err = RetryWithBackoff(ctx, func() error {
		return s.backend.Set(ctx, id.String(), data)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWrite, err, "write layout")
	}
	return nil
}

// Delete removes the record for id.
func (s *Store) Delete(ctx context.Context, id FileID) error {
	err := RetryWithBackoff(ctx, func() error {
		return s.backend.Delete(ctx, id.String())
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWrite, err, "delete layout")
	}
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) warn(msg string, keyvals ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, keyvals...)
	}
}

// =============================================================================
// Pruning
// =============================================================================

// Prune returns a copy of rec holding only identities present in live.
// Prune(Prune(r, L), L) equals Prune(r, L).
func Prune(rec diagram.LayoutRecord, live map[string]bool) diagram.LayoutRecord {
	out := make(diagram.LayoutRecord, len(rec))
	for id, p := range rec {
		if live[id] {
			out[id] = p
		}
	}
	return out
}

// Changed reports whether pruning removed anything. Pruning only removes
// keys, so comparing key counts is sufficient.
func Changed(before, after diagram.LayoutRecord) bool {
	return len(before) != len(after)
}
