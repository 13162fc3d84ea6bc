package server

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/schemaflow/pkg/errors"
	"github.com/matzehuels/schemaflow/pkg/session"
)

// DefaultIdleTTL is how long a session may go without requests before
// Cleanup closes it.
const DefaultIdleTTL = 30 * time.Minute

// Registry tracks the open sessions of a server by id.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	sess     *session.Session
	lastUsed time.Time
}

// NewRegistry returns an empty registry. A ttl <= 0 uses DefaultIdleTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Registry{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Add registers sess and returns its new id.
func (r *Registry) Add(sess *session.Session) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.entries[id] = &entry{sess: sess, lastUsed: r.now()}
	r.mu.Unlock()
	return id
}

// Get returns the session for id and marks it as used.
func (r *Registry) Get(id string) (*session.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid session id %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "session %s not found", id)
	}
	e.lastUsed = r.now()
	return e.sess, nil
}

// Remove closes the session for id and forgets it.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "session %s not found", id)
	}
	return e.sess.Close()
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Cleanup closes sessions idle for longer than the TTL and returns how many
// were closed.
func (r *Registry) Cleanup() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var idle []*session.Session
	for id, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e.sess)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		_ = s.Close()
	}
	return len(idle)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (r *Registry) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Cleanup()
		}
	}
}

// CloseAll closes every session.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.sess.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
