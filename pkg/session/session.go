// Package session holds the state of one interactive diagram preview and
// applies the events the host editor sends to it.
//
// A Session owns the current schema model, the rendered graph, and the
// persisted layout record for one schema file. Events are:
//
//   - OnSchemaChange: the schema text was re-parsed
//   - OnSchemaError: the schema text failed to parse
//   - OnDragComplete: the user dropped a table or note
//   - OnGroupDragComplete: the user dropped a group container
//   - ResetLayout: the user asked to discard manual positions
//
// Every event returns the updated graph. Layout writes are coalesced: a
// burst of drags produces a single write of the final record once the
// configured window (100ms by default) passes without further changes.
//
// # Ordering
//
// Each event derives the next State with a pure transition (ApplyDrag,
// ApplyGroupDrag, ApplySchema). The updated record is handed to the
// coalescer first, then Settle recomputes group rectangles from the moved
// tables. Group rectangles are never persisted. On a schema change any pending write
// is replaced by the pruned record so removed identities are never written
// back.
//
// # Concurrency
//
// Methods are meant to be called from one event loop. A mutex guards the
// state because coalesced writes run on timer goroutines.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemaflow/pkg/builder"
	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/errors"
	"github.com/matzehuels/schemaflow/pkg/observability"
	"github.com/matzehuels/schemaflow/pkg/schema"
	"github.com/matzehuels/schemaflow/pkg/store"
	"github.com/matzehuels/schemaflow/pkg/theme"
)

// saveTimeout bounds a single coalesced write, including retries.
const saveTimeout = 30 * time.Second

// Options configures a Session.
type Options struct {
	// Config is activated with theme.Init for the lifetime of the session.
	// Nil uses theme.Current.
	Config *theme.Config

	// Store persists layouts. Nil disables persistence.
	Store *store.Store

	// Logger receives diagnostics. Nil uses log.Default.
	Logger *log.Logger
}

// Session is one open diagram preview.
type Session struct {
	mu sync.Mutex

	path    string
	file    store.FileID
	builder *builder.Builder
	store   *store.Store
	persist *Coalescer
	logger  *log.Logger

	model    *schema.Model
	state    State
	warnings []error
	closed   bool
}

// Open starts a session for the schema file at path. It loads the saved
// layout, builds the initial graph, and prunes stale layout entries.
func Open(ctx context.Context, path string, model *schema.Model, opts Options) (*Session, error) {
	if err := errors.ValidateSchemaPath(path); err != nil {
		return nil, err
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = theme.Current()
	}
	if err := theme.Init(cfg); err != nil {
		return nil, err
	}
	cfg = theme.Current()

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	st := opts.Store
	if st == nil {
		st = store.New(store.NewNullBackend(), nil, logger)
	}

	s := &Session{
		path:    path,
		file:    store.Identity(path),
		builder: builder.New(cfg, logger),
		store:   st,
		logger:  logger.With("file", path),
	}
	s.persist = NewCoalescer(cfg.Session.Coalesce, s.save)

	s.state.Record = st.Load(ctx, s.file)
	s.applySchema(ctx, model)
	s.logger.Debug("session opened", "saved", len(s.state.Record), "nodes", len(s.state.Graph.Nodes))
	return s, nil
}

// Path returns the schema file path the session was opened for.
func (s *Session) Path() string { return s.path }

// FileID returns the identity of the session's layout record.
func (s *Session) FileID() store.FileID { return s.file }

// Graph returns a copy of the current graph.
func (s *Session) Graph() *diagram.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Graph.Clone()
}

// Record returns a copy of the current layout record.
func (s *Session) Record() diagram.LayoutRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Record.Clone()
}

// Warnings returns recoverable problems found by the last build.
func (s *Session) Warnings() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.warnings...)
}

// Model returns the schema model the current graph was built from.
func (s *Session) Model() *schema.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// =============================================================================
// Events
// =============================================================================

// OnSchemaChange rebuilds the graph for a new model and drops saved
// positions of tables and notes that no longer exist.
func (s *Session) OnSchemaChange(ctx context.Context, model *schema.Model) (*diagram.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed()
	}
	observability.Session().OnEvent(ctx, "schema")
	s.applySchema(ctx, model)
	return s.state.Graph.Clone(), nil
}

// OnSchemaError clears the diagram after the schema text failed to parse.
// The layout record is kept as it is, so a later successful parse restores
// every saved position.
func (s *Session) OnSchemaError(ctx context.Context, cause error) (*diagram.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed()
	}
	observability.Session().OnEvent(ctx, "schema-error")

	s.logger.Warn("schema failed to parse, showing empty diagram", "err", cause)
	s.model = nil
	s.state.Graph = &diagram.Graph{
		Nodes: []diagram.Node{},
		Edges: []diagram.Edge{},
		Style: s.state.Graph.Style,
	}
	s.warnings = nil
	return s.state.Graph.Clone(), nil
}

func (s *Session) applySchema(ctx context.Context, model *schema.Model) {
	res := s.builder.Build(ctx, model, s.state.Record)
	for _, w := range res.Warnings {
		s.logger.Warn("schema problem", "err", w)
	}

	next, changed := ApplySchema(s.state, res.Graph)
	if changed {
		removed := len(s.state.Record) - len(next.Record)
		observability.Store().OnPrune(ctx, removed)
		s.logger.Debug("pruned stale layout entries", "removed", removed)
		s.persist.Schedule(next.Record)
	} else {
		s.persist.Replace(next.Record)
	}

	s.model = model
	s.state = next
	s.warnings = res.Warnings
}

// OnDragComplete records the final position of a dragged table or note.
func (s *Session) OnDragComplete(ctx context.Context, id string, pos diagram.Position) (*diagram.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed()
	}
	observability.Session().OnEvent(ctx, "drag")

	next, err := ApplyDrag(s.state, id, pos)
	if err != nil {
		return nil, err
	}
	s.persist.Schedule(next.Record)
	s.state = Settle(next)
	s.logger.Debug("node moved", "node", id, "x", pos.X, "y", pos.Y)
	return s.state.Graph.Clone(), nil
}

// OnGroupDragComplete moves every member table of a group by off.
func (s *Session) OnGroupDragComplete(ctx context.Context, groupID string, off diagram.Offset) (*diagram.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed()
	}
	observability.Session().OnEvent(ctx, "group-drag")

	next, err := ApplyGroupDrag(s.state, groupID, off)
	if err != nil {
		return nil, err
	}
	if !off.Zero() {
		s.persist.Schedule(next.Record)
	}
	s.state = Settle(next)
	s.logger.Debug("group moved", "group", groupID, "dx", off.DX, "dy", off.DY)
	return s.state.Graph.Clone(), nil
}

// ResetLayout discards every saved position and rebuilds with the
// automatic layout.
func (s *Session) ResetLayout(ctx context.Context) (*diagram.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed()
	}
	observability.Session().OnEvent(ctx, "reset")

	s.persist.Cancel()
	if err := s.store.Delete(ctx, s.file); err != nil {
		s.logger.Warn("failed to delete saved layout", "err", err)
	}
	s.state.Record = diagram.LayoutRecord{}
	res := s.builder.Build(ctx, s.model, s.state.Record)
	s.state.Graph = res.Graph
	s.warnings = res.Warnings
	s.logger.Info("layout reset")
	return s.state.Graph.Clone(), nil
}

// Center returns the navigation target of a table: the midpoint of its
// header rectangle.
func (s *Session) Center(tableID string) (diagram.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.state.Graph.Node(tableID)
	if n == nil || n.Kind != diagram.KindTableHeader {
		return diagram.Position{}, errors.New(errors.ErrCodeNotFound, "table %q not found", tableID)
	}
	return n.Center(), nil
}

// =============================================================================
// Persistence
// =============================================================================

// Flush writes any pending layout change immediately.
func (s *Session) Flush() error {
	return s.persist.Flush()
}

// Close flushes pending writes and releases the session's configuration.
// Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.persist.Stop()
	theme.Teardown()
	s.logger.Debug("session closed")
	return err
}

func (s *Session) save(rec diagram.LayoutRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	err := s.store.Save(ctx, s.file, rec)
	observability.Session().OnFlush(ctx, len(rec), err)
	if err != nil {
		s.logger.Warn("failed to save layout", "err", err)
	}
	return err
}

func errClosed() error {
	return errors.New(errors.ErrCodeInvalidInput, "session closed")
}
