package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemaflow/pkg/observability"
)

// logHooks reports engine events through the CLI logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func installLogHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("hooks")}
	observability.SetBuildHooks(h)
	observability.SetStoreHooks(h)
	observability.SetSessionHooks(h)
}

func (h logHooks) OnBuildStart(_ context.Context, tables, refs int) {
	h.logger.Debug("build start", "tables", tables, "refs", refs)
}

func (h logHooks) OnBuildComplete(_ context.Context, nodes, edges int, d time.Duration) {
	h.logger.Debug("build complete", "nodes", nodes, "edges", edges, "duration", d)
}

func (h logHooks) OnLoad(_ context.Context, backend string, entries int, err error) {
	h.logger.Debug("layout load", "backend", backend, "entries", entries, "err", err)
}

func (h logHooks) OnSave(_ context.Context, backend string, entries int, d time.Duration, err error) {
	h.logger.Debug("layout save", "backend", backend, "entries", entries, "duration", d, "err", err)
}

func (h logHooks) OnPrune(_ context.Context, removed int) {
	h.logger.Debug("layout prune", "removed", removed)
}

func (h logHooks) OnEvent(_ context.Context, event string) {
	h.logger.Debug("session event", "event", event)
}

func (h logHooks) OnFlush(_ context.Context, entries int, err error) {
	h.logger.Debug("session flush", "entries", entries, "err", err)
}

var (
	_ observability.BuildHooks   = logHooks{}
	_ observability.StoreHooks   = logHooks{}
	_ observability.SessionHooks = logHooks{}
)
