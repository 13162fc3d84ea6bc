package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/schemaflow/pkg/server"
	"github.com/matzehuels/schemaflow/pkg/store"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Minute
)

// serveCommand creates the serve command, which runs the HTTP bridge.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		idle time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP bridge for editor webviews",
		Long: `Serve exposes diagram sessions over HTTP. An editor opens a session per
schema file, pushes schema updates and drag events, and receives the updated
graph. Sessions idle for longer than --idle are closed and flushed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, idle)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().DurationVar(&idle, "idle", server.DefaultIdleTTL, "close sessions idle for this long")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, idle time.Duration) error {
	logger := loggerFromContext(ctx)

	spin := newSpinner(os.Stderr, "Opening layout store...")
	spin.Start()
	st, err := store.Open(ctx, c.cfg().Store, logger)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("open layout store: %w", err)
	}
	defer st.Close()

	srv := server.New(server.Options{
		Config:  c.cfg(),
		Store:   st,
		Logger:  logger,
		IdleTTL: idle,
	})
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	printSuccess("Serving on %s", StyleLink.Render("http://"+ln.Addr().String()))
	printDetail("Layout store: %s", st.Backend().Name())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := httpSrv.Shutdown(shutdownCtx)
		if cerr := srv.Close(); err == nil {
			err = cerr
		}
		logger.Info("server stopped")
		return err
	})
	g.Go(func() error {
		return srv.Sessions().RunCleanup(gctx, cleanupInterval)
	})
	return g.Wait()
}
