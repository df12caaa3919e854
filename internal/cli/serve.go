package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvollan/stirlingforge/internal/api"
	"github.com/mvollan/stirlingforge/pkg/store"
)

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		dsn        string
		catalogDir string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the design pipeline over HTTP",
		Long: `Serve the design pipeline over HTTP.

POST /api/v1/designs runs the pipeline and persists the snapshot;
GET /api/v1/designs lists stored run IDs and GET /api/v1/designs/{id}
fetches one. The catalog directory is fixed at startup; API callers
cannot point the service at other paths.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, dsn, catalogDir, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&dsn, "store", "", "snapshot store DSN (file path, redis:// or mongodb://)")
	cmd.Flags().StringVar(&catalogDir, "catalog", defaultCatalogDir(), "machine/material catalog directory")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable stage caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, dsn, catalogDir string, noCache bool) error {
	st, err := store.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	runner := c.newRunner(noCache)
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(runner, st, catalogDir, c.Logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
