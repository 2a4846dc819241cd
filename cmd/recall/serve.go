package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dkolesni-prog/recall/internal/app"
	"github.com/dkolesni-prog/recall/internal/app/middleware"
	"github.com/dkolesni-prog/recall/internal/workflow"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the control API for the browser extension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Build(cmd.Context(), c.cfg, c.printer, workflow.DefaultOptions())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			return serve(cmd.Context(), c.cfg.RunAddr, a.Handler(buildVersion))
		},
	}

	cmd.Flags().StringVarP(&c.cfg.RunAddr, "address", "a", c.cfg.RunAddr, "address and port to run the control API on")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		middleware.Log.Info().Str("address", addr).Msg("Running server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		middleware.Log.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
