package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/constellate/internal/api"
	"github.com/dgallion1/constellate/internal/library"
	"github.com/dgallion1/constellate/internal/pipeline"
	"github.com/spf13/cobra"
)

func serveCmd(a *app) *cobra.Command {
	var port string
	var noImport bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the constellation directory over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			cfg := a.cfg
			log := a.logger(os.Stdout)

			renderer, err := a.renderer()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
				return err
			}
			lib := library.New(cfg.Dir, log)
			if err := lib.Load(ctx); err != nil {
				log.Warn("some constellations failed to load", "error", err)
			}

			if cfg.Watch {
				go func() {
					if err := lib.Watch(ctx, library.DefaultDebounce); err != nil {
						log.Error("watcher stopped", "error", err)
					}
				}()
			}

			var orch *pipeline.Orchestrator
			if !noImport {
				orch = pipeline.NewOrchestrator(cfg, lib, log)
				orch.Start(ctx)
			}

			srv := api.NewServer(lib, renderer, orch, log, cfg)
			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			done := make(chan struct{})
			go func() {
				defer close(done)
				<-ctx.Done()
				log.Info("shutting down...")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)

				if orch != nil {
					orch.Stop()
				}
			}()

			log.Info("starting constellate", "port", cfg.Port, "dir", cfg.Dir, "theme", cfg.Theme, "documents", lib.Len())
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				stop()
				<-done
				return err
			}
			<-done
			return nil
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (PORT)")
	cmd.Flags().BoolVar(&noImport, "no-import", false, "disable the upload endpoints")
	return cmd
}
