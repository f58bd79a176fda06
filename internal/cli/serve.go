package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/roach88/linkage/internal/engine"
	"github.com/roach88/linkage/internal/httpapi"
	"github.com/roach88/linkage/internal/metrics"
	"github.com/roach88/linkage/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Config   string
	Addr     string
	ReadOnly bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the group store over HTTP",
		Long: `Serve JSON views of the group store, Prometheus metrics, and
(unless --read-only) a POST /batches endpoint that files CSV uploads.

Endpoints:
  GET  /groups
  GET  /groups/{id}
  GET  /groups/{id}/profile
  GET  /entities/{id}/groups
  POST /batches[?fresh=true&positional=true]
  GET  /metrics
  GET  /healthz

Example:
  linkage serve --db ./linkage.db --addr :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML or CUE config (defaults to built-in settings)")
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&opts.ReadOnly, "read-only", false, "disable POST /batches")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logger := setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	routerOpts := httpapi.Options{Logger: logger, Gatherer: reg, Config: cfg}
	if !opts.ReadOnly {
		eng, err := engine.New(st, cfg, engine.WithLogger(logger), engine.WithMetrics(metrics.New(reg)))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create engine", err)
		}
		routerOpts.Runner = eng
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           httpapi.NewRouter(st, routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", opts.Addr, "db", opts.Database, "read_only", opts.ReadOnly)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Server stopped.")
	return nil
}
