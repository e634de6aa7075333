package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"breedd/internal/analytics"
	"breedd/internal/httpapi"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), o)
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "HTTP listen address, e.g. :8000")
	f.Int("max-queue-depth", 0, "callers admitted per classifier before 429")
	f.Int("max-inflight", 0, "parallel evaluations for classifiers that allow them")
	f.Duration("max-wait", 0, "how long a request may wait for a queue slot")
	f.Duration("request-timeout", 0, "per-request prediction deadline")
	f.Float64("gradcam-opacity", 0, "heatmap opacity in [0,1]")
	f.Int64("max-upload-bytes", 0, "largest accepted image upload")
	f.String("cors-origins", "", "comma separated allowed origins; enables CORS when set")
	return cmd
}

func runServe(parent context.Context, o *rootOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, log := o.cfg, o.log
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(cfg.BreedData, log)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, log)
	defer mgr.Close()

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetVersion(version)
	httpapi.SetMaxUploadBytes(cfg.MaxUploadBytes)
	httpapi.SetPredictTimeout(time.Duration(cfg.RequestTimeout))
	httpapi.SetBaseContext(ctx)
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins,
			[]string{http.MethodGet, http.MethodPost, http.MethodOptions},
			[]string{"Accept", "Content-Type", "X-Request-Id", "X-Log-Level"})
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr, catalog, analytics.New()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// A request arriving first joins the same single-flight load.
	go func() { _ = loadModels(mgr, log, func() error { return mgr.Load(ctx) }) }()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Str("version", version).Msg("breedd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
