package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github/itish2003/meetingcanvas/config"
	"github/itish2003/meetingcanvas/controller"
	"github/itish2003/meetingcanvas/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API on server.port.

Examples:
  # Serve with environment configuration only
  GEMINI_API_KEY=... meetingcanvas serve

  # Serve with a config file and a watched transcript inbox
  INBOX_PATH=./inbox meetingcanvas serve --config config.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := services.ConfigureDocumentLicense(cfg.Unidoc.LicenseKey); err != nil {
		logger.Warn("PDF import unavailable", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := services.NewMetrics(reg)

	ws := newWorkspaceService(cfg, logger, metrics)

	g, gctx := errgroup.WithContext(ctx)

	var inbox *services.TranscriptInbox
	if cfg.Inbox.Path != "" {
		inbox = services.NewTranscriptInbox(cfg.Inbox.Path, logger, metrics)
		if err := inbox.ScanDirectory(ctx); err != nil {
			return fmt.Errorf("failed to scan inbox: %w", err)
		}
		g.Go(func() error {
			return inbox.WatchDirectory(gctx)
		})
	}

	var exports *services.ExportWriter
	if cfg.Export.Path != "" {
		exports, err = services.NewExportWriter(cfg.Export.Path)
		if err != nil {
			return err
		}
	}

	var extractRate rate.Limit
	if cfg.Server.ExtractPerMinute > 0 {
		extractRate = rate.Limit(float64(cfg.Server.ExtractPerMinute) / 60)
	}

	router := controller.NewRouter(controller.RouterConfig{
		Workspace:    ws,
		Inbox:        inbox,
		Exports:      exports,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		ExtractRate:  extractRate,
		ExtractBurst: cfg.Server.ExtractBurst,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("model", cfg.Gemini.Model),
			zap.Bool("default_credential", cfg.Gemini.APIKey != ""),
			zap.String("inbox", cfg.Inbox.Path),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newWorkspaceService(cfg *config.Config, logger *zap.Logger, metrics *services.Metrics) *services.WorkspaceService {
	gateways := services.NewGeminiGatewayFactory(services.GeminiOptions{
		Model:      cfg.Gemini.Model,
		BaseURL:    cfg.Gemini.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Gemini.Timeout},
		Logger:     logger,
	})
	return services.NewWorkspaceService(services.WorkspaceOptions{
		Gateways:          gateways,
		DefaultCredential: cfg.Gemini.APIKey,
		ExtractTimeout:    cfg.Gemini.Timeout,
		Metrics:           metrics,
		Logger:            logger,
	})
}
