package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"
	"streamwall/internal/core/services"
	"streamwall/internal/crdt"
	httphandlers "streamwall/internal/handlers/http"
	"streamwall/internal/infrastructure/control"
	"streamwall/internal/infrastructure/ingest"
	"streamwall/internal/infrastructure/middleware"
	"streamwall/internal/infrastructure/monitoring"
	repositories "streamwall/internal/infrastructure/repositories"
	"streamwall/internal/infrastructure/streamdelay"
	"streamwall/internal/infrastructure/wall"
	"streamwall/pkg/config"
	"streamwall/pkg/logger"
	"streamwall/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load falls back to defaults when the file does not exist.
	configPath := os.Getenv("STREAMWALL_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	// Initialize tracing
	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "streamwall",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		zapLogger.Sugar().Fatalw("failed to initialize tracing", "error", err)
	}

	// Initialize repositories
	repoFactory, err := repositories.NewRepositoryFactory(cfg, zapLogger)
	if err != nil {
		zapLogger.Sugar().Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	tokenRepo := repoFactory.CreateTokenRepository()
	streamRepo := repoFactory.CreateStreamRepository()

	// Initialize core services
	wallConfig := domain.WallConfig{
		GridCount: cfg.Wall.GridCount,
		Width:     cfg.Wall.Width,
		Height:    cfg.Wall.Height,
	}
	stateService := services.NewStateService(wallConfig)
	tokenService := services.NewTokenService(tokenRepo, zapLogger)
	streamService := services.NewStreamService(streamRepo, stateService, zapLogger)

	// Shared layout document, one cell per grid slot
	doc := crdt.NewDoc(cfg.Wall.GridCount * cfg.Wall.GridCount)

	// Initialize monitoring
	var prometheusCollector *monitoring.PrometheusCollector
	if cfg.Monitoring.PrometheusEnabled {
		prometheusCollector = monitoring.NewPrometheusCollector(prometheus.DefaultRegisterer)
	}

	// Control server plus the wall controller reporting display states back
	var controlServer *control.Server
	wallController := wall.NewController(func(states map[int]json.RawMessage) {
		if controlServer != nil {
			controlServer.SetDisplayStates(states)
		}
	}, zapLogger)

	var delayClient *streamdelay.Client
	var delayService ports.DelayService
	if cfg.Streamdelay.Enabled {
		delayClient = streamdelay.NewClient(
			cfg.Streamdelay.Endpoint,
			cfg.Streamdelay.Key,
			cfg.Streamdelay.PollInterval,
			stateService,
			zapLogger,
		)
		delayService = delayClient
	}

	controlServer = control.NewServer(
		doc,
		stateService,
		tokenService,
		streamService,
		delayService,
		wallController,
		prometheusCollector,
		control.Options{
			PingInterval:   cfg.Control.PingInterval,
			PongTimeout:    cfg.Control.PongTimeout,
			WriteTimeout:   cfg.Control.WriteTimeout,
			AllowedOrigin:  baseOrigin(cfg.Server.BaseURL),
			MessageLimiter: middleware.NewMessageRateLimiter(cfg),
			MaxMessageSize: cfg.RateLimiting.WebSocket.MaxMessageSizeBytes,
		},
		zapLogger,
	)

	// Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go controlServer.Run(ctx)

	poller := ingest.NewPoller(cfg.Data.URLs, cfg.Data.PollInterval, streamService, zapLogger)
	go poller.Run(ctx)

	if delayClient != nil {
		go delayClient.Run(ctx)
	}

	// HTTP surface
	openAccessRole := domain.Role(cfg.Auth.OpenAccessRole)
	controlHandler, err := httphandlers.NewControlHandler(
		cfg.Server.BaseURL,
		cfg.Auth.SessionMaxAge,
		tokenService,
		controlServer,
		prometheusCollector,
		zapLogger,
	)
	if err != nil {
		zapLogger.Sugar().Fatalw("failed to create control handler", "error", err)
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.ErrorHandlerMiddleware(zapLogger))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}
	router.Use(middleware.SessionMiddleware(tokenService, openAccessRole, zapLogger))
	controlHandler.SetupRoutes(router)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Sugar().Infof("starting Streamwall control server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Prometheus metrics on its own port
	var metricsSrv *http.Server
	if cfg.Monitoring.PrometheusEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
			Handler: metricsMux,
		}
		go func() {
			zapLogger.Sugar().Infof("prometheus metrics on :%d", cfg.Monitoring.PrometheusPort)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				zapLogger.Sugar().Errorw("metrics server failed", "error", err)
			}
		}()
	}

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		zapLogger.Sugar().Fatalw("server failed", "error", err)
	case sig := <-sigChan:
		zapLogger.Sugar().Infow("received shutdown signal", "signal", sig.String())
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Sugar().Errorw("error during server shutdown", "error", err)
		srv.Close()
	}
	if metricsSrv != nil {
		metricsSrv.Shutdown(shutdownCtx)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		zapLogger.Sugar().Errorw("error during tracing shutdown", "error", err)
	}

	zapLogger.Sugar().Info("server shutdown complete")
}

func baseOrigin(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	return u.Scheme + "://" + u.Host
}
