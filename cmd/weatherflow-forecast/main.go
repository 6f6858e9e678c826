package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	httpapi "github.com/i474232898/weatherflow-forecast/internal/api/http"
	"github.com/i474232898/weatherflow-forecast/internal/cache"
	"github.com/i474232898/weatherflow-forecast/internal/config"
	"github.com/i474232898/weatherflow-forecast/internal/logging"
	"github.com/i474232898/weatherflow-forecast/internal/metrics"
	"github.com/i474232898/weatherflow-forecast/internal/scheduler"
	"github.com/i474232898/weatherflow-forecast/internal/store"
	"github.com/i474232898/weatherflow-forecast/internal/weather"
	"github.com/i474232898/weatherflow-forecast/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewWeatherFlowProvider(httpClient, cfg.APIToken,
		providers.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)),
		providers.WithProviderMetrics(m),
		providers.WithProviderLogger(logger.WithField("component", "provider")),
	)

	// Sized for every configured station plus ad-hoc lookups through the API.
	cacheSize := len(cfg.StationIDs) + 64
	stationCache, err := cache.New(cacheSize, cfg.StationCacheMaxAge)
	if err != nil {
		logger.Fatalf("failed to create station cache: %v", err)
	}
	forecastCache, err := cache.New(cacheSize, cfg.ForecastCacheMaxAge)
	if err != nil {
		logger.Fatalf("failed to create forecast cache: %v", err)
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service := weather.NewService(memStore, provider,
		weather.WithStationCache(stationCache),
		weather.WithForecastCache(forecastCache),
		weather.WithForecastHours(cfg.ForecastHours),
		weather.WithElevation(cfg.Elevation),
		weather.WithMetrics(m),
		weather.WithLogger(logger.WithField("component", "service")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Scheduler that polls every station on the configured interval.
	sched := scheduler.New(cfg.StationIDs, cfg.PollInterval, service, logger.WithField("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		logger.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(service, httpapi.Options{Gatherer: reg, AccessLog: true})

	go func() {
		logger.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"stations": cfg.StationIDs,
			"interval": cfg.PollInterval,
		}).Info("starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.WithError(err).Error("fiber server stopped")
			stop()
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.WithError(err).Error("error during shutdown")
	}
	logger.Info("shutdown complete")
}
