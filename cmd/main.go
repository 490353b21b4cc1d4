package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/db"
	"github.com/pattr-maidachem/uplink-monitor/internal/config"
	"github.com/pattr-maidachem/uplink-monitor/internal/gateway"
	"github.com/pattr-maidachem/uplink-monitor/internal/geolocation"
	"github.com/pattr-maidachem/uplink-monitor/internal/logger"
	"github.com/pattr-maidachem/uplink-monitor/internal/metrics"
	"github.com/pattr-maidachem/uplink-monitor/internal/monitor"
	"github.com/pattr-maidachem/uplink-monitor/internal/swap"
	"github.com/pattr-maidachem/uplink-monitor/internal/web"
	"github.com/pattr-maidachem/uplink-monitor/middleware"
)

// startupRetryDelay is how long to wait before retrying the whole
// startup sequence after a fatal init error. Startup is retried
// indefinitely; the daemon never gives up on a slow database.
const startupRetryDelay = 30 * time.Second

func main() {
	logger.Init()
	log := logger.Get()

	log.Info().Int("pid", os.Getpid()).Msg("Starting uplink-monitor")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error().Err(err).Dur("retry_in", startupRetryDelay).Msg("Failed to load configuration, retrying startup")
		time.Sleep(startupRetryDelay)
		main()
		return
	}

	sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath)
	if err != nil {
		log.Error().Err(err).Dur("retry_in", startupRetryDelay).Msg("Failed to connect to SQLite, retrying startup")
		time.Sleep(startupRetryDelay)
		main()
		return
	}

	if err := db.InitializeSchema(sqliteDB); err != nil {
		log.Error().Err(err).Dur("retry_in", startupRetryDelay).Msg("Failed to initialize database schema, retrying startup")
		sqliteDB.Close()
		time.Sleep(startupRetryDelay)
		main()
		return
	}

	log.Info().Str("path", cfg.SQLitePath).Msg("Connected to SQLite database")

	repoFactory := db.NewRepositoryFactory(sqliteDB, cfg.DatabaseName)
	swapRepo := repoFactory.NewSwapRepository()
	gatewayRepo := repoFactory.NewGatewayLogRepository()

	// Serialize all persistence through one worker
	dbManager := db.NewDBManager()

	gate := geolocation.NewProviderGate(cfg.ProviderMinInterval)
	resolver := geolocation.NewResolver(geolocation.DefaultProviders(cfg.ProviderTimeout), gate, cfg.CacheDuration)

	swapService := swap.NewSwapService(swapRepo, dbManager, cfg.ISPCheckInterval)
	gatewayService := gateway.NewGatewayService(gatewayRepo, dbManager, cfg.GatewayTarget, cfg.GatewayProbeTimeout, cfg.GatewayProbeInterval)
	aggregator := metrics.NewAggregator(resolver, swapService, gatewayService, cfg.LatencyTarget)
	monitorService := monitor.NewMonitorService(aggregator, cfg.SampleInterval)

	// Coordinate graceful shutdown of the background loops
	done := make(chan bool)

	go gatewayService.Run(done)
	go monitorService.Run(done)

	webHandler := web.NewWebHandler(swapService, gatewayService, monitorService)
	router := webHandler.SetupRoutes()
	loggedRouter := middleware.LoggingMiddleware(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: loggedRouter,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
			close(done)
			os.Exit(1)
		}
	}()

	waitForShutdown(server, dbManager, done)
}

func waitForShutdown(server *http.Server, dbManager *db.DBManager, done chan bool) {
	log := logger.Get()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	// Signal background services to stop
	close(done)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	dbManager.Stop()
	log.Info().Msg("Services stopped")
}
