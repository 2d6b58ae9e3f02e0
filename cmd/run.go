package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dreamchain/api"
	"dreamchain/blockchain"
	"dreamchain/cache"
	"dreamchain/config"
	"dreamchain/database"
	"dreamchain/events"
	"dreamchain/infrastructure"
	"dreamchain/metrics"
	"dreamchain/repository"
	"dreamchain/scheduler"
	"dreamchain/service"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting dreamchain...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	collector := metrics.NewCollector()
	collector.RegisterEventHandlers(eventBus)

	// Forward committed events to NATS when configured
	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()

		mapper := infrastructure.NewEventSubjectMapper()
		if err := natsClient.EnsureStream(infrastructure.DomainEventStream, mapper.GetAllSubjects()); err != nil {
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
		infrastructure.NewEventForwarder(infrastructure.NewNATSEventPublisher(natsClient, mapper)).Register(eventBus)
	} else {
		log.Info("NATS_SERVERS not set, event forwarding disabled")
	}

	// Cache platform stats in Redis when configured
	var statsCache service.StatsCache
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		redisCache := cache.NewStatsCache(redisClient, cfg.StatsCacheTTL)
		redisCache.RegisterInvalidation(eventBus)
		statsCache = redisCache
	} else {
		log.Info("REDIS_URL not set, stats caching disabled")
	}

	// Chain reads are optional
	var chainReader service.ChainReader
	if cfg.EthRPCURL != "" {
		chainClient, err := blockchain.NewClient(ctx, cfg.EthRPCURL)
		if err != nil {
			return fmt.Errorf("failed to connect to chain RPC: %w", err)
		}
		defer chainClient.Close()
		chainReader = chainClient
	} else {
		log.Info("ETH_RPC_URL not set, chain lookups disabled")
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	userService := service.NewUserService(uowFactory)
	services := api.Services{
		Donations: service.NewDonationService(uowFactory, collector, cfg.DefaultCurrency),
		Users:     userService,
		Dreams:    service.NewDreamService(uowFactory, statsCache),
		Auth: service.NewAuthService(uowFactory, service.AuthConfig{
			Secret:           []byte(cfg.JWTSecret),
			TokenTTL:         cfg.JWTTTL,
			RequireSignature: cfg.AuthRequireSignature,
		}),
		Chain: service.NewChainService(chainReader),
	}
	log.Info("Services initialized successfully")

	if cfg.RatingReconcileCron != "" {
		reconciler := scheduler.NewRatingReconciler(userService, cfg.RatingReconcileCron)
		if err := reconciler.Start(); err != nil {
			return err
		}
		defer reconciler.Stop()
	}

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(services,
			api.WithMetrics(collector),
			api.WithHealthCheck(db.Ping),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server did not shut down cleanly")
	}

	log.Info("Shutdown completed")
	return nil
}
