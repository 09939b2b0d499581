package app

import (
	"context"
	"fmt"

	"github.com/quantfeed/blockwatch/internal/alert"
	"github.com/quantfeed/blockwatch/internal/feed"
	"github.com/quantfeed/blockwatch/internal/notify"
	"github.com/quantfeed/blockwatch/internal/parser"
	"github.com/quantfeed/blockwatch/internal/storage"
	"github.com/quantfeed/blockwatch/pkg/cache"
	"github.com/quantfeed/blockwatch/pkg/config"
	"github.com/quantfeed/blockwatch/pkg/healthprobe"
	"github.com/quantfeed/blockwatch/pkg/httpserver"
	"go.uber.org/zap"
)

const journalCapacity = 256

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	appCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	store, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		appCache.Close()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	msgParser := parser.New(logger)
	engine := alert.New(logger)
	rules := cfg.RuleSet()
	hints := NewHintTracker(appCache, cfg.RefHintTTL)
	journal := NewDecisionJournal(journalCapacity)
	dispatcher := setupDispatcher(cfg, logger, appCache)
	feedManager := setupFeedManager(cfg, logger, healthChecker)

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Parser:        msgParser,
		Engine:        engine,
		Rules:         rules,
		Hints:         hints,
		Journal:       journal,
	})

	pipeline := NewPipeline(&PipelineConfig{
		Parser:     msgParser,
		Engine:     engine,
		Rules:      rules,
		Storage:    store,
		Hints:      hints,
		Journal:    journal,
		Dispatcher: dispatcher,
		BlockTag:   cfg.BlockTradeTag,
		Logger:     logger,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		feedManager:   feedManager,
		parser:        msgParser,
		engine:        engine,
		rules:         rules,
		store:         store,
		appCache:      appCache,
		hints:         hints,
		journal:       journal,
		dispatcher:    dispatcher,
		pipeline:      pipeline,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupDispatcher(cfg *config.Config, logger *zap.Logger, appCache cache.Cache) *notify.Dispatcher {
	var sender notify.Sender
	if cfg.NotifyMode == "smtp" {
		sender = notify.NewSMTPSender(&notify.SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			User:       cfg.SMTPUser,
			Password:   cfg.SMTPPassword,
			From:       cfg.SMTPFrom,
			Recipients: cfg.SMTPRecipients,
			Logger:     logger,
		})
	} else {
		sender = notify.NewConsoleSender(logger)
	}

	return notify.NewDispatcher(&notify.DispatcherConfig{
		Sender:        sender,
		Dedup:         appCache,
		DedupTTL:      cfg.NotifyDedupTTL,
		RatePerMinute: cfg.NotifyRatePerMinute,
		Logger:        logger,
	})
}

func setupFeedManager(cfg *config.Config, logger *zap.Logger, healthChecker *healthprobe.HealthChecker) *feed.Manager {
	return feed.New(feed.Config{
		URL:                   cfg.FeedWSURL,
		Channel:               cfg.FeedChannel,
		DialTimeout:           cfg.WSDialTimeout,
		PongTimeout:           cfg.WSPongTimeout,
		PingInterval:          cfg.WSPingInterval,
		ReconnectInitialDelay: cfg.WSReconnectInitialDelay,
		ReconnectMaxDelay:     cfg.WSReconnectMaxDelay,
		ReconnectBackoffMult:  cfg.WSReconnectBackoffMult,
		MessageBufferSize:     cfg.WSMessageBufferSize,
		Logger:                logger,
		OnStateChange:         healthChecker.SetReady,
	})
}
