package app

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/auctionflow/internal/assetsource"
	"github.com/mselser95/auctionflow/internal/auction"
	"github.com/mselser95/auctionflow/internal/registry"
	"github.com/mselser95/auctionflow/internal/router"
	"github.com/mselser95/auctionflow/internal/storage"
	"github.com/mselser95/auctionflow/pkg/cache"
	"github.com/mselser95/auctionflow/pkg/config"
	"github.com/mselser95/auctionflow/pkg/eventfeed"
	"github.com/mselser95/auctionflow/pkg/healthprobe"
	"github.com/mselser95/auctionflow/pkg/httpserver"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	source, err := setupSource(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup asset source: %w", err)
	}

	swapStorage, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	feed := eventfeed.New(eventfeed.Config{
		PingInterval: cfg.FeedPingInterval,
		WriteTimeout: cfg.FeedWriteTimeout,
		SendBuffer:   cfg.FeedSendBuffer,
		Logger:       logger,
	})

	events := newEventRecorder(swapStorage, feed, logger)

	reg := registry.New(logger)
	pair, err := reg.Create(auction.Config{
		Source:          source,
		TokenIn:         common.HexToAddress(cfg.PairTokenIn),
		TokenOut:        common.HexToAddress(cfg.PairTokenOut),
		TargetPeriod:    cfg.PairTargetPeriod,
		InitialPrice:    cfg.InitialPrice(),
		SmoothingFactor: cfg.SmoothingFactor(),
		Logger:          logger,
		Events:          events,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create pair: %w", err)
	}

	swapRouter := router.New(router.Config{
		Address:  common.HexToAddress(cfg.RouterAddress),
		Registry: reg,
		Logger:   logger,
	})

	quoteCache, err := setupQuoteCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup quote cache: %w", err)
	}

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Registry:      reg,
		Router:        swapRouter,
		QuoteCache:    quoteCache,
		QuoteTTL:      cfg.QuoteCacheTTL,
		Feed:          feed,
	})

	// Readiness tracks whether the asset source still answers balance
	// queries for the deployed pair.
	healthChecker.RegisterCheck("asset-source", func() error {
		probeCtx, probeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer probeCancel()
		_, err := source.LiquidatableBalanceOf(probeCtx, pair.TokenOut())
		return err
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		source:        source,
		registry:      reg,
		pair:          pair,
		router:        swapRouter,
		storage:       swapStorage,
		feed:          feed,
		events:        events,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// setupSource builds the asset source the pair auctions from. Memory mode
// seeds an in-process vault that custodies the configured token balances;
// evm mode talks to a deployed vault contract.
func setupSource(cfg *config.Config, logger *zap.Logger) (assetsource.Source, error) {
	if cfg.SourceMode == "evm" {
		return assetsource.NewEVMSource(&assetsource.EVMConfig{
			RPCURL:        cfg.ChainRPCURL,
			VaultContract: common.HexToAddress(cfg.VaultContract),
			ChainID:       big.NewInt(cfg.ChainID),
			PrivateKeyHex: os.Getenv("CHAIN_PRIVATE_KEY"),
			Logger:        logger,
		})
	}

	vault := assetsource.NewVault(common.HexToAddress(cfg.VaultCustody), logger)
	vault.SetTarget(common.HexToAddress(cfg.PairTokenIn), common.HexToAddress(cfg.PairTargetAddress))

	return vault, nil
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

func setupQuoteCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}
