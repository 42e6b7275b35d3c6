// Package app wires configuration, the asset source, the pair registry,
// the router and the serving surfaces into one runnable daemon.
package app

import (
	"context"
	"sync"

	"github.com/mselser95/auctionflow/internal/assetsource"
	"github.com/mselser95/auctionflow/internal/auction"
	"github.com/mselser95/auctionflow/internal/registry"
	"github.com/mselser95/auctionflow/internal/router"
	"github.com/mselser95/auctionflow/internal/storage"
	"github.com/mselser95/auctionflow/pkg/config"
	"github.com/mselser95/auctionflow/pkg/eventfeed"
	"github.com/mselser95/auctionflow/pkg/healthprobe"
	"github.com/mselser95/auctionflow/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	source        assetsource.Source
	registry      *registry.Registry
	pair          *auction.Pair
	router        *router.Router
	storage       storage.Storage
	feed          *eventfeed.Hub
	events        *eventRecorder
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Registry exposes the pair registry, mainly for tests and tooling.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Router exposes the swap router.
func (a *App) Router() *router.Router {
	return a.router
}
