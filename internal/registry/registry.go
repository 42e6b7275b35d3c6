// Package registry creates and tracks auction pairs. The router trusts
// only pairs that came through here.
package registry

import (
	"sync"

	"github.com/mselser95/auctionflow/internal/auction"
	"go.uber.org/zap"
)

// Registry is the pair factory. Created pairs are kept in an append-only
// ordered list.
type Registry struct {
	logger *zap.Logger

	mu    sync.RWMutex
	pairs []*auction.Pair
	byID  map[string]*auction.Pair
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	return &Registry{
		logger: logger,
		byID:   make(map[string]*auction.Pair),
	}
}

// Create validates the configuration, constructs the pair and tracks it.
// Construction failures create nothing.
func (r *Registry) Create(cfg auction.Config) (*auction.Pair, error) {
	pair, err := auction.New(cfg)
	if err != nil {
		PairsRejectedTotal.Inc()
		return nil, err
	}

	r.mu.Lock()
	r.pairs = append(r.pairs, pair)
	r.byID[pair.ID()] = pair
	count := len(r.pairs)
	r.mu.Unlock()

	PairsCreatedTotal.Inc()
	r.logger.Info("pair-registered",
		zap.String("pair-id", pair.ID()),
		zap.Int("pair-count", count))

	return pair, nil
}

// Contains reports whether the pair was created by this registry.
func (r *Registry) Contains(pairID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[pairID]
	return ok
}

// Get returns a tracked pair by ID.
func (r *Registry) Get(pairID string) (*auction.Pair, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pair, ok := r.byID[pairID]
	return pair, ok
}

// List returns the tracked pairs in creation order.
func (r *Registry) List() []*auction.Pair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*auction.Pair, len(r.pairs))
	copy(out, r.pairs)
	return out
}

// Len returns the number of tracked pairs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pairs)
}
