package geolocation

import (
	"context"
	"sync"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/internal/logger"
	"github.com/pattr-maidachem/uplink-monitor/models"
)

type cacheEntry struct {
	data       models.IdentityRecord
	capturedAt time.Time
}

// Resolver resolves the uplink identity by iterating providers in
// priority order with a bounded cache. Resolve never fails: when every
// provider is down it degrades to the stale cached record, and to a
// fixed sentinel when no cache exists yet.
type Resolver struct {
	providers     []Provider
	gate          *ProviderGate
	cacheDuration time.Duration

	mu    sync.Mutex
	cache *cacheEntry
}

// NewResolver creates a resolver over the given providers, tried in
// slice order.
func NewResolver(providers []Provider, gate *ProviderGate, cacheDuration time.Duration) *Resolver {
	return &Resolver{
		providers:     providers,
		gate:          gate,
		cacheDuration: cacheDuration,
	}
}

// DefaultProviders returns the production provider chain in priority order.
func DefaultProviders(timeout time.Duration) []Provider {
	return []Provider{
		NewIPAPIProvider(timeout),
		NewIPWhoisProvider(timeout),
		NewIPInfoProvider(timeout),
		NewSeeIPProvider(timeout),
	}
}

// Resolve returns the current identity record. The cache is consulted
// first; a fresh entry short-circuits every provider. Otherwise
// providers are tried in order and the first success wins and refreshes
// the cache.
func (r *Resolver) Resolve(ctx context.Context) models.IdentityRecord {
	log := logger.WithComponent("resolver")

	r.mu.Lock()
	if r.cache != nil && time.Since(r.cache.capturedAt) < r.cacheDuration {
		record := r.cache.data
		r.mu.Unlock()
		return record
	}
	r.mu.Unlock()

	for _, provider := range r.providers {
		if err := r.gate.Acquire(ctx, provider.Key()); err != nil {
			log.Warn().Err(err).Str("provider", provider.Key()).Msg("Rate gate interrupted")
			break
		}

		record, err := provider.Fetch(ctx)
		if err != nil {
			log.Warn().Err(err).Str("provider", provider.Key()).Msg("Provider lookup failed")
			continue
		}

		record.Source = provider.Key()
		record.ResolvedAt = time.Now()

		r.mu.Lock()
		r.cache = &cacheEntry{data: *record, capturedAt: record.ResolvedAt}
		r.mu.Unlock()

		log.Debug().Str("provider", provider.Key()).Str("ip", record.IP).Str("isp", record.ISP).Msg("Identity resolved")
		return *record
	}

	// All providers failed; an expired cache entry still beats nothing.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache != nil {
		log.Warn().Time("captured_at", r.cache.capturedAt).Msg("All providers failed, serving stale cache")
		return r.cache.data
	}

	log.Warn().Msg("All providers failed with no cache, serving sentinel record")
	return SentinelRecord()
}

// SentinelRecord is the fixed placeholder identity served when
// resolution is fully exhausted. Callers must never block on identity;
// a recognizable mock beats an error here.
func SentinelRecord() models.IdentityRecord {
	return models.IdentityRecord{
		IP:           "0.0.0.0",
		Country:      "Unknown",
		Region:       "Unknown",
		City:         "Unknown",
		ISP:          "Unknown",
		Organization: "Unknown",
		Timezone:     "UTC",
		Source:       "mock",
		ResolvedAt:   time.Now(),
	}
}
