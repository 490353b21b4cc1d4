package geolocation

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ProviderGate spaces calls to the same provider by at least the
// configured minimum interval. Providers are independent; the worst
// case for a caller is a wait, never an error beyond context
// cancellation.
type ProviderGate struct {
	mu          sync.Mutex
	minInterval time.Duration
	limiters    map[string]*rate.Limiter
}

// NewProviderGate creates a gate with the given per-provider minimum interval.
func NewProviderGate(minInterval time.Duration) *ProviderGate {
	return &ProviderGate{
		minInterval: minInterval,
		limiters:    make(map[string]*rate.Limiter),
	}
}

// Acquire blocks until a call to the keyed provider is allowed.
func (g *ProviderGate) Acquire(ctx context.Context, providerKey string) error {
	g.mu.Lock()
	limiter, ok := g.limiters[providerKey]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(g.minInterval), 1)
		g.limiters[providerKey] = limiter
	}
	g.mu.Unlock()

	return limiter.Wait(ctx)
}
