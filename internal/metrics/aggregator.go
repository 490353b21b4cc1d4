package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/internal/logger"
	"github.com/pattr-maidachem/uplink-monitor/internal/util"
	"github.com/pattr-maidachem/uplink-monitor/models"
)

// IdentityResolver resolves the uplink identity. Implementations never
// fail; they degrade to cached or sentinel data instead.
type IdentityResolver interface {
	Resolve(ctx context.Context) models.IdentityRecord
}

// ChangeDetector records observed ISP transitions at its own cadence.
type ChangeDetector interface {
	OnObservedIdentity(ctx context.Context, isp, ip string) error
}

// GatewayProber reports gateway liveness. Down is a value, not an error.
type GatewayProber interface {
	Probe() models.GatewayStatus
}

// Aggregator assembles one MetricsSnapshot per sampling cycle from
// concurrent sub-fetches. Either every sub-fetch succeeds and a full
// snapshot is returned, or the cycle yields nothing; partial snapshots
// are never produced.
type Aggregator struct {
	resolver      IdentityResolver
	detector      ChangeDetector
	prober        GatewayProber
	latencyTarget string
	startedAt     time.Time

	// Collectors are swappable for tests.
	collectSystem  func() (models.SystemMetrics, error)
	readCounters   func() (netCounters, error)
	measureLatency func(target string, timeout time.Duration) (float64, error)

	mu           sync.Mutex
	prevCounters *netCounters
	prevAt       time.Time
}

func NewAggregator(resolver IdentityResolver, detector ChangeDetector, prober GatewayProber, latencyTarget string) *Aggregator {
	return &Aggregator{
		resolver:       resolver,
		detector:       detector,
		prober:         prober,
		latencyTarget:  latencyTarget,
		startedAt:      time.Now(),
		collectSystem:  collectSystemMetrics,
		readCounters:   readNetworkCounters,
		measureLatency: measureLatency,
	}
}

// Sample runs all sub-fetches concurrently and joins them into one
// snapshot. Each sub-fetch carries its own bounded retry; a sub-fetch
// that exhausts retries fails the whole cycle and Sample returns an
// error instead of a partial snapshot.
func (a *Aggregator) Sample(ctx context.Context) (*models.MetricsSnapshot, error) {
	log := logger.WithComponent("aggregator")

	var (
		wg       sync.WaitGroup
		identity models.IdentityRecord
		system   models.SystemMetrics
		counters netCounters
		latency  float64

		systemErr  error
		networkErr error
		latencyErr error
	)
	gatewayStatus := models.GatewayDown

	wg.Add(4)

	go func() {
		defer wg.Done()
		identity = a.resolver.Resolve(ctx)
	}()

	go func() {
		defer wg.Done()
		system, systemErr = util.RetryWithResult(a.collectSystem)
	}()

	go func() {
		defer wg.Done()
		counters, networkErr = util.RetryWithResult(a.readCounters)
	}()

	go func() {
		defer wg.Done()
		latency, latencyErr = util.RetryWithResult(func() (float64, error) {
			return a.measureLatency(a.latencyTarget, 5*time.Second)
		})
	}()

	// Probe failure is not a sub-fetch failure; down is the value.
	if a.prober != nil {
		gatewayStatus = a.prober.Probe()
	}

	wg.Wait()

	if systemErr != nil {
		return nil, fmt.Errorf("system metrics fetch failed: %w", systemErr)
	}
	if networkErr != nil {
		return nil, fmt.Errorf("network counters fetch failed: %w", networkErr)
	}
	if latencyErr != nil {
		return nil, fmt.Errorf("latency measurement failed: %w", latencyErr)
	}

	now := time.Now()
	system.UptimeSeconds = uint64(now.Sub(a.startedAt).Seconds())

	network := models.NetworkMetrics{
		RxBytesTotal:  counters.RxBytes,
		TxBytesTotal:  counters.TxBytes,
		LatencyMs:     latency,
		GatewayStatus: gatewayStatus,
	}
	network.RxBytesPerSec, network.TxBytesPerSec = a.throughput(counters, now)

	if a.detector != nil {
		// Change detection runs at its own coarser cadence; the
		// detector drops calls inside its check interval.
		if err := a.detector.OnObservedIdentity(ctx, identity.ISP, identity.IP); err != nil {
			log.Error().Err(err).Msg("ISP change detection failed")
		}
	}

	return &models.MetricsSnapshot{
		Timestamp: now,
		Identity:  identity,
		System:    system,
		Network:   network,
	}, nil
}

// throughput derives per-second rates from the counter delta since the
// previous sample. The first sample reports zero rates.
func (a *Aggregator) throughput(counters netCounters, now time.Time) (rx, tx float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.prevCounters != nil {
		elapsed := now.Sub(a.prevAt).Seconds()
		if elapsed > 0 && counters.RxBytes >= a.prevCounters.RxBytes && counters.TxBytes >= a.prevCounters.TxBytes {
			rx = float64(counters.RxBytes-a.prevCounters.RxBytes) / elapsed
			tx = float64(counters.TxBytes-a.prevCounters.TxBytes) / elapsed
		}
	}

	a.prevCounters = &counters
	a.prevAt = now
	return rx, tx
}
