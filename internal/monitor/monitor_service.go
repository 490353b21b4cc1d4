package monitor

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/internal/logger"
	"github.com/pattr-maidachem/uplink-monitor/models"
)

// Sampler produces one full snapshot per cycle, or an error when any
// sub-fetch exhausted its retries.
type Sampler interface {
	Sample(ctx context.Context) (*models.MetricsSnapshot, error)
}

// MonitorService drives the sampling loop and owns the current
// snapshot. The snapshot pointer is swapped whole under the lock;
// readers always see a fully-formed sample. A failed cycle leaves the
// previous snapshot published.
type MonitorService struct {
	sampler  Sampler
	interval time.Duration

	mu      sync.RWMutex
	current *models.MetricsSnapshot

	clientsMu sync.Mutex
	clients   map[*client]struct{}
}

func NewMonitorService(sampler Sampler, interval time.Duration) *MonitorService {
	return &MonitorService{
		sampler:  sampler,
		interval: interval,
		clients:  make(map[*client]struct{}),
	}
}

// Run samples once per interval until the done channel closes. Ticks
// are serialized: a cycle finishes before the next one starts. A panic
// inside a cycle is logged and kills only that cycle.
func (s *MonitorService) Run(done <-chan bool) {
	log := logger.WithComponent("monitor")
	log.Info().Dur("interval", s.interval).Msg("Monitoring loop started")

	s.runCycle()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			log.Info().Msg("Monitoring loop stopped")
			s.closeClients()
			return
		case <-ticker.C:
			s.runCycle()
		}
	}
}

// Current returns a copy of the latest published snapshot, or nil when
// no cycle has succeeded yet.
func (s *MonitorService) Current() *models.MetricsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	snapshot := *s.current
	return &snapshot
}

func (s *MonitorService) runCycle() {
	log := logger.WithComponent("monitor")
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Sampling cycle panic recovered")
		}
	}()

	snapshot, err := s.sampler.Sample(context.Background())
	if err != nil {
		// Previous snapshot remains current; subscribers keep
		// receiving stale-but-available data.
		log.Warn().Err(err).Msg("Sampling cycle failed, keeping previous snapshot")
		return
	}

	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()
}
