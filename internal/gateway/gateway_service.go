package gateway

import (
	"context"
	"net"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/db"
	"github.com/pattr-maidachem/uplink-monitor/internal/logger"
	"github.com/pattr-maidachem/uplink-monitor/models"
)

// GatewayService probes a fixed network endpoint for liveness and
// appends one gateway_log row per probe interval.
type GatewayService struct {
	repo      db.GatewayLogRepository
	dbManager *db.DBManager
	target    string
	timeout   time.Duration
	interval  time.Duration
}

func NewGatewayService(repo db.GatewayLogRepository, dbManager *db.DBManager, target string, timeout, interval time.Duration) *GatewayService {
	return &GatewayService{
		repo:      repo,
		dbManager: dbManager,
		target:    target,
		timeout:   timeout,
		interval:  interval,
	}
}

// Probe dials the target and reports up or down. Reachability itself
// is the signal: a timeout or refused connection yields down, never an
// error.
func (s *GatewayService) Probe() models.GatewayStatus {
	conn, err := net.DialTimeout("tcp", s.target, s.timeout)
	if err != nil {
		return models.GatewayDown
	}
	conn.Close()
	return models.GatewayUp
}

// Run probes the gateway once per interval and persists the result
// until the done channel closes. An initial probe runs immediately.
func (s *GatewayService) Run(done <-chan bool) {
	log := logger.WithComponent("gateway")
	log.Info().Str("target", s.target).Dur("interval", s.interval).Msg("Gateway probe started")

	s.probeAndPersist()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			log.Info().Msg("Gateway probe stopped")
			return
		case <-ticker.C:
			s.probeAndPersist()
		}
	}
}

// Status returns the most recently persisted probe result.
func (s *GatewayService) Status(ctx context.Context) (*models.GatewayLogEntry, error) {
	return s.repo.FindLatest(ctx)
}

// Uptime aggregates probe results over the last `days` days.
func (s *GatewayService) Uptime(ctx context.Context, days int) (*models.GatewayUptime, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	uptime, err := s.repo.UptimeSince(ctx, since)
	if err != nil {
		return nil, err
	}
	uptime.WindowDays = days
	return uptime, nil
}

func (s *GatewayService) probeAndPersist() {
	log := logger.WithComponent("gateway")
	ctx := context.Background()

	status := s.Probe()

	entry := &models.GatewayLogEntry{Status: status, CreatedAt: time.Now()}
	if err := s.persist(ctx, entry); err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("Failed to persist gateway status")

		// Fallback write: record the outage signal itself, then give up.
		if status == models.GatewayUp {
			fallback := &models.GatewayLogEntry{Status: models.GatewayDown, CreatedAt: time.Now()}
			if err := s.persist(ctx, fallback); err != nil {
				log.Error().Err(err).Msg("Fallback gateway log write failed")
			}
		}
		return
	}

	log.Debug().Str("status", string(status)).Msg("Gateway probe persisted")
}

func (s *GatewayService) persist(ctx context.Context, entry *models.GatewayLogEntry) error {
	if s.dbManager != nil {
		return s.dbManager.CreateGatewayLog(s.repo, ctx, entry)
	}
	return s.repo.Create(ctx, entry)
}
