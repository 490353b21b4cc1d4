package swap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/db"
	"github.com/pattr-maidachem/uplink-monitor/internal/logger"
	"github.com/pattr-maidachem/uplink-monitor/models"
)

// SwapService detects ISP transitions and records them. Observations
// arrive every sampling cycle but persistence runs at a coarser
// cadence, gated by the last-checked timestamp, to bound write volume.
type SwapService struct {
	repo          db.SwapRepository
	dbManager     *db.DBManager
	checkInterval time.Duration

	mu          sync.Mutex
	lastChecked time.Time
}

func NewSwapService(repo db.SwapRepository, dbManager *db.DBManager, checkInterval time.Duration) *SwapService {
	return &SwapService{
		repo:          repo,
		dbManager:     dbManager,
		checkInterval: checkInterval,
	}
}

// OnObservedIdentity compares the observed ISP against the latest
// persisted entry and records a transition when they differ. Calls
// inside the check interval are dropped; repeated observations of an
// unchanged ISP never produce new rows.
func (s *SwapService) OnObservedIdentity(ctx context.Context, isp, ip string) error {
	if isp == "" || isp == "Unknown" {
		return nil
	}

	s.mu.Lock()
	if time.Since(s.lastChecked) < s.checkInterval {
		s.mu.Unlock()
		return nil
	}
	s.lastChecked = time.Now()
	s.mu.Unlock()

	latest, err := s.repo.FindLatest(ctx)
	if err != nil && err != db.ErrNotFound {
		return fmt.Errorf("error reading latest swap entry: %w", err)
	}

	if latest != nil && latest.ISP == isp {
		return nil
	}

	entry, err := s.recordTransition(ctx, isp, ip)
	if err != nil {
		return fmt.Errorf("error recording ISP transition: %w", err)
	}

	log := logger.WithComponent("swap")
	previous := ""
	if latest != nil {
		previous = latest.ISP
	}
	log.Info().Str("previous_isp", previous).Str("isp", entry.ISP).Str("ip", entry.IP).Msg("ISP transition recorded")
	return nil
}

// ActiveEntries returns the currently active entries. After any
// transition at most one row is active, the current uplink.
func (s *SwapService) ActiveEntries(ctx context.Context) ([]*models.SwapLogEntry, error) {
	return s.repo.FindActive(ctx)
}

// History returns swap entries, newest first.
func (s *SwapService) History(ctx context.Context, limit int) ([]*models.SwapLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.FindAll(ctx, limit)
}

func (s *SwapService) recordTransition(ctx context.Context, isp, ip string) (*models.SwapLogEntry, error) {
	if s.dbManager != nil {
		return s.dbManager.RecordSwapTransition(s.repo, ctx, isp, ip)
	}
	return s.repo.RecordTransition(ctx, isp, ip)
}
