package gateway

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pattr-maidachem/uplink-monitor/db"
	"github.com/pattr-maidachem/uplink-monitor/internal/testutils"
	"github.com/pattr-maidachem/uplink-monitor/models"
)

func setupService(t *testing.T, target string) (*GatewayService, db.GatewayLogRepository) {
	factory, cleanup := testutils.SetupTestRepositoryFactory(t)
	t.Cleanup(cleanup)

	repo := factory.NewGatewayLogRepository()
	service := NewGatewayService(repo, nil, target, 500*time.Millisecond, time.Minute)
	return service, repo
}

func TestProbeUpOnListeningTarget(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	service, _ := setupService(t, ln.Addr().String())
	assert.Equal(t, models.GatewayUp, service.Probe())
}

func TestProbeDownOnClosedTarget(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	target := ln.Addr().String()
	ln.Close()

	service, _ := setupService(t, target)
	assert.Equal(t, models.GatewayDown, service.Probe(), "a refused connection is down, not an error")
}

func TestProbeAndPersistAppendsLogEntry(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	service, repo := setupService(t, ln.Addr().String())
	ctx := context.Background()

	service.probeAndPersist()
	service.probeAndPersist()

	latest, err := repo.FindLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.GatewayUp, latest.Status)

	count, err := repo.CountByStatusSince(ctx, models.GatewayUp, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "one row per probe cycle")
}

func TestUptimeAggregatesWindow(t *testing.T) {
	service, repo := setupService(t, "127.0.0.1:1")
	ctx := context.Background()

	now := time.Now()
	entries := []*models.GatewayLogEntry{
		{Status: models.GatewayUp, CreatedAt: now.Add(-time.Hour)},
		{Status: models.GatewayUp, CreatedAt: now.Add(-30 * time.Minute)},
		{Status: models.GatewayDown, CreatedAt: now.Add(-10 * time.Minute)},
		// Outside the 7-day window, must be excluded
		{Status: models.GatewayDown, CreatedAt: now.AddDate(0, 0, -8)},
	}
	for _, entry := range entries {
		require.NoError(t, repo.Create(ctx, entry))
	}

	uptime, err := service.Uptime(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, uptime.WindowDays)
	assert.Equal(t, int64(2), uptime.UpCount)
	assert.Equal(t, int64(1), uptime.DownCount)
	assert.InDelta(t, 66.67, uptime.UptimePercent, 0.1)
}

func TestStatusOnEmptyLog(t *testing.T) {
	service, _ := setupService(t, "127.0.0.1:1")

	_, err := service.Status(context.Background())
	assert.Equal(t, db.ErrNotFound, err)
}

// failingGatewayRepo rejects every write while recording what the
// service attempted to persist.
type failingGatewayRepo struct {
	createErr error
	statuses  []models.GatewayStatus
}

func (r *failingGatewayRepo) Create(_ context.Context, entry *models.GatewayLogEntry) error {
	r.statuses = append(r.statuses, entry.Status)
	return r.createErr
}

func (r *failingGatewayRepo) FindLatest(context.Context) (*models.GatewayLogEntry, error) {
	return nil, db.ErrNotFound
}

func (r *failingGatewayRepo) CountByStatusSince(context.Context, models.GatewayStatus, time.Time) (int64, error) {
	return 0, nil
}

func (r *failingGatewayRepo) UptimeSince(context.Context, time.Time) (*models.GatewayUptime, error) {
	return &models.GatewayUptime{}, nil
}

func (r *failingGatewayRepo) Close() error { return nil }

func TestPersistFailureFallsBackToDownWrite(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	repo := &failingGatewayRepo{createErr: errors.New("disk full")}
	service := NewGatewayService(repo, nil, ln.Addr().String(), 500*time.Millisecond, time.Minute)

	// Must not panic or propagate; the failure is logged and swallowed
	service.probeAndPersist()

	require.Len(t, repo.statuses, 2, "an up result whose persist fails is retried once as a down write")
	assert.Equal(t, models.GatewayUp, repo.statuses[0])
	assert.Equal(t, models.GatewayDown, repo.statuses[1])
}

func TestPersistFailureOnDownResultGivesUp(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	target := ln.Addr().String()
	ln.Close()

	repo := &failingGatewayRepo{createErr: errors.New("disk full")}
	service := NewGatewayService(repo, nil, target, 500*time.Millisecond, time.Minute)

	service.probeAndPersist()

	require.Len(t, repo.statuses, 1, "a failed down write has nothing to downgrade to")
	assert.Equal(t, models.GatewayDown, repo.statuses[0])
}
