package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pattr-maidachem/uplink-monitor/internal/testutils"
	"github.com/pattr-maidachem/uplink-monitor/models"
)

type fakeSampler struct {
	snapshot *models.MetricsSnapshot
	err      error
	panics   bool
	calls    int
}

func (s *fakeSampler) Sample(ctx context.Context) (*models.MetricsSnapshot, error) {
	s.calls++
	if s.panics {
		panic("sampler exploded")
	}
	return s.snapshot, s.err
}

func TestCurrentIsNilBeforeFirstSuccessfulCycle(t *testing.T) {
	service := NewMonitorService(&fakeSampler{err: errors.New("down")}, time.Second)
	service.runCycle()

	assert.Nil(t, service.Current())
}

func TestSuccessfulCyclePublishesSnapshot(t *testing.T) {
	snapshot := testutils.CreateTestSnapshot()
	service := NewMonitorService(&fakeSampler{snapshot: snapshot}, time.Second)

	service.runCycle()

	current := service.Current()
	require.NotNil(t, current)
	assert.Equal(t, snapshot.Identity.ISP, current.Identity.ISP)
}

func TestFailedCycleKeepsPreviousSnapshot(t *testing.T) {
	snapshot := testutils.CreateTestSnapshot()
	sampler := &fakeSampler{snapshot: snapshot}
	service := NewMonitorService(sampler, time.Second)

	service.runCycle()

	sampler.snapshot = nil
	sampler.err = errors.New("sub-fetch exhausted")
	service.runCycle()

	current := service.Current()
	require.NotNil(t, current, "a failed cycle must leave the previous snapshot published")
	assert.Equal(t, snapshot.Identity.ISP, current.Identity.ISP)
}

func TestPanickingCycleIsFatalToThatCycleOnly(t *testing.T) {
	snapshot := testutils.CreateTestSnapshot()
	sampler := &fakeSampler{snapshot: snapshot}
	service := NewMonitorService(sampler, time.Second)

	service.runCycle()

	sampler.panics = true
	assert.NotPanics(t, func() { service.runCycle() })

	require.NotNil(t, service.Current())
}

func TestCurrentReturnsACopy(t *testing.T) {
	service := NewMonitorService(&fakeSampler{snapshot: testutils.CreateTestSnapshot()}, time.Second)
	service.runCycle()

	first := service.Current()
	first.Identity.ISP = "mutated"

	second := service.Current()
	assert.NotEqual(t, "mutated", second.Identity.ISP, "readers must not be able to mutate the published snapshot")
}

func TestRunStopsOnDone(t *testing.T) {
	sampler := &fakeSampler{snapshot: testutils.CreateTestSnapshot()}
	service := NewMonitorService(sampler, 10*time.Millisecond)

	done := make(chan bool)
	finished := make(chan struct{})
	go func() {
		service.Run(done)
		close(finished)
	}()

	time.Sleep(50 * time.Millisecond)
	close(done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("monitoring loop did not stop")
	}

	assert.GreaterOrEqual(t, sampler.calls, 2, "the loop must sample on each tick")
}
