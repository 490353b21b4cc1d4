//go:build !linux

package metrics

import (
	"github.com/pattr-maidachem/uplink-monitor/models"
)

// Non-Linux hosts report zeroed counters; the snapshot stays complete.

func collectSystemMetrics() (models.SystemMetrics, error) {
	return models.SystemMetrics{}, nil
}

func readNetworkCounters() (netCounters, error) {
	return netCounters{}, nil
}
