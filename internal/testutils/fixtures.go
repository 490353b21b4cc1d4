package testutils

import (
	"time"

	"github.com/pattr-maidachem/uplink-monitor/models"
)

func CreateTestIdentity() models.IdentityRecord {
	return models.IdentityRecord{
		IP:           "203.0.113.7",
		Country:      "Netherlands",
		Region:       "North Holland",
		City:         "Amsterdam",
		ISP:          "Acme Telecom",
		Organization: "Acme Telecom B.V.",
		Latitude:     52.37,
		Longitude:    4.89,
		Timezone:     "Europe/Amsterdam",
		Source:       "ip-api",
		ResolvedAt:   time.Now(),
	}
}

func CreateTestSnapshot() *models.MetricsSnapshot {
	return &models.MetricsSnapshot{
		Timestamp: time.Now(),
		Identity:  CreateTestIdentity(),
		System: models.SystemMetrics{
			CPUPercent:    12.5,
			LoadAvg:       0.42,
			MemTotal:      8 << 30,
			MemUsed:       3 << 30,
			UptimeSeconds: 3600,
		},
		Network: models.NetworkMetrics{
			RxBytesTotal:  1 << 20,
			TxBytesTotal:  1 << 19,
			RxBytesPerSec: 1024,
			TxBytesPerSec: 512,
			LatencyMs:     8.5,
			GatewayStatus: models.GatewayUp,
		},
	}
}
