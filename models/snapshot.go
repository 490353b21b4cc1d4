package models

import (
	"time"
)

// SystemMetrics holds host-level counters sampled each cycle.
type SystemMetrics struct {
	CPUPercent    float64 `json:"cpu_percent"`
	LoadAvg       float64 `json:"load_avg"`
	MemTotal      uint64  `json:"mem_total"`
	MemUsed       uint64  `json:"mem_used"`
	UptimeSeconds uint64  `json:"uptime_seconds"`
}

// NetworkMetrics holds uplink throughput counters and external latency.
type NetworkMetrics struct {
	RxBytesTotal  uint64        `json:"rx_bytes_total"`
	TxBytesTotal  uint64        `json:"tx_bytes_total"`
	RxBytesPerSec float64       `json:"rx_bytes_per_sec"`
	TxBytesPerSec float64       `json:"tx_bytes_per_sec"`
	LatencyMs     float64       `json:"latency_ms"`
	GatewayStatus GatewayStatus `json:"gateway_status"`
}

// MetricsSnapshot is one fully-assembled sample. It is replaced
// wholesale each sampling cycle and never partially updated; readers
// always see either the previous snapshot or the new one, complete.
type MetricsSnapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	Identity  IdentityRecord `json:"identity"`
	System    SystemMetrics  `json:"system"`
	Network   NetworkMetrics `json:"network"`
}
