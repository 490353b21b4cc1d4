package models

import (
	"time"
)

type GatewayStatus string

const (
	GatewayUp   GatewayStatus = "up"
	GatewayDown GatewayStatus = "down"
)

// GatewayLogEntry is one appended probe result; one row per probe interval.
type GatewayLogEntry struct {
	ID        int64         `json:"id"`
	Status    GatewayStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// GatewayUptime aggregates probe results over a query window.
type GatewayUptime struct {
	WindowDays    int     `json:"window_days"`
	UpCount       int64   `json:"up_count"`
	DownCount     int64   `json:"down_count"`
	UptimePercent float64 `json:"uptime_percent"`
}
