package models

import (
	"time"
)

// IdentityRecord holds the resolved public identity of the uplink: the
// public IP, where it terminates, and which ISP owns it. Records are
// immutable once produced; the resolver supersedes them, never mutates.
type IdentityRecord struct {
	IP           string    `json:"ip"`
	Country      string    `json:"country"`
	Region       string    `json:"region"`
	City         string    `json:"city"`
	ISP          string    `json:"isp"`
	Organization string    `json:"organization"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timezone     string    `json:"timezone"`
	Source       string    `json:"source"` // provider key, or "mock" for the sentinel
	ResolvedAt   time.Time `json:"resolved_at"`
}
