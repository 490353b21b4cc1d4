package models

import (
	"time"
)

// SwapLogEntry records one detected ISP transition. Rows are never
// deleted; Active flips to false when a newer row supersedes the entry.
// At most one row has Active set at any time, the current uplink.
type SwapLogEntry struct {
	ID        string    `json:"id"`
	ISP       string    `json:"isp"`
	IP        string    `json:"ip"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
