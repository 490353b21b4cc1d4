package geolocation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/models"
)

const ipWhoisBaseURL = "https://ipwho.is/"

type ipWhoisResponse struct {
	Success   bool    `json:"success"`
	Message   string  `json:"message"`
	IP        string  `json:"ip"`
	Country   string  `json:"country"`
	Region    string  `json:"region"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  struct {
		ID string `json:"id"`
	} `json:"timezone"`
	Connection struct {
		ISP string `json:"isp"`
		Org string `json:"org"`
	} `json:"connection"`
}

// IPWhoisProvider looks up the caller's identity directly at ipwho.is.
type IPWhoisProvider struct {
	client  *http.Client
	baseURL string
}

func NewIPWhoisProvider(timeout time.Duration) *IPWhoisProvider {
	return &IPWhoisProvider{
		client:  newHTTPClient(timeout),
		baseURL: ipWhoisBaseURL,
	}
}

func (p *IPWhoisProvider) Key() string {
	return "ipwhois"
}

func (p *IPWhoisProvider) Fetch(ctx context.Context) (*models.IdentityRecord, error) {
	var resp ipWhoisResponse
	if err := getJSON(ctx, p.client, p.baseURL, &resp); err != nil {
		return nil, &ProviderError{Provider: p.Key(), Err: err}
	}

	if !resp.Success {
		return nil, &ProviderError{Provider: p.Key(), Err: fmt.Errorf("lookup failed: %s", resp.Message)}
	}
	if resp.IP == "" {
		return nil, &ProviderError{Provider: p.Key(), Err: fmt.Errorf("response missing IP")}
	}

	return &models.IdentityRecord{
		IP:           resp.IP,
		Country:      resp.Country,
		Region:       resp.Region,
		City:         resp.City,
		ISP:          resp.Connection.ISP,
		Organization: resp.Connection.Org,
		Latitude:     resp.Latitude,
		Longitude:    resp.Longitude,
		Timezone:     resp.Timezone.ID,
	}, nil
}
