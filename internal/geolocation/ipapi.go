package geolocation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/models"
)

const ipAPIBaseURL = "http://ip-api.com/json"

type ipAPIResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Query      string  `json:"query"`
	Country    string  `json:"country"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
	ISP        string  `json:"isp"`
	Org        string  `json:"org"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Timezone   string  `json:"timezone"`
}

// IPAPIProvider looks up the caller's identity directly at ip-api.com.
type IPAPIProvider struct {
	client  *http.Client
	baseURL string
}

func NewIPAPIProvider(timeout time.Duration) *IPAPIProvider {
	return &IPAPIProvider{
		client:  newHTTPClient(timeout),
		baseURL: ipAPIBaseURL,
	}
}

func (p *IPAPIProvider) Key() string {
	return "ip-api"
}

func (p *IPAPIProvider) Fetch(ctx context.Context) (*models.IdentityRecord, error) {
	var resp ipAPIResponse
	if err := getJSON(ctx, p.client, p.baseURL, &resp); err != nil {
		return nil, &ProviderError{Provider: p.Key(), Err: err}
	}
	return p.toRecord(&resp)
}

func (p *IPAPIProvider) toRecord(resp *ipAPIResponse) (*models.IdentityRecord, error) {
	if resp.Status != "success" {
		return nil, &ProviderError{Provider: p.Key(), Err: fmt.Errorf("lookup failed: %s", resp.Message)}
	}
	if resp.Query == "" {
		return nil, &ProviderError{Provider: p.Key(), Err: fmt.Errorf("response missing IP")}
	}

	return &models.IdentityRecord{
		IP:           resp.Query,
		Country:      resp.Country,
		Region:       resp.RegionName,
		City:         resp.City,
		ISP:          resp.ISP,
		Organization: resp.Org,
		Latitude:     resp.Lat,
		Longitude:    resp.Lon,
		Timezone:     resp.Timezone,
	}, nil
}
