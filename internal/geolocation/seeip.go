package geolocation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/models"
)

const seeIPBaseURL = "https://api.seeip.org/jsonip"

type seeIPResponse struct {
	IP string `json:"ip"`
}

// SeeIPProvider chains IP discovery at seeip.org with a
// geolocation-by-IP lookup at ip-api.com, as one logical fetch.
type SeeIPProvider struct {
	client        *http.Client
	discoverURL   string
	geolocateBase string
}

func NewSeeIPProvider(timeout time.Duration) *SeeIPProvider {
	return &SeeIPProvider{
		client:        newHTTPClient(timeout),
		discoverURL:   seeIPBaseURL,
		geolocateBase: ipAPIBaseURL,
	}
}

func (p *SeeIPProvider) Key() string {
	return "seeip"
}

func (p *SeeIPProvider) Fetch(ctx context.Context) (*models.IdentityRecord, error) {
	var discovered seeIPResponse
	if err := getJSON(ctx, p.client, p.discoverURL, &discovered); err != nil {
		return nil, &ProviderError{Provider: p.Key(), Err: err}
	}
	if discovered.IP == "" {
		return nil, &ProviderError{Provider: p.Key(), Err: fmt.Errorf("IP discovery returned empty address")}
	}

	var resp ipAPIResponse
	url := fmt.Sprintf("%s/%s", p.geolocateBase, discovered.IP)
	if err := getJSON(ctx, p.client, url, &resp); err != nil {
		return nil, &ProviderError{Provider: p.Key(), Err: err}
	}

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
