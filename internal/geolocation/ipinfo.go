package geolocation

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/models"
)

const (
	ipifyBaseURL  = "https://api.ipify.org?format=json"
	ipinfoBaseURL = "https://ipinfo.io"
)

type ipifyResponse struct {
	IP string `json:"ip"`
}

type ipinfoResponse struct {
	IP       string `json:"ip"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"` // "lat,lon"
	Org      string `json:"org"` // "AS#### Org Name"
	Timezone string `json:"timezone"`
}

// IPInfoProvider chains two lookups into one logical fetch: the public
// IP is discovered at ipify.org, then geolocated at ipinfo.io.
type IPInfoProvider struct {
	client        *http.Client
	discoverURL   string
	geolocateBase string
}

func NewIPInfoProvider(timeout time.Duration) *IPInfoProvider {
	return &IPInfoProvider{
		client:        newHTTPClient(timeout),
		discoverURL:   ipifyBaseURL,
		geolocateBase: ipinfoBaseURL,
	}
}

func (p *IPInfoProvider) Key() string {
	return "ipinfo"
}

func (p *IPInfoProvider) Fetch(ctx context.Context) (*models.IdentityRecord, error) {
	var discovered ipifyResponse
	if err := getJSON(ctx, p.client, p.discoverURL, &discovered); err != nil {
		return nil, &ProviderError{Provider: p.Key(), Err: err}
	}
	if discovered.IP == "" {
		return nil, &ProviderError{Provider: p.Key(), Err: fmt.Errorf("IP discovery returned empty address")}
	}

	var resp ipinfoResponse
	url := fmt.Sprintf("%s/%s/json", p.geolocateBase, discovered.IP)
	if err := getJSON(ctx, p.client, url, &resp); err != nil {
		return nil, &ProviderError{Provider: p.Key(), Err: err}
	}
	if resp.IP == "" {
		return nil, &ProviderError{Provider: p.Key(), Err: fmt.Errorf("geolocation response missing IP")}
	}

	lat, lon := parseLoc(resp.Loc)

	return &models.IdentityRecord{
		IP:           resp.IP,
		Country:      resp.Country,
		Region:       resp.Region,
		City:         resp.City,
		ISP:          orgName(resp.Org),
		Organization: resp.Org,
		Latitude:     lat,
		Longitude:    lon,
		Timezone:     resp.Timezone,
	}, nil
}

// parseLoc splits ipinfo's "lat,lon" field.
func parseLoc(loc string) (float64, float64) {
	parts := strings.SplitN(loc, ",", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	lat, _ := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, _ := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	return lat, lon
}

// orgName strips the leading AS number from ipinfo's org field.
func orgName(org string) string {
	if strings.HasPrefix(org, "AS") {
		if idx := strings.Index(org, " "); idx > 0 {
			return org[idx+1:]
		}
	}
	return org
}
