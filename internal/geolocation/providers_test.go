package geolocation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPAPIProviderMapsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"status": "success",
			"query": "1.2.3.4",
			"country": "Netherlands",
			"regionName": "North Holland",
			"city": "Amsterdam",
			"isp": "Acme Telecom",
			"org": "Acme Telecom B.V.",
			"lat": 52.37,
			"lon": 4.89,
			"timezone": "Europe/Amsterdam"
		}`)
	}))
	defer server.Close()

	provider := NewIPAPIProvider(time.Second)
	provider.baseURL = server.URL

	record, err := provider.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.2.3.4", record.IP)
	assert.Equal(t, "Acme Telecom", record.ISP)
	assert.Equal(t, "North Holland", record.Region)
	assert.Equal(t, 52.37, record.Latitude)
	assert.Equal(t, "Europe/Amsterdam", record.Timezone)
}

func TestIPAPIProviderFailsOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "fail", "message": "private range"}`)
	}))
	defer server.Close()

	provider := NewIPAPIProvider(time.Second)
	provider.baseURL = server.URL

	_, err := provider.Fetch(context.Background())
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "ip-api", provErr.Provider)
}

func TestIPAPIProviderFailsOnBadStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewIPAPIProvider(time.Second)
	provider.baseURL = server.URL

	_, err := provider.Fetch(context.Background())
	assert.Error(t, err)
}

func TestIPAPIProviderFailsOnMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer server.Close()

	provider := NewIPAPIProvider(time.Second)
	provider.baseURL = server.URL

	_, err := provider.Fetch(context.Background())
	assert.Error(t, err)
}

func TestIPWhoisProviderMapsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"success": true,
			"ip": "1.2.3.4",
			"country": "Netherlands",
			"region": "North Holland",
			"city": "Amsterdam",
			"latitude": 52.37,
			"longitude": 4.89,
			"timezone": {"id": "Europe/Amsterdam"},
			"connection": {"isp": "Acme Telecom", "org": "Acme"}
		}`)
	}))
	defer server.Close()

	provider := NewIPWhoisProvider(time.Second)
	provider.baseURL = server.URL

	record, err := provider.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Acme Telecom", record.ISP)
	assert.Equal(t, "Europe/Amsterdam", record.Timezone)
	assert.Equal(t, 4.89, record.Longitude)
}

func TestIPWhoisProviderFailsOnUnsuccessfulLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": false, "message": "reserved range"}`)
	}))
	defer server.Close()

	provider := NewIPWhoisProvider(time.Second)
	provider.baseURL = server.URL

	_, err := provider.Fetch(context.Background())
	assert.Error(t, err)
}

func TestIPInfoProviderChainsDiscoveryAndGeolocation(t *testing.T) {
	discovery := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ip": "1.2.3.4"}`)
	}))
	defer discovery.Close()

	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.2.3.4/json", r.URL.Path)
		fmt.Fprint(w, `{
			"ip": "1.2.3.4",
			"city": "Amsterdam",
			"region": "North Holland",
			"country": "NL",
			"loc": "52.3700,4.8900",
			"org": "AS12345 Acme Telecom",
			"timezone": "Europe/Amsterdam"
		}`)
	}))
	defer geo.Close()

	provider := NewIPInfoProvider(time.Second)
	provider.discoverURL = discovery.URL
	provider.geolocateBase = geo.URL

	record, err := provider.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.2.3.4", record.IP)
	assert.Equal(t, "Acme Telecom", record.ISP, "AS prefix is stripped from the org field")
	assert.Equal(t, "AS12345 Acme Telecom", record.Organization)
	assert.Equal(t, 52.37, record.Latitude)
	assert.Equal(t, 4.89, record.Longitude)
}

func TestIPInfoProviderFailsWhenDiscoveryFails(t *testing.T) {
	geoCalled := false
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		geoCalled = true
	}))
	defer geo.Close()

	discovery := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer discovery.Close()

	provider := NewIPInfoProvider(time.Second)
	provider.discoverURL = discovery.URL
	provider.geolocateBase = geo.URL

	_, err := provider.Fetch(context.Background())
	assert.Error(t, err)
	assert.False(t, geoCalled, "the geolocation leg must not run when IP discovery fails")
}

func TestSeeIPProviderChainsIntoIPAPI(t *testing.T) {
	discovery := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ip": "5.6.7.8"}`)
	}))
	defer discovery.Close()

	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/5.6.7.8", r.URL.Path)
		fmt.Fprint(w, `{"status": "success", "query": "5.6.7.8", "isp": "Globex"}`)
	}))
	defer geo.Close()

	provider := NewSeeIPProvider(time.Second)
	provider.discoverURL = discovery.URL
	provider.geolocateBase = geo.URL

	record, err := provider.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "5.6.7.8", record.IP)
	assert.Equal(t, "Globex", record.ISP)
}
