package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/models"
)

// Provider is one external identity lookup source. Fetch performs a
// single logical lookup; chained providers (IP discovery followed by
// geolocation-by-IP) still count as one fetch. Providers never retry
// internally; retry and fallback policy lives in the resolver.
type Provider interface {
	Key() string
	Fetch(ctx context.Context) (*models.IdentityRecord, error)
}

// ProviderError reports a failed lookup from a single provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// newHTTPClient returns the client used for provider requests. The
// client timeout is the only bound on a lookup; there is no cooperative
// cancellation beyond the request context.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// getJSON issues a GET request and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", url, err)
	}
	return nil
}
