// Package locations talks to the upstream administrative-region dataset
// service that backs the submission flow's governorate and delegation
// pickers. The dataset changes rarely, so successful fetches are cached for
// the lifetime of the process.
package locations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when upstream has no dataset published.
var ErrNotFound = errors.New("locations: not found")

// Governorate is one first-level region and its delegations.
type Governorate struct {
	Name        string   `json:"name"`
	Delegations []string `json:"delegations"`
}

// Dataset is the published governorate → delegation reference data.
type Dataset struct {
	Version      string        `json:"version"`
	LastUpdated  string        `json:"lastUpdated"`
	Governorates []Governorate `json:"governorates"`
}

// GovernorateNames returns the governorate names in dataset order.
func (d *Dataset) GovernorateNames() []string {
	names := make([]string, 0, len(d.Governorates))
	for _, g := range d.Governorates {
		names = append(names, g.Name)
	}
	return names
}

// DelegationsFor returns the delegations under a governorate; ok is false
// for an unknown name.
func (d *Dataset) DelegationsFor(name string) ([]string, bool) {
	for _, g := range d.Governorates {
		if g.Name == name {
			return g.Delegations, true
		}
	}
	return nil, false
}

// Client defines the contract for fetching the locations dataset.
type Client interface {
	Fetch(ctx context.Context) (*Dataset, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	client  *http.Client
	logger  *log.Logger

	mu     sync.Mutex
	cached *Dataset
}

// NewHTTPClient constructs a new HTTP-backed locations client.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse locations url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Fetch retrieves the dataset, serving the cached copy once one has been
// loaded successfully.
func (c *HTTPClient) Fetch(ctx context.Context) (*Dataset, error) {
	c.mu.Lock()
	if c.cached != nil {
		cached := c.cached
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: "/locations"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var dataset Dataset
		if err := json.NewDecoder(resp.Body).Decode(&dataset); err != nil {
			return nil, fmt.Errorf("decode locations response: %w", err)
		}
		c.mu.Lock()
		c.cached = &dataset
		c.mu.Unlock()
		c.logger.Printf("locations: loaded dataset version %s (%d governorates)", dataset.Version, len(dataset.Governorates))
		return &dataset, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		c.logger.Printf("locations: unexpected status %d", resp.StatusCode)
		return nil, fmt.Errorf("locations: upstream returned %d", resp.StatusCode)
	}
}
