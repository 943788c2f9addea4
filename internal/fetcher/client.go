// Package fetcher pulls odds snapshots from the upstream odds API.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fairline/fairline/internal/ingest"
	"github.com/fairline/fairline/pkg/models"
)

// Client fetches games with odds from an Odds-API compatible endpoint.
type Client struct {
	baseURL string
	apiKey  string
	regions string
	markets string
	http    *http.Client
	workers int
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithMarkets sets the market keys requested from the upstream.
func WithMarkets(markets []string) Option {
	return func(c *Client) { c.markets = strings.Join(markets, ",") }
}

// WithWorkers bounds the number of concurrent sport fetches in FetchAll.
func WithWorkers(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.workers = n
		}
	}
}

// NewClient creates an odds API client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		regions: "us",
		markets: strings.Join([]string{"h2h", "spreads", "totals"}, ","),
		http:    &http.Client{Timeout: 15 * time.Second},
		workers: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRaw returns the raw odds payload for one sport, exactly as the
// upstream sent it. The snapshot cache stores this form so re-normalization
// stays possible.
func (c *Client) FetchRaw(ctx context.Context, sportKey string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/odds", c.baseURL, url.PathEscape(sportKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	q := req.URL.Query()
	q.Set("apiKey", c.apiKey)
	q.Set("regions", c.regions)
	q.Set("markets", c.markets)
	q.Set("oddsFormat", "american")
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch odds for %s: %w", sportKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch odds for %s: status %d: %s", sportKey, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read odds body for %s: %w", sportKey, err)
	}
	return payload, nil
}

// FetchGames fetches and normalizes the snapshot for one sport.
func (c *Client) FetchGames(ctx context.Context, sportKey string) ([]models.Game, error) {
	payload, err := c.FetchRaw(ctx, sportKey)
	if err != nil {
		return nil, err
	}
	return ingest.Games(payload)
}

// ListSports returns the active sport keys known to the upstream.
func (c *Client) ListSports(ctx context.Context) ([]string, error) {
	endpoint := c.baseURL + "/sports"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	q := req.URL.Query()
	q.Set("apiKey", c.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sports: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sports: status %d", resp.StatusCode)
	}

	var sports []struct {
		Key    string `json:"key"`
		Active bool   `json:"active"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sports); err != nil {
		return nil, fmt.Errorf("decode sports: %w", err)
	}

	keys := make([]string, 0, len(sports))
	for _, s := range sports {
		if s.Active {
			keys = append(keys, s.Key)
		}
	}
	return keys, nil
}

// SportResult is one sport's outcome from a FetchAll pass.
type SportResult struct {
	SportKey string
	Payload  []byte
	Games    []models.Game
	Err      error
}

// FetchAll fetches every sport concurrently through a bounded worker pool.
// Results arrive in sports order; a failed sport carries its error instead
// of aborting the pass.
func (c *Client) FetchAll(ctx context.Context, sports []string) []SportResult {
	results := make([]SportResult, len(sports))

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for i, sport := range sports {
		wg.Add(1)
		go func(i int, sport string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			res := SportResult{SportKey: sport}
			res.Payload, res.Err = c.FetchRaw(ctx, sport)
			if res.Err == nil {
				res.Games, res.Err = ingest.Games(res.Payload)
			}
			results[i] = res
		}(i, sport)
	}

	wg.Wait()
	return results
}
