package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/ppiankov/leadradar/internal/model"
)

// Client is a RawSource backed by the Realie public property API. It walks
// limit/offset pages until maxRecords is reached or the provider runs dry,
// pacing requests through a rate limiter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	pageSize   int
	limiter    *rate.Limiter
}

// NewClient builds a provider client from configuration
func NewClient(cfg model.HTTPConfig) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: newProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
		},
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		pageSize:  pageSize,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// FetchAll paginates through the provider until maxRecords is collected, a
// page comes back short, or a page comes back empty
func (c *Client) FetchAll(ctx context.Context, maxRecords int) ([]model.RawRecord, error) {
	if maxRecords <= 0 {
		return nil, nil
	}

	var collected []model.RawRecord
	offset := 0
	for {
		remaining := maxRecords - len(collected)
		if remaining <= 0 {
			break
		}

		chunk, err := c.fetchPage(ctx, min(c.pageSize, remaining), offset)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}

		collected = append(collected, chunk...)
		offset += len(chunk)

		if len(chunk) < c.pageSize {
			break
		}
	}
	return collected, nil
}

// propertiesPayload is the provider's page envelope
type propertiesPayload struct {
	Properties []model.RawRecord `json:"properties"`
}

func (c *Client) fetchPage(ctx context.Context, limit, offset int) ([]model.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	query := req.URL.Query()
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	req.URL.RawQuery = query.Encode()

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch properties page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected provider status %d: %s", resp.StatusCode, string(body))
	}

	var payload propertiesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode properties page: %w", err)
	}
	return payload.Properties, nil
}

// newProxyFunc selects a proxy per request scheme, falling back to the
// environment when nothing is configured
func newProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}
	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
