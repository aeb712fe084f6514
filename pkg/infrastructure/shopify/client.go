// Package shopify reads storefront stock and order history from the Shopify
// Admin REST API
package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vsinha/kitinv/pkg/domain/repositories"
)

const (
	accessTokenHeader = "X-Shopify-Access-Token"
	defaultTimeout    = 30 * time.Second
	defaultRetryAfter = time.Second
)

// ErrMissingCredentials is returned when the shop domain or access token is empty
var ErrMissingCredentials = errors.New("shopify shop domain and access token are required")

// APIError is a non-success response other than rate limiting
type APIError struct {
	Endpoint   string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify %s returned status %d", e.Endpoint, e.StatusCode)
}

// Config holds the connection settings for one shop
type Config struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	// BaseURL overrides the URL derived from ShopDomain and APIVersion
	BaseURL           string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client is a paced Shopify Admin API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new Shopify client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.AccessToken == "" || (cfg.ShopDomain == "" && cfg.BaseURL == "") {
		return nil, ErrMissingCredentials
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		host := cfg.ShopDomain
		if !strings.Contains(host, ".") {
			host += ".myshopify.com"
		}
		baseURL = fmt.Sprintf("https://%s/admin/api/%s", host, cfg.APIVersion)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 4
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     logger,
		sleep:      sleepContext,
	}, nil
}

// Verify interface compliance
var (
	_ repositories.ComponentSource = (*Client)(nil)
	_ repositories.OrderSource     = (*Client)(nil)
	_ repositories.Pinger          = (*Client)(nil)
)

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ping checks the credentials against the shop endpoint
func (c *Client) Ping(ctx context.Context) error {
	var body struct {
		Shop *struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if _, err := c.get(ctx, "shop.json", nil, &body); err != nil {
		return err
	}
	if body.Shop == nil {
		return fmt.Errorf("shopify shop.json response has no shop")
	}
	return nil
}

// get issues one paced GET request and decodes the JSON body into out.
// A 429 becomes *repositories.RateLimitedError.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) (http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("shopify rate limiter: %w", err)
	}

	u := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("shopify: create request: %w", err)
	}
	req.Header.Set(accessTokenHeader, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &repositories.RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("shopify %s: decode response: %w", endpoint, err)
	}
	return resp.Header, nil
}

// getWithRetry repeats get while the API answers with 429
func (c *Client) getWithRetry(ctx context.Context, endpoint string, params url.Values, out interface{}) (http.Header, error) {
	for {
		header, err := c.get(ctx, endpoint, params, out)
		var limited *repositories.RateLimitedError
		if !errors.As(err, &limited) {
			return header, err
		}
		wait := limited.RetryAfter
		if wait <= 0 {
			wait = defaultRetryAfter
		}
		c.logger.Info("shopify rate limited, backing off", zap.String("endpoint", endpoint), zap.Duration("wait", wait))
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// parseRetryAfter reads the header as (possibly fractional) seconds
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPageInfo extracts the page_info cursor of the rel="next" link, if any
func nextPageInfo(link string) string {
	m := nextLinkPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	u, err := url.Parse(m[1])
	if err != nil {
		return ""
	}
	return u.Query().Get("page_info")
}
