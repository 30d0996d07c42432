// Package finnhub provides a client for the Finnhub market-data API
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://finnhub.io/api/v1"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the QuoteClient interface against Finnhub.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Finnhub client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 response from Finnhub.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("finnhub API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// quoteResponse is the /quote payload.
type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
}

// profileResponse is the /stock/profile2 payload.
type profileResponse struct {
	Name string `json:"name"`
}

// get performs a rate-limited GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Finnhub API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// normalizeSymbol uppercases and trims a ticker defensively; callers do not
// guarantee normalization.
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// GetQuote retrieves a full quote for a symbol, issuing the /quote and
// /stock/profile2 requests concurrently. An all-zero quote body is treated
// as an unknown symbol. All failures surface as models.ErrQuoteUnavailable;
// retries, if any, are the caller's responsibility.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	sym := normalizeSymbol(symbol)
	if sym == "" {
		return nil, fmt.Errorf("%w: empty symbol", models.ErrQuoteUnavailable)
	}

	params := url.Values{}
	params.Set("symbol", sym)

	var (
		quote      quoteResponse
		profile    profileResponse
		quoteErr   error
		profileErr error
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p := url.Values{}
		p.Set("symbol", sym)
		profileErr = c.get(ctx, "/stock/profile2", p, &profile)
	}()

	quoteErr = c.get(ctx, "/quote", params, &quote)
	<-done

	if quoteErr != nil {
		return nil, fmt.Errorf("%w for %s: %v", models.ErrQuoteUnavailable, sym, quoteErr)
	}
	if profileErr != nil {
		return nil, fmt.Errorf("%w for %s: %v", models.ErrQuoteUnavailable, sym, profileErr)
	}

	q := &models.Quote{
		Symbol:        sym,
		CurrentPrice:  quote.Current,
		Change:        quote.Change,
		PercentChange: quote.PercentChange,
		HighPrice:     quote.High,
		LowPrice:      quote.Low,
		OpenPrice:     quote.Open,
		PreviousClose: quote.PreviousClose,
		Name:          profile.Name,
	}

	// Finnhub returns zero-filled fields for unknown symbols rather than
	// an error status.
	if q.IsZero() {
		return nil, fmt.Errorf("%w: no data for symbol %s", models.ErrQuoteUnavailable, sym)
	}

	if q.Name == "" {
		q.Name = sym
	}

	return q, nil
}

// GetPrice retrieves only the current price for a symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	sym := normalizeSymbol(symbol)
	if sym == "" {
		return 0, fmt.Errorf("%w: empty symbol", models.ErrQuoteUnavailable)
	}

	params := url.Values{}
	params.Set("symbol", sym)

	var quote quoteResponse
	if err := c.get(ctx, "/quote", params, &quote); err != nil {
		return 0, fmt.Errorf("%w for %s: %v", models.ErrQuoteUnavailable, sym, err)
	}

	if (&models.Quote{
		CurrentPrice:  quote.Current,
		Change:        quote.Change,
		PercentChange: quote.PercentChange,
		HighPrice:     quote.High,
		LowPrice:      quote.Low,
		OpenPrice:     quote.Open,
		PreviousClose: quote.PreviousClose,
	}).IsZero() {
		return 0, fmt.Errorf("%w: no data for symbol %s", models.ErrQuoteUnavailable, sym)
	}

	return quote.Current, nil
}
