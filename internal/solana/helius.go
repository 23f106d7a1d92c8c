package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultEnhancedBaseURL is the Helius Enhanced Transactions API root.
const DefaultEnhancedBaseURL = "https://api.helius.xyz/v0"

// TransactionInfo is one entry from the enhanced transaction listing:
// just enough identity to decide whether a full fetch is needed.
type TransactionInfo struct {
	Signature string
	Slot      int64
	BlockTime int64 // Unix seconds
}

// EnhancedClient lists recent transactions for an address via the Helius
// Enhanced Transactions API. It is the primary signature source for
// polling mode.
type EnhancedClient struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// EnhancedOption configures EnhancedClient.
type EnhancedOption func(*EnhancedClient)

// WithEnhancedBaseURL overrides the API root, used by tests.
func WithEnhancedBaseURL(u string) EnhancedOption {
	return func(c *EnhancedClient) {
		c.baseURL = u
	}
}

// WithEnhancedHTTPClient sets a custom http.Client.
func WithEnhancedHTTPClient(client *http.Client) EnhancedOption {
	return func(c *EnhancedClient) {
		c.client = client
	}
}

// WithEnhancedRateLimit caps listing requests per second.
func WithEnhancedRateLimit(rps float64, burst int) EnhancedOption {
	return func(c *EnhancedClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithEnhancedMaxRetries sets maximum retry attempts.
func WithEnhancedMaxRetries(n int) EnhancedOption {
	return func(c *EnhancedClient) {
		c.maxRetries = n
	}
}

// NewEnhancedClient creates an enhanced API client.
func NewEnhancedClient(apiKey string, opts ...EnhancedOption) *EnhancedClient {
	c := &EnhancedClient{
		baseURL:    DefaultEnhancedBaseURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// enhancedTx is the subset of the enhanced transaction object we consume.
type enhancedTx struct {
	Signature string `json:"signature"`
	Slot      int64  `json:"slot"`
	Timestamp int64  `json:"timestamp"`
}

// ListTransactions returns up to limit recent transactions mentioning the
// address, newest first.
func (c *EnhancedClient) ListTransactions(ctx context.Context, address string, limit int) ([]TransactionInfo, error) {
	u := fmt.Sprintf("%s/addresses/%s/transactions", c.baseURL, url.PathEscape(address))
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u = u + "?" + q.Encode()

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > DefaultMaxDelay {
				delay = DefaultMaxDelay
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		}

		var txs []enhancedTx
		if err := json.Unmarshal(body, &txs); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		infos := make([]TransactionInfo, len(txs))
		for i, tx := range txs {
			infos[i] = TransactionInfo{
				Signature: tx.Signature,
				Slot:      tx.Slot,
				BlockTime: tx.Timestamp,
			}
		}
		return infos, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
