// Package lifi wraps the LI.FI aggregator API: route quoting for single legs
// and status polling for in-flight cross-chain transfers.
package lifi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Client is a thin HTTP wrapper around the LI.FI REST API.
type Client struct {
	baseURL    string
	integrator string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient builds an API client against the given base URL (e.g. https://li.quest/v1).
func NewClient(baseURL, integrator string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		integrator: integrator,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		log:        log,
	}
}

// GetQuote requests one executable route for the pair and amount. Unroutable
// pairs return ErrNoRoute; other API failures return a TransientError.
func (c *Client) GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	q := url.Values{}
	q.Set("fromChain", strconv.FormatInt(req.FromChain, 10))
	q.Set("toChain", strconv.FormatInt(req.ToChain, 10))
	q.Set("fromToken", req.FromToken)
	q.Set("toToken", req.ToToken)
	q.Set("fromAmount", req.FromAmount)
	q.Set("fromAddress", req.FromAddress)
	if req.ToAddress != "" {
		q.Set("toAddress", req.ToAddress)
	}
	if req.Slippage > 0 {
		q.Set("slippage", strconv.FormatFloat(req.Slippage, 'f', -1, 64))
	}
	if c.integrator != "" {
		q.Set("integrator", c.integrator)
	}
	return doRequest[Quote](ctx, c, "/quote", q)
}

// GetStatus polls the transfer state for a submitted source-chain transaction.
func (c *Client) GetStatus(ctx context.Context, txHash string, fromChain, toChain int64) (*Status, error) {
	q := url.Values{}
	q.Set("txHash", txHash)
	q.Set("fromChain", strconv.FormatInt(fromChain, 10))
	q.Set("toChain", strconv.FormatInt(toChain, 10))
	return doRequest[Status](ctx, c, "/status", q)
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func doRequest[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	u := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
			c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Str("message", apiErr.Message).Msg("lifi rejected request")
			return nil, fmt.Errorf("%w: %s", ErrNoRoute, apiErr.Message)
		}
		return nil, &TransientError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
