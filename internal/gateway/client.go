package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sirbiscuits1/Marketplace/internal/domain"
	"github.com/Sirbiscuits1/Marketplace/internal/infra"
)

// ErrUnavailable is returned without touching the network while the circuit
// breaker is open.
var ErrUnavailable = errors.New("registry gateway unavailable")

// APIError is a registry response that arrived but reported failure.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("registry error (status %d)", e.Status)
}

// Client talks to the remote listing/asset registry over HTTP+JSON.
// Carries a token bucket and a circuit breaker so a degraded registry is
// felt as fast local failures, not request pileup.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	contentHost string
	limiter     *infra.RateLimiter
	breaker     *infra.CircuitBreaker
}

// NewClient creates a registry client from config.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Gateway.TimeoutSec) * time.Second,
		},
		baseURL:     cfg.Gateway.BaseURL,
		contentHost: cfg.Gateway.ContentHost,
		limiter:     infra.NewRateLimiter(cfg.Gateway.RateLimitBurst, cfg.Gateway.RateLimitPerS),
		breaker:     infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("registry")),
	}
}

// WalletOrdinals fetches every indexed ordinal for an address.
// Retried with backoff: reads are safe to repeat.
func (c *Client) WalletOrdinals(ctx context.Context, address string) (*domain.WalletView, error) {
	var resp walletResponse
	if err := c.getWithRetry(ctx, "/wallet/"+address, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Code: resp.Error, Message: resp.Message}
	}
	return &resp.Data, nil
}

// ActiveListings fetches the registry's active listings collection.
func (c *Client) ActiveListings(ctx context.Context) ([]domain.Listing, error) {
	var resp listingsResponse
	if err := c.getWithRetry(ctx, "/listings", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Code: resp.Error, Message: resp.Message}
	}
	return resp.Listings, nil
}

// CreateListing submits a new listing. Single attempt: mutations are never
// auto-retried, the caller owns re-entry.
func (c *Client) CreateListing(ctx context.Context, req CreateListingRequest) (*domain.Listing, error) {
	var resp createListingResponse
	if err := c.post(ctx, "/listings", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Code: resp.Error, Message: resp.Message}
	}
	return &resp.Listing, nil
}

// CancelListing asks the registry to cancel a listing.
func (c *Client) CancelListing(ctx context.Context, listingID, sellerOrdAddress string) error {
	body := map[string]string{
		"listing_id":         listingID,
		"seller_ord_address": sellerOrdAddress,
	}
	var resp simpleResponse
	if err := c.post(ctx, "/listings/"+listingID+"/cancel", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{Code: resp.Error, Message: resp.Message}
	}
	return nil
}

// NotifySold tells the registry a listing settled on-chain. Best-effort from
// the coordinator's point of view; the error is still returned so the caller
// can log it.
func (c *Client) NotifySold(ctx context.Context, listingID, buyerAddress, txid string) error {
	body := map[string]string{
		"buyer_address": buyerAddress,
		"txid":          txid,
	}
	var resp simpleResponse
	if err := c.post(ctx, "/listings/"+listingID+"/sold", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{Code: resp.Error, Message: resp.Message}
	}
	return nil
}

// Health fetches the registry health snapshot.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getWithRetry(ctx, "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// ContentURL derives the read-only content location for an origin.
func (c *Client) ContentURL(origin string) string {
	return fmt.Sprintf("%s/files/inscriptions/%s", c.contentHost, origin)
}

// getWithRetry performs a GET with up to 3 attempts and exponential backoff.
// API-level failures (success:false) are not retried, only transport errors
// and 5xx responses.
func (c *Client) getWithRetry(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			delay := infra.CalculateBackoff(attempt - 1)
			slog.Debug("Retrying registry GET",
				slog.String("path", path),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.do(ctx, http.MethodGet, path, nil, out)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			return err
		}
		if errors.Is(err, ErrUnavailable) || ctx.Err() != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !c.breaker.Allow() {
		return ErrUnavailable
	}
	c.limiter.Wait()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("read registry response: %w", err)
	}

	if resp.StatusCode >= 500 {
		c.breaker.RecordFailure()
		return &APIError{Status: resp.StatusCode, Message: serverMessage(data)}
	}
	c.breaker.RecordSuccess()

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: serverMessage(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode registry response: %w", err)
		}
	}
	return nil
}

// serverMessage extracts the registry's error message from a failure body,
// falling back to the raw body.
func serverMessage(data []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	if len(data) > 200 {
		data = data[:200]
	}
	return string(data)
}
