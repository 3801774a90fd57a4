// Package payments talks to the hosted payment-link gateway.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Callback statuses reported by the gateway
const (
	CallbackStatusPaid   = "PAID"
	CallbackStatusFailed = "FAILED"
)

// ErrNotConfigured is returned when no gateway URL was configured
var ErrNotConfigured = errors.New("payment provider URL is not configured")

// MerchantConfig identifies the tenant's merchant account at the gateway
type MerchantConfig struct {
	Provider   string
	MerchantID string
	APIKey     string
}

// LinkRequest describes the checkout the customer will be sent to
type LinkRequest struct {
	Reference     string
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
	Description   string
	CallbackURL   string
}

// LinkResult is the gateway's answer to a link creation
type LinkResult struct {
	LinkID  string `json:"link_id"`
	LinkURL string `json:"link_url"`
}

// Provider creates hosted payment links
type Provider interface {
	CreateLink(ctx context.Context, merchant MerchantConfig, req LinkRequest) (*LinkResult, error)
}

// HTTPProvider is a Provider backed by the gateway's JSON API
type HTTPProvider struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewHTTPProvider creates a provider client. Every call is bounded by timeout.
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type createLinkPayload struct {
	MerchantID    string `json:"merchant_id"`
	Reference     string `json:"reference"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
	Description   string `json:"description,omitempty"`
	CallbackURL   string `json:"callback_url,omitempty"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateLink posts a link request to {baseURL}/links
func (p *HTTPProvider) CreateLink(ctx context.Context, merchant MerchantConfig, req LinkRequest) (*LinkResult, error) {
	if p.baseURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(createLinkPayload{
		MerchantID:    merchant.MerchantID,
		Reference:     req.Reference,
		Amount:        req.Amount.StringFixed(2),
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		Description:   req.Description,
		CallbackURL:   req.CallbackURL,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/links", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+merchant.APIKey)
	httpReq.Header.Set("X-Merchant-ID", merchant.MerchantID)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read payment provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorPayload
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, msg)
	}

	var result LinkResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("invalid payment provider response: %w", err)
	}
	if result.LinkURL == "" {
		return nil, errors.New("payment provider returned an empty link")
	}
	return &result, nil
}
