package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spec-kit/commerce-service/internal/config"
)

// PaymentItem is one line sent to the payment provider when opening a
// checkout session.
type PaymentItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

// PaymentRequest describes a checkout session to be created at the provider.
type PaymentRequest struct {
	Items         []PaymentItem `json:"items"`
	CustomerEmail string        `json:"customer_email,omitempty"`
	CustomerName  string        `json:"customer_name,omitempty"`
	CustomerPhone string        `json:"customer_phone,omitempty"`
	Reference     string        `json:"external_reference,omitempty"`
	SuccessURL    string        `json:"success_url,omitempty"`
	FailureURL    string        `json:"failure_url,omitempty"`
}

// PaymentSession is the provider's answer: where to send the buyer and the
// provider-side identifier for the session.
type PaymentSession struct {
	PaymentID  string `json:"id"`
	PaymentURL string `json:"init_point"`
}

// PaymentProvider opens checkout sessions at the external payment gateway.
// The ledger itself only learns about outcomes through webhooks.
type PaymentProvider interface {
	CreateSession(ctx context.Context, req PaymentRequest) (*PaymentSession, error)
}

type httpPaymentProvider struct {
	cfg    config.PaymentConfig
	client *http.Client
}

// NewHTTPPaymentProvider builds the real provider client.
func NewHTTPPaymentProvider(cfg config.PaymentConfig) PaymentProvider {
	return &httpPaymentProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
	}
}

func (p *httpPaymentProvider) CreateSession(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	if req.SuccessURL == "" {
		req.SuccessURL = p.cfg.SuccessRedirect
	}
	if req.FailureURL == "" {
		req.FailureURL = p.cfg.FailureRedirect
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIToken)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, string(payload))
	}

	var session PaymentSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decoding provider response: %w", err)
	}
	if session.PaymentURL == "" {
		return nil, fmt.Errorf("provider response missing init_point")
	}
	return &session, nil
}
