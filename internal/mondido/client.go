// Package mondido is the HTTP client for the Mondido transaction API. One
// synchronous call per checkout, no retries: a failure is surfaced
// immediately for display on the receipt page.
package mondido

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mondido/hosted-checkout/internal"
	"github.com/mondido/hosted-checkout/internal/checkout"
)

const transactionsPath = "/v1/transactions"

type Client struct {
	httpClient *http.Client
	apiBase    string
	merchantID string
	password   string
	logger     *slog.Logger
}

func NewClient(cfg internal.GatewayConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiBase:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		merchantID: cfg.MerchantID,
		password:   cfg.Password,
		logger:     logger,
	}
}

// CreateTransaction posts the session request form-encoded with Basic auth
// merchant_id:password. A 200 with an href yields the hosted payment URL;
// anything else maps onto the transport/API error taxonomy.
func (c *Client) CreateTransaction(ctx context.Context, req *checkout.SessionRequest) (*checkout.SessionResponse, error) {
	form := req.EncodeForm()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+transactionsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, internal.NewRemoteTransportError(err)
	}

	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(c.merchantID, c.password)

	c.logger.Info("creating checkout session",
		"payment_ref", req.PaymentRef,
		"amount", req.Amount,
		"currency", req.Currency,
		"test", req.Test)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("checkout session request failed", "error", err, "payment_ref", req.PaymentRef)
		return nil, internal.NewRemoteTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read checkout session response", "error", err, "payment_ref", req.PaymentRef)
		return nil, internal.NewRemoteTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr checkout.ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Description != "" {
			c.logger.Warn("checkout session rejected",
				"payment_ref", req.PaymentRef,
				"status_code", resp.StatusCode,
				"description", apiErr.Description)
			return nil, internal.NewRemoteAPIError(apiErr.Description)
		}

		c.logger.Warn("checkout session rejected with unparseable body",
			"payment_ref", req.PaymentRef,
			"status_code", resp.StatusCode)
		return nil, internal.NewRemoteAPIError(string(body))
	}

	var session checkout.SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, internal.NewRemoteAPIError(string(body))
	}

	c.logger.Info("checkout session created",
		"payment_ref", req.PaymentRef,
		"transaction_id", session.ID,
		"status", session.Status)

	return &session, nil
}
