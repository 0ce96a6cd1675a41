package snap

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zaastore/storefront/internal/domain"
	apperrors "github.com/zaastore/storefront/pkg/errors"
)

const (
	// DefaultBaseURL is the Midtrans sandbox host.
	DefaultBaseURL = "https://app.sandbox.midtrans.com"

	// SnapJSPath is the widget script served from the same host; the
	// frontend loads it with the publishable client key.
	SnapJSPath = "/snap/snap.js"

	transactionsPath = "/snap/v1/transactions"

	// fallbackErrMsg stands in when the gateway rejects without a usable
	// error_messages entry.
	fallbackErrMsg = "Gagal membuat transaksi Midtrans"
)

// Doer issues the single outbound POST. The checkout hop runs with retries
// disabled; duplicate submissions with the same order id are the gateway's
// concern.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client creates payment sessions against the Midtrans Snap API.
type Client struct {
	http      Doer
	baseURL   string
	serverKey string
	logger    *slog.Logger
}

// NewClient creates a Snap client. An empty serverKey is allowed at
// construction; the missing credential only fails the requests that need it.
func NewClient(baseURL, serverKey string, doer Doer, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:      doer,
		baseURL:   baseURL,
		serverKey: serverKey,
		logger:    logger,
	}
}

type transactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type transactionRequest struct {
	TransactionDetails transactionDetails     `json:"transaction_details"`
	ItemDetails        []domain.OrderItem     `json:"item_details"`
	CustomerDetails    domain.CustomerDetails `json:"customer_details"`
}

type transactionResponse struct {
	Token         string   `json:"token"`
	ErrorMessages []string `json:"error_messages"`
}

// CreateTransaction posts the order to the gateway and returns the snap
// token. Only the token crosses back; no other gateway response field is
// forwarded. Failures are terminal for the attempt — no retry.
func (c *Client) CreateTransaction(ctx context.Context, order *domain.Order) (string, error) {
	if c.serverKey == "" {
		c.logger.ErrorContext(ctx, "payment gateway server key is not configured")
		return "", apperrors.ConfigMissing("MIDTRANS_SERVER_KEY")
	}

	body, err := json.Marshal(transactionRequest{
		TransactionDetails: transactionDetails{
			OrderID:     order.OrderID,
			GrossAmount: order.GrossAmount,
		},
		ItemDetails:     order.Items,
		CustomerDetails: order.CustomerDetails,
	})
	if err != nil {
		return "", fmt.Errorf("marshal snap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transactionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create snap request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+basicAuth(c.serverKey))

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call payment gateway: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed transactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallbackErrMsg
		if len(parsed.ErrorMessages) > 0 {
			msg = parsed.ErrorMessages[0]
		}
		c.logger.ErrorContext(ctx, "payment gateway rejected transaction",
			slog.String("order_id", order.OrderID),
			slog.Int("status", resp.StatusCode),
			slog.String("gateway_message", msg),
		)
		return "", apperrors.GatewayRejected(msg)
	}

	return parsed.Token, nil
}

// SnapJSURL returns the widget script URL on the configured host.
func (c *Client) SnapJSURL() string {
	return c.baseURL + SnapJSPath
}

// basicAuth encodes the server key as Midtrans expects: the key with a
// trailing colon, base64-encoded.
func basicAuth(serverKey string) string {
	return base64.StdEncoding.EncodeToString([]byte(serverKey + ":"))
}
