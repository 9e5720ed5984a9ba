// Package payment reconciles online payments with bookings.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ukydev/scooter-rental/internal/apperror"
)

const (
	sandboxBaseURL    = "https://sandbox.cashfree.com/pg"
	productionBaseURL = "https://api.cashfree.com/pg"
	defaultAPIVersion = "2023-08-01"
	defaultTimeout    = 10 * time.Second
)

// Order statuses reported by the provider.
const (
	StatusActive      = "ACTIVE"
	StatusPaid        = "PAID"
	StatusPending     = "PENDING"
	StatusFailed      = "FAILED"
	StatusCancelled   = "CANCELLED"
	StatusUserDropped = "USER_DROPPED"
	StatusExpired     = "EXPIRED"
)

// IsFinalFailure reports whether status means the order can never be paid.
func IsFinalFailure(status string) bool {
	switch strings.ToUpper(status) {
	case StatusFailed, StatusCancelled, StatusUserDropped, StatusExpired:
		return true
	}
	return false
}

// OrderRequest is what the provider needs to open a checkout session.
type OrderRequest struct {
	OrderID       string
	Amount        float64
	Currency      string
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// ProviderOrder is the provider's view of an order.
type ProviderOrder struct {
	OrderID   string  `json:"order_id"`
	Amount    float64 `json:"order_amount"`
	Currency  string  `json:"order_currency"`
	Status    string  `json:"order_status"`
	SessionID string  `json:"payment_session_id"`
}

// Provider is the external payment gateway.
type Provider interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*ProviderOrder, error)
	GetOrder(ctx context.Context, orderID string) (*ProviderOrder, error)
}

// CashfreeConfig holds gateway credentials.
type CashfreeConfig struct {
	AppID      string
	SecretKey  string
	Env        string
	APIVersion string
	Timeout    time.Duration
	// BaseURL overrides the environment derived endpoint.
	BaseURL string
}

// CashfreeClient talks to the Cashfree PG REST API.
type CashfreeClient struct {
	cfg     CashfreeConfig
	baseURL string
	client  *http.Client
}

// NewCashfreeClient returns a client for the configured environment.
func NewCashfreeClient(cfg CashfreeConfig) *CashfreeClient {
	base := cfg.BaseURL
	if base == "" {
		base = sandboxBaseURL
		if strings.EqualFold(cfg.Env, "production") {
			base = productionBaseURL
		}
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &CashfreeClient{
		cfg:     cfg,
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone"`
}

type createOrderBody struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
}

// CreateOrder opens an order and returns its payment session.
func (c *CashfreeClient) CreateOrder(ctx context.Context, req OrderRequest) (*ProviderOrder, error) {
	body, err := json.Marshal(createOrderBody{
		OrderID:       req.OrderID,
		OrderAmount:   req.Amount,
		OrderCurrency: req.Currency,
		CustomerDetails: customerDetails{
			CustomerID:    req.CustomerID,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
		},
	})
	if err != nil {
		return nil, apperror.Provider("encode order", err)
	}
	var out ProviderOrder
	if err := c.do(ctx, http.MethodPost, "/orders", body, &out); err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, apperror.Provider("provider returned no payment session", nil)
	}
	return &out, nil
}

// GetOrder fetches the provider's view of an order.
func (c *CashfreeClient) GetOrder(ctx context.Context, orderID string) (*ProviderOrder, error) {
	var out ProviderOrder
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &out); err != nil {
		return nil, err
	}
	if out.Status == "" {
		return nil, apperror.Provider("provider returned no order status", nil)
	}
	return &out, nil
}

func (c *CashfreeClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperror.Provider("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client-id", c.cfg.AppID)
	req.Header.Set("x-client-secret", c.cfg.SecretKey)
	req.Header.Set("x-api-version", c.cfg.APIVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return apperror.Provider("payment provider unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperror.Provider("read provider response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pe struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		_ = json.Unmarshal(raw, &pe)
		msg := pe.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return apperror.Provider(fmt.Sprintf("payment provider returned %d", resp.StatusCode), fmt.Errorf("%s %s", pe.Code, msg))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.Provider("decode provider response", err)
	}
	return nil
}

// Sign returns base64(HMAC-SHA256(secret, body)), the x-webhook-signature value.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}
