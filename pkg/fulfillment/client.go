package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/medicart/medicart-backend/pkg/config"
	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/logger"
)

const (
	serviceName    = "fulfillment"
	placeOrderPath = "/fulfillment/orders/place_order"
)

var (
	errBaseURLRequired = errors.New("fulfillment base url is required")
	errAPIKeyRequired  = errors.New("fulfillment api key is required")
	errLoggerRequired  = errors.New("fulfillment logger is required")
)

// OrderRequest is the outbound payload for order placement. Items is a JSON
// string of {medicine_id, quantity} pairs; pricing and compliance fields stay
// local.
type OrderRequest struct {
	APIKey       string `json:"apikey"`
	Items        string `json:"items"`
	DeliveryType string `json:"delivery_type"`
	PatientName  string `json:"patient_name"`
	Mobile       string `json:"mobile"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zipcode      string `json:"zipcode"`
	FullAddress  string `json:"full_address"`
}

// OrderConfirmation mirrors the fulfillment API response.
type OrderConfirmation struct {
	Data struct {
		OrderID     string `json:"order_id"`
		OrderNumber string `json:"order_number"`
	} `json:"data"`
	Datetime string `json:"datetime"`
}

// Client submits orders to the fulfillment API.
type Client struct {
	baseURL      string
	apiKey       string
	deliveryType string
	httpClient   *http.Client
	logger       *logger.Logger
}

// NewClient validates the credentials and builds the wrapper.
func NewClient(cfg config.FulfillmentConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	deliveryType := strings.TrimSpace(cfg.DeliveryType)
	if deliveryType == "" {
		deliveryType = "delivery"
	}
	return &Client{
		baseURL:      base,
		apiKey:       apiKey,
		deliveryType: deliveryType,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logg,
	}, nil
}

// APIKey returns the configured fulfillment key.
func (c *Client) APIKey() string {
	if c == nil {
		return ""
	}
	return c.apiKey
}

// DeliveryType returns the configured delivery mode.
func (c *Client) DeliveryType() string {
	if c == nil {
		return ""
	}
	return c.deliveryType
}

// PlaceOrder submits the order and returns the confirmation. Failures are
// never retried here; the operator re-triggers explicitly.
func (c *Client) PlaceOrder(ctx context.Context, order OrderRequest) (*OrderConfirmation, error) {
	c.log(ctx, "request", "place_order", map[string]any{
		"patient_name": order.PatientName,
		"mobile":       order.Mobile,
		"zipcode":      order.Zipcode,
	})

	body, err := json.Marshal(order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+placeOrderPath, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", "place_order", map[string]any{"error": err.Error()})
		remote := &pkgerrors.RemoteCallError{Service: serviceName, Endpoint: placeOrderPath, Err: err}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, remote, "place order failed")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		remote := &pkgerrors.RemoteCallError{
			Service:    serviceName,
			Endpoint:   placeOrderPath,
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
		}
		err := pkgerrors.Wrap(pkgerrors.CodeDependency, remote, "place order failed")
		c.log(ctx, "error", "place_order", map[string]any{"error": err.Error()})
		return nil, err
	}

	var confirmation OrderConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&confirmation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order confirmation")
	}

	c.log(ctx, "response", "place_order", map[string]any{
		"order_id":     confirmation.Data.OrderID,
		"order_number": confirmation.Data.OrderNumber,
	})
	return &confirmation, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("fulfillment %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("fulfillment %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"apikey", "mobile", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
