package userstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/medicart/medicart-backend/pkg/config"
	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/logger"
	"github.com/medicart/medicart-backend/pkg/types"
)

const serviceName = "userstore"

var (
	errBaseURLRequired = errors.New("user store base url is required")
	errLoggerRequired  = errors.New("user store logger is required")
)

// UserRecord is the remote per-operator record that mirrors the cart.
type UserRecord struct {
	ID    int64            `json:"id"`
	Email string           `json:"email"`
	Cart  []types.CartLine `json:"cart"`
}

// Client talks to the user-record service that backs cart durability.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient validates the configuration and builds the wrapper.
func NewClient(cfg config.UserStoreConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logg,
	}, nil
}

// Ping verifies the service answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users?_limit=1", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	if resp.StatusCode >= 500 {
		return fmt.Errorf("user store unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// GetByEmail resolves the operator's record, or nil when none exists.
func (c *Client) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	endpoint := "/users?email=" + url.QueryEscape(email)
	c.log(ctx, "request", "get_user_by_email", map[string]any{"email": email})

	var records []UserRecord
	if err := c.getJSON(ctx, endpoint, &records); err != nil {
		c.log(ctx, "error", "get_user_by_email", map[string]any{"error": err.Error()})
		return nil, err
	}

	if len(records) == 0 {
		c.log(ctx, "response", "get_user_by_email", map[string]any{"found": false})
		return nil, nil
	}
	record := records[0]
	c.log(ctx, "response", "get_user_by_email", map[string]any{
		"found":     true,
		"user_id":   record.ID,
		"cart_size": len(record.Cart),
	})
	return &record, nil
}

// UpdateCart overwrites the record's cart field wholesale. Empty carts are
// written as an empty list, never null.
func (c *Client) UpdateCart(ctx context.Context, userID int64, cart []types.CartLine) error {
	if cart == nil {
		cart = []types.CartLine{}
	}
	endpoint := fmt.Sprintf("/users/%d", userID)
	c.log(ctx, "request", "update_cart", map[string]any{
		"user_id":   userID,
		"cart_size": len(cart),
	})

	body, err := json.Marshal(map[string]any{"cart": cart})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart update request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", "update_cart", map[string]any{"error": err.Error()})
		return c.wrapTransport(endpoint, err, "update cart")
	}
	defer drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := c.statusError(endpoint, resp, "update cart")
		c.log(ctx, "error", "update_cart", map[string]any{"error": err.Error()})
		return err
	}

	c.log(ctx, "response", "update_cart", map[string]any{"status": resp.StatusCode})
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build user store request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransport(endpoint, err, "query user store")
	}
	defer drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(endpoint, resp, "query user store")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode user store response")
	}
	return nil
}

func (c *Client) wrapTransport(endpoint string, err error, op string) error {
	remote := &pkgerrors.RemoteCallError{
		Service:  serviceName,
		Endpoint: endpoint,
		Err:      err,
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, remote, op+" failed")
}

func (c *Client) statusError(endpoint string, resp *http.Response, op string) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	remote := &pkgerrors.RemoteCallError{
		Service:    serviceName,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Body:       string(snippet),
	}
	return pkgerrors.Wrap(codeForStatus(resp.StatusCode), remote, op+" failed")
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeDependency
	}
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
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("userstore %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Debug(ctx, fmt.Sprintf("userstore %s", phase))
	}
}

func drain(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
