package patients

import (
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
)

const serviceName = "patients"

var (
	errBaseURLRequired = errors.New("patient directory base url is required")
	errLoggerRequired  = errors.New("patient directory logger is required")
)

// Suggestion is the trimmed directory entry shown in the name dropdown.
type Suggestion struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Details is the full patient record resolved after a suggestion is picked.
type Details struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Mobile    string `json:"mobile"`
	Zipcode   string `json:"zipcode"`
}

// DisplayName is the name reflected back into the input field on selection.
func (d Details) DisplayName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Client queries the patient directory service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient validates the configuration and builds the wrapper.
func NewClient(cfg config.PatientsConfig, logg *logger.Logger) (*Client, error) {
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

// Ping verifies the directory answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/patients?_limit=1", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	if resp.StatusCode >= 500 {
		return fmt.Errorf("patient directory unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Search runs a first-name prefix match. Empty queries short-circuit to an
// empty list without touching the network, and result order is the server's.
func (c *Client) Search(ctx context.Context, query string) ([]Suggestion, error) {
	if strings.TrimSpace(query) == "" {
		return []Suggestion{}, nil
	}

	endpoint := "/patients?firstName_like=" + url.QueryEscape(query)
	c.log(ctx, "request", "search_patients", map[string]any{"query": query})

	var suggestions []Suggestion
	if err := c.getJSON(ctx, endpoint, &suggestions); err != nil {
		c.log(ctx, "error", "search_patients", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "search_patients", map[string]any{"count": len(suggestions)})
	return suggestions, nil
}

// Details resolves the full record for a directory id.
func (c *Client) Details(ctx context.Context, id string) (*Details, error) {
	endpoint := "/patients/" + url.PathEscape(id)
	c.log(ctx, "request", "patient_details", map[string]any{"patient_id": id})

	var details Details
	if err := c.getJSON(ctx, endpoint, &details); err != nil {
		c.log(ctx, "error", "patient_details", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "patient_details", map[string]any{"patient_id": details.ID})
	return &details, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build patient directory request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		remote := &pkgerrors.RemoteCallError{Service: serviceName, Endpoint: endpoint, Err: err}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, remote, "query patient directory failed")
	}
	defer drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		remote := &pkgerrors.RemoteCallError{
			Service:    serviceName,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
		}
		code := pkgerrors.CodeDependency
		if resp.StatusCode == http.StatusNotFound {
			code = pkgerrors.CodeNotFound
		}
		return pkgerrors.Wrap(code, remote, "query patient directory failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode patient directory response")
	}
	return nil
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
		c.logger.Error(ctx, fmt.Sprintf("patients %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Debug(ctx, fmt.Sprintf("patients %s", phase))
	}
}

func drain(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
