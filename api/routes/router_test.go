package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cartsvc "github.com/medicart/medicart-backend/internal/cart"
	customersvc "github.com/medicart/medicart-backend/internal/customers"
	ordersvc "github.com/medicart/medicart-backend/internal/orders"
	"github.com/medicart/medicart-backend/pkg/config"
	"github.com/medicart/medicart-backend/pkg/fulfillment"
	"github.com/medicart/medicart-backend/pkg/patients"
	"github.com/medicart/medicart-backend/pkg/types"
	"github.com/medicart/medicart-backend/pkg/userstore"
)

type stubSyncer struct{}

func (stubSyncer) GetByEmail(ctx context.Context, email string) (*userstore.UserRecord, error) {
	return &userstore.UserRecord{ID: 1, Email: email, Cart: []types.CartLine{}}, nil
}

func (stubSyncer) UpdateCart(ctx context.Context, userID int64, cart []types.CartLine) error {
	return nil
}

type stubDirectory struct{}

func (stubDirectory) Search(ctx context.Context, query string) ([]patients.Suggestion, error) {
	return []patients.Suggestion{}, nil
}

func (stubDirectory) Details(ctx context.Context, id string) (*patients.Details, error) {
	return &patients.Details{ID: id, FirstName: "Jane"}, nil
}

type stubSubmitter struct{}

func (stubSubmitter) APIKey() string       { return "test-key" }
func (stubSubmitter) DeliveryType() string { return "delivery" }

func (stubSubmitter) PlaceOrder(ctx context.Context, order fulfillment.OrderRequest) (*fulfillment.OrderConfirmation, error) {
	return &fulfillment.OrderConfirmation{}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	carts, err := cartsvc.NewRegistry(stubSyncer{}, nil)
	if err != nil {
		t.Fatalf("cart registry: %v", err)
	}
	t.Cleanup(func() { carts.Close() })

	sessions, err := customersvc.NewRegistry(customersvc.RegistryOptions{
		Directory: stubDirectory{},
		Search: config.SearchConfig{
			DebounceInterval: 10 * time.Millisecond,
			SessionIdleTTL:   time.Hour,
			SweepInterval:    time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("session registry: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	workflows, err := ordersvc.NewRegistry(ordersvc.RegistryOptions{
		Carts:          carts,
		Sessions:       sessions,
		Submitter:      stubSubmitter{},
		DefaultZipcode: "380013",
	})
	if err != nil {
		t.Fatalf("workflow registry: %v", err)
	}

	return NewRouter(Deps{
		Config:    &config.Config{App: config.AppConfig{Env: config.AppEnvDev}},
		Carts:     carts,
		Sessions:  sessions,
		Workflows: workflows,
	})
}

func TestHealthEndpointsNeedNoOperator(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAPIRoutesRequireOperator(t *testing.T) {
	router := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodGet, "/api/v1/customers/suggestions"},
		{http.MethodPost, "/api/v1/orders/place"},
	}
	for _, tc := range paths {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestCartRoutesWired(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Operator-Email", "op@pharmacy.test")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("fetch: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	body := `{"medicine_id": "m1", "medicine_name": "Paracetamol", "price": 10, "quantity": 1}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req.Header.Set("X-Operator-Email", "op@pharmacy.test")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("add: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/m1", nil)
	req.Header.Set("X-Operator-Email", "op@pharmacy.test")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("remove: expected 200 got %d", resp.Code)
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header on every response")
	}
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	// Identity is checked before routing inside /api/v1, so anonymous
	// requests to unknown paths are rejected rather than 404ed.
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401 got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	req.Header.Set("X-Operator-Email", "op@pharmacy.test")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("identified: expected 404 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("outside api group: expected 404 got %d", resp.Code)
	}
}
