package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/types"
)

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return envelope.Error
}

func TestWriteSuccessEnvelope(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteSuccess(resp, map[string]string{"hello": "world"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["hello"] != "world" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestWriteErrorSurfacesValidationMessage(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteError(context.Background(), nil, resp, pkgerrors.New(pkgerrors.CodeValidation, "Customer name is required."))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	apiErr := decodeError(t, resp)
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected code %q", apiErr.Code)
	}
	if apiErr.Message != "Customer name is required." {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	resp := httptest.NewRecorder()
	cause := errors.New("pgx: connection reset")
	WriteError(context.Background(), nil, resp, pkgerrors.Wrap(pkgerrors.CodeInternal, cause, "query failed"))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	apiErr := decodeError(t, resp)
	if apiErr.Message != "internal server error" {
		t.Fatalf("internal message leaked: %q", apiErr.Message)
	}
}

func TestWriteErrorDependencyKeepsOperatorMessage(t *testing.T) {
	resp := httptest.NewRecorder()
	cause := errors.New("upstream 502")
	WriteError(context.Background(), nil, resp, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "Failed to place order. Please try again later."))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	apiErr := decodeError(t, resp)
	if apiErr.Message != "Failed to place order. Please try again later." {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestWriteErrorUntypedBecomesInternal(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteError(context.Background(), nil, resp, errors.New("boom"))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestWriteErrorIncludesAllowedDetails(t *testing.T) {
	resp := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"quantity": "must be at least 0"})
	WriteError(context.Background(), nil, resp, err)

	apiErr := decodeError(t, resp)
	details, ok := apiErr.Details.(map[string]any)
	if !ok || details["quantity"] != "must be at least 0" {
		t.Fatalf("details missing: %+v", apiErr.Details)
	}
}
