package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewAndAccessors(t *testing.T) {
	err := New(CodeValidation, "name is required")

	if err.Code() != CodeValidation {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Message() != "name is required" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if got := err.Error(); got != "VALIDATION_ERROR: name is required" {
		t.Fatalf("unexpected Error() %q", got)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CodeConflict, "ERROR! %s is already in the cart!", "Paracetamol")
	if err.Message() != "ERROR! Paracetamol is already in the cart!" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "place order failed")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped cause lost from chain")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestWrapNilCause(t *testing.T) {
	err := Wrap(CodeInternal, nil, "boom")
	if err.Unwrap() != nil {
		t.Fatal("expected no cause")
	}
	if err.Message() != "boom" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	typed := New(CodeNotFound, "customer not found")
	wrapped := fmt.Errorf("selecting customer: %w", typed)

	found := As(wrapped)
	if found == nil || found.Code() != CodeNotFound {
		t.Fatalf("As failed to recover typed error: %+v", found)
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("As must return nil for untyped errors")
	}
	if As(nil) != nil {
		t.Fatal("As must return nil for nil")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"field": "quantity"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["field"] != "quantity" {
		t.Fatalf("unexpected details %+v", err.Details())
	}
}

func TestMetadataFor(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
		{Code("BOGUS"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestDumpCollectsRemoteContext(t *testing.T) {
	remote := &RemoteCallError{
		Service:    "fulfillment",
		Endpoint:   "/fulfillment/orders/place_order",
		StatusCode: 502,
		Body:       "bad gateway",
	}
	err := Wrap(CodeDependency, remote, "place order failed")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if dump.RemoteService != "fulfillment" || dump.RemoteStatus != 502 {
		t.Fatalf("remote context missing: %+v", dump)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected the full chain, got %v", dump.Chain)
	}
}

func TestDumpNil(t *testing.T) {
	if dump := Dump(nil); dump.TopMessage != "" || dump.Code != "" {
		t.Fatalf("unexpected dump for nil: %+v", dump)
	}
}
