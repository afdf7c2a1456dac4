package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medicart/medicart-backend/api/middleware"
	"github.com/medicart/medicart-backend/api/responses"
	"github.com/medicart/medicart-backend/api/validators"
	cartsvc "github.com/medicart/medicart-backend/internal/cart"
	"github.com/medicart/medicart-backend/internal/validation"
	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/logger"
	"github.com/medicart/medicart-backend/pkg/types"
)

func operatorStore(r *http.Request, carts *cartsvc.Registry) (*cartsvc.Store, error) {
	email := middleware.OperatorEmailFromContext(r.Context())
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity missing")
	}
	store, err := carts.ForOperator(email)
	if err != nil {
		return nil, err
	}
	store.EnsureLoaded(r.Context())
	return store, nil
}

// CartFetch returns the cart snapshot with the bill computed for the
// requested overall discount.
func CartFetch(carts *cartsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := operatorStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		overallDiscount, err := validators.ParseQueryInt(r, "overall_discount", 0, 0, 99)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(store.Snapshot(), overallDiscount))
	}
}

// CartAddLine appends a medicine to the cart. Duplicates are rejected with a
// conflict and the cart is left unchanged.
func CartAddLine(carts *cartsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := operatorStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line := payload.toLine()
		line.BatchNumber = validation.SanitizeBatchNumber(line.BatchNumber)
		line.ExpiryDate = validation.SanitizeExpiryDate(line.ExpiryDate)

		if err := store.Add(r.Context(), line); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(store.Snapshot(), 0))
	}
}

// CartRemoveLine drops the line with the given medicine id.
func CartRemoveLine(carts *cartsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := operatorStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		medicineID := chi.URLParam(r, "medicineID")
		if medicineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "medicine id is required"))
			return
		}

		store.Remove(r.Context(), medicineID)
		responses.WriteSuccess(w, newCartResponse(store.Snapshot(), 0))
	}
}

// CartUpdate replaces the cart wholesale after in-place edits. Batch and
// expiry inputs pass through the sanitizers again server-side.
func CartUpdate(carts *cartsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := operatorStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next := make([]types.CartLine, 0, len(payload.Lines))
		for _, item := range payload.Lines {
			line := item.toLine()
			line.BatchNumber = validation.SanitizeBatchNumber(line.BatchNumber)
			line.ExpiryDate = validation.SanitizeExpiryDate(line.ExpiryDate)
			next = append(next, line)
		}

		store.UpdateLines(r.Context(), next)
		responses.WriteSuccess(w, newCartResponse(store.Snapshot(), 0))
	}
}

// CartClear empties the cart.
func CartClear(carts *cartsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := operatorStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Clear(r.Context())
		responses.WriteSuccess(w, newCartResponse(store.Snapshot(), 0))
	}
}

// CartSanitizeField previews the sanitized value for one field, mirroring
// input-as-you-type cleanup.
func CartSanitizeField(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload sanitizeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sanitizeField(payload, time.Now()))
	}
}

func sanitizeField(payload sanitizeRequest, today time.Time) sanitizeResponse {
	switch payload.Field {
	case "batch_number":
		value := validation.SanitizeBatchNumber(payload.Value)
		return sanitizeResponse{Value: value, Valid: value != ""}
	case "expiry_date":
		value := validation.SanitizeExpiryDate(payload.Value)
		result := validation.ValidateExpiry(value, today)
		return sanitizeResponse{Value: value, Valid: result.Valid, Message: result.Message}
	case "quantity":
		value := validation.SanitizeQuantity(payload.Value)
		qty, err := strconv.Atoi(value)
		return sanitizeResponse{Value: value, Valid: err == nil && qty > 0}
	case "discount":
		value := validation.SanitizeDiscount(payload.Value)
		return sanitizeResponse{Value: value, Valid: true}
	}
	return sanitizeResponse{}
}
