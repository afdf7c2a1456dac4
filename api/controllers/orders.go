package controllers

import (
	"net/http"

	"github.com/medicart/medicart-backend/api/middleware"
	"github.com/medicart/medicart-backend/api/responses"
	"github.com/medicart/medicart-backend/api/validators"
	ordersvc "github.com/medicart/medicart-backend/internal/orders"
	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/logger"
	"github.com/medicart/medicart-backend/pkg/types"
)

func operatorWorkflow(r *http.Request, workflows *ordersvc.Registry) (*ordersvc.Workflow, error) {
	email := middleware.OperatorEmailFromContext(r.Context())
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity missing")
	}
	return workflows.ForOperator(email)
}

// OrderPlace validates order readiness and, on success, returns the
// delivery-details prompt prefill.
func OrderPlace(workflows *ordersvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workflow, err := operatorWorkflow(r, workflows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prompt, err := workflow.Begin(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prompt)
	}
}

// OrderConfirm submits the order with the collected delivery details.
func OrderConfirm(workflows *ordersvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workflow, err := operatorWorkflow(r, workflows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload confirmOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmation, err := workflow.Confirm(r.Context(), types.DeliveryAddress{
			Address: payload.Address,
			City:    payload.City,
			State:   payload.State,
			Zipcode: payload.Zipcode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, confirmation)
	}
}

// OrderCancel dismisses the delivery prompt without placing the order.
func OrderCancel(workflows *ordersvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workflow, err := operatorWorkflow(r, workflows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		workflow.Cancel()
		responses.WriteSuccess(w, messageResponse{Message: "Order was not placed."})
	}
}
