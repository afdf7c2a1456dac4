package controllers

import (
	"net/http"

	"github.com/medicart/medicart-backend/api/middleware"
	"github.com/medicart/medicart-backend/api/responses"
	"github.com/medicart/medicart-backend/api/validators"
	customersvc "github.com/medicart/medicart-backend/internal/customers"
	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/logger"
)

func operatorSession(r *http.Request, sessions *customersvc.Registry) (*customersvc.Session, error) {
	email := middleware.OperatorEmailFromContext(r.Context())
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity missing")
	}
	return sessions.ForOperator(email)
}

// CustomerQuery feeds one input change into the debounced suggestion
// pipeline and echoes the session state. The directory fetch lands after the
// debounce interval, so the returned suggestions may still be the previous
// set.
func CustomerQuery(sessions *customersvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := operatorSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload queryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.OnQueryChange(payload.Query)
		responses.WriteSuccessStatus(w, http.StatusAccepted, session.Snapshot())
	}
}

// CustomerSuggestions returns the current suggestion list and keyboard state.
func CustomerSuggestions(sessions *customersvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := operatorSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Snapshot())
	}
}

// CustomerKey applies one keyboard event to the suggestion list.
func CustomerKey(sessions *customersvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := operatorSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload keyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := session.HandleKey(r.Context(), customersvc.Key(payload.Key)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Snapshot())
	}
}

// CustomerSelect resolves a suggestion into the active customer.
func CustomerSelect(sessions *customersvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := operatorSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload selectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := session.Select(r.Context(), payload.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Snapshot())
	}
}

// CustomerSetName records a name typed directly into the input field.
func CustomerSetName(sessions *customersvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := operatorSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload nameRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.SetName(payload.Name)
		responses.WriteSuccess(w, session.Snapshot())
	}
}

// CustomerClearSuggestions mirrors a click outside the suggestion region.
func CustomerClearSuggestions(sessions *customersvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := operatorSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.ClickOutside()
		responses.WriteSuccess(w, session.Snapshot())
	}
}
