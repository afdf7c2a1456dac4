package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/medicart/medicart-backend/api/responses"
	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/logger"
)

// Identity is established upstream; the gateway forwards the authenticated
// operator's email in this header.
const operatorEmailHeader = "X-Operator-Email"

type operatorEmailKey struct{}

// RequireOperator rejects requests that carry no operator identity and stores
// the email on the request context. Cart and order operations are keyed by
// this email.
func RequireOperator(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := strings.ToLower(strings.TrimSpace(r.Header.Get(operatorEmailHeader)))
			if email == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity missing"))
				return
			}

			ctx := WithOperatorEmail(r.Context(), email)
			if logg != nil {
				ctx = logg.WithOperatorEmail(ctx, email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithOperatorEmail stores the operator email on the context.
func WithOperatorEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, operatorEmailKey{}, email)
}

// OperatorEmailFromContext returns the operator email, or "".
func OperatorEmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(operatorEmailKey{}).(string); ok {
		return email
	}
	return ""
}
