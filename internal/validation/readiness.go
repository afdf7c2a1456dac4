package validation

import (
	"strings"
	"time"

	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/types"
)

// CheckReadiness gates order submission. It reports only the first failure
// found, checking the customer name first and then each line in cart order:
// batch present, expiry present, expiry valid, quantity positive.
func CheckReadiness(lines []types.CartLine, customerName string, today time.Time) error {
	if strings.TrimSpace(customerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Customer name is required.")
	}

	for _, line := range lines {
		if line.BatchNumber == "" {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "Batch number is required for %s.", line.Name)
		}
		if line.ExpiryDate == "" {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "Expiry date is required for %s.", line.Name)
		}
		if result := ValidateExpiry(line.ExpiryDate, today); !result.Valid {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "Expiry date issue for %s: %s", line.Name, result.Message)
		}
		if line.Quantity <= 0 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "Quantity must be greater than 0 for %s.", line.Name)
		}
	}

	return nil
}
