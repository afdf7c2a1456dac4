package pricing

import (
	"github.com/medicart/medicart-backend/pkg/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Bill is the derived breakdown for a cart snapshot. It is recomputed on
// every mutation and never stored.
type Bill struct {
	Subtotal             decimal.Decimal
	AfterItemDiscount    decimal.Decimal
	ItemDiscountTotal    decimal.Decimal
	OverallDiscountPct   int
	AfterOverallDiscount decimal.Decimal
	TotalDiscount        decimal.Decimal
}

// Compute derives the bill for the given lines. Per-line discounts apply
// first, then the overall discount applies to the already item-discounted
// total; the two compound multiplicatively. Inputs are assumed sanitized;
// this function does not re-validate.
func Compute(lines []types.CartLine, overallDiscountPct int) Bill {
	subtotal := decimal.Zero
	afterItem := decimal.Zero

	for _, line := range lines {
		amount := LineAmount(line)
		subtotal = subtotal.Add(amount)
		afterItem = afterItem.Add(discountedAmount(amount, line.Discount))
	}

	itemDiscountTotal := subtotal.Sub(afterItem)
	overallDiscountAmount := afterItem.Mul(decimal.NewFromInt(int64(overallDiscountPct))).Div(hundred)
	afterOverall := afterItem.Sub(overallDiscountAmount)

	return Bill{
		Subtotal:             subtotal,
		AfterItemDiscount:    afterItem,
		ItemDiscountTotal:    itemDiscountTotal,
		OverallDiscountPct:   overallDiscountPct,
		AfterOverallDiscount: afterOverall,
		TotalDiscount:        itemDiscountTotal.Add(overallDiscountAmount),
	}
}

// LineAmount is the undiscounted amount for one line.
func LineAmount(line types.CartLine) decimal.Decimal {
	return decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity)))
}

func discountedAmount(amount decimal.Decimal, discountPct int) decimal.Decimal {
	if discountPct == 0 {
		return amount
	}
	discount := amount.Mul(decimal.NewFromInt(int64(discountPct))).Div(hundred)
	return amount.Sub(discount)
}
