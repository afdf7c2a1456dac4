package pricing

import (
	"testing"

	"github.com/medicart/medicart-backend/pkg/types"
	"github.com/shopspring/decimal"
)

func TestComputeEmptyCart(t *testing.T) {
	bill := Compute(nil, 0)

	if !bill.Subtotal.IsZero() {
		t.Fatalf("expected zero subtotal, got %s", bill.Subtotal)
	}
	if !bill.AfterOverallDiscount.IsZero() {
		t.Fatalf("expected zero total, got %s", bill.AfterOverallDiscount)
	}
	if !bill.TotalDiscount.IsZero() {
		t.Fatalf("expected zero discount, got %s", bill.TotalDiscount)
	}
}

func TestComputeNoDiscounts(t *testing.T) {
	lines := []types.CartLine{
		{MedicineID: "m1", Price: 10.5, Quantity: 2},
		{MedicineID: "m2", Price: 4, Quantity: 3},
	}

	bill := Compute(lines, 0)

	if want := decimal.NewFromFloat(33); !bill.Subtotal.Equal(want) {
		t.Fatalf("subtotal = %s, want %s", bill.Subtotal, want)
	}
	if !bill.AfterItemDiscount.Equal(bill.Subtotal) {
		t.Fatalf("after-item total diverged with no discounts: %s", bill.AfterItemDiscount)
	}
	if !bill.AfterOverallDiscount.Equal(bill.Subtotal) {
		t.Fatalf("overall total diverged with no discounts: %s", bill.AfterOverallDiscount)
	}
}

func TestComputeDiscountsCompound(t *testing.T) {
	// Two lines at 100 and 150; 20% off the second, then 5% off everything.
	lines := []types.CartLine{
		{MedicineID: "m1", Price: 100, Quantity: 1, Discount: 0},
		{MedicineID: "m2", Price: 75, Quantity: 2, Discount: 20},
	}

	bill := Compute(lines, 5)

	if want := decimal.NewFromInt(250); !bill.Subtotal.Equal(want) {
		t.Fatalf("subtotal = %s, want %s", bill.Subtotal, want)
	}
	if want := decimal.NewFromInt(220); !bill.AfterItemDiscount.Equal(want) {
		t.Fatalf("after-item total = %s, want %s", bill.AfterItemDiscount, want)
	}
	if want := decimal.NewFromInt(209); !bill.AfterOverallDiscount.Equal(want) {
		t.Fatalf("after-overall total = %s, want %s", bill.AfterOverallDiscount, want)
	}
	if want := decimal.NewFromInt(41); !bill.TotalDiscount.Equal(want) {
		t.Fatalf("total discount = %s, want %s", bill.TotalDiscount, want)
	}

	// Identity: subtotal minus total discount equals the payable amount.
	if !bill.Subtotal.Sub(bill.TotalDiscount).Equal(bill.AfterOverallDiscount) {
		t.Fatalf("discount identity broken: %s - %s != %s",
			bill.Subtotal, bill.TotalDiscount, bill.AfterOverallDiscount)
	}
}

func TestComputeFractionalTotal(t *testing.T) {
	// Compounding lands on a half-paisa total; it must come back exact.
	lines := []types.CartLine{
		{MedicineID: "m1", Price: 100, Quantity: 2, Discount: 10},
		{MedicineID: "m2", Price: 50, Quantity: 1, Discount: 0},
	}

	bill := Compute(lines, 5)

	if want := decimal.NewFromInt(250); !bill.Subtotal.Equal(want) {
		t.Fatalf("subtotal = %s, want %s", bill.Subtotal, want)
	}
	if want := decimal.NewFromInt(230); !bill.AfterItemDiscount.Equal(want) {
		t.Fatalf("after-item total = %s, want %s", bill.AfterItemDiscount, want)
	}
	if want := decimal.NewFromFloat(218.5); !bill.AfterOverallDiscount.Equal(want) {
		t.Fatalf("after-overall total = %s, want %s", bill.AfterOverallDiscount, want)
	}
	if want := decimal.NewFromFloat(31.5); !bill.TotalDiscount.Equal(want) {
		t.Fatalf("total discount = %s, want %s", bill.TotalDiscount, want)
	}
}

func TestComputeNoFloatDrift(t *testing.T) {
	// 0.1 * 3 is the classic float trap; decimals keep it exact.
	lines := []types.CartLine{
		{MedicineID: "m1", Price: 0.1, Quantity: 3},
	}

	bill := Compute(lines, 0)

	if want := decimal.NewFromFloat(0.3); !bill.Subtotal.Equal(want) {
		t.Fatalf("subtotal = %s, want %s", bill.Subtotal, want)
	}
}

func TestLineAmount(t *testing.T) {
	line := types.CartLine{Price: 12.25, Quantity: 4}
	if want := decimal.NewFromFloat(49); !LineAmount(line).Equal(want) {
		t.Fatalf("line amount = %s, want %s", LineAmount(line), want)
	}
}
