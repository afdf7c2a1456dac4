package controllers

import (
	"github.com/medicart/medicart-backend/internal/pricing"
	"github.com/medicart/medicart-backend/pkg/types"
)

type cartLinePayload struct {
	MedicineID  string  `json:"medicine_id" validate:"required"`
	Name        string  `json:"medicine_name" validate:"required"`
	Price       float64 `json:"price" validate:"min=0"`
	Quantity    int     `json:"quantity" validate:"min=0,max=9999"`
	Discount    int     `json:"discount" validate:"min=0,max=99"`
	BatchNumber string  `json:"batch_number"`
	ExpiryDate  string  `json:"expiry_date"`
}

type addLineRequest struct {
	cartLinePayload
}

type updateCartRequest struct {
	Lines []cartLinePayload `json:"lines" validate:"required,dive"`
}

type sanitizeRequest struct {
	Field string `json:"field" validate:"required,oneof=batch_number expiry_date quantity discount"`
	Value string `json:"value"`
}

type sanitizeResponse struct {
	Value   string `json:"value"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

type billResponse struct {
	Subtotal             float64 `json:"subtotal"`
	AfterItemDiscount    float64 `json:"after_item_discount"`
	ItemDiscountTotal    float64 `json:"item_discount_total"`
	OverallDiscountPct   int     `json:"overall_discount_pct"`
	AfterOverallDiscount float64 `json:"after_overall_discount"`
	TotalDiscount        float64 `json:"total_discount"`
}

type cartResponse struct {
	Lines []types.CartLine `json:"lines"`
	Bill  billResponse     `json:"bill"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type keyRequest struct {
	Key string `json:"key" validate:"required,oneof=up down enter escape"`
}

type selectRequest struct {
	ID string `json:"id" validate:"required"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type confirmOrderRequest struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zipcode string `json:"zipcode"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newBillResponse(bill pricing.Bill) billResponse {
	return billResponse{
		Subtotal:             bill.Subtotal.InexactFloat64(),
		AfterItemDiscount:    bill.AfterItemDiscount.InexactFloat64(),
		ItemDiscountTotal:    bill.ItemDiscountTotal.InexactFloat64(),
		OverallDiscountPct:   bill.OverallDiscountPct,
		AfterOverallDiscount: bill.AfterOverallDiscount.InexactFloat64(),
		TotalDiscount:        bill.TotalDiscount.InexactFloat64(),
	}
}

func newCartResponse(lines []types.CartLine, overallDiscountPct int) cartResponse {
	return cartResponse{
		Lines: lines,
		Bill:  newBillResponse(pricing.Compute(lines, overallDiscountPct)),
	}
}

func (p cartLinePayload) toLine() types.CartLine {
	return types.CartLine{
		MedicineID:  p.MedicineID,
		Name:        p.Name,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Discount:    p.Discount,
		BatchNumber: p.BatchNumber,
		ExpiryDate:  p.ExpiryDate,
	}
}
