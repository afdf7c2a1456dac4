package types

// CartLine is one priced, quantified medicine entry in a cart, unique by
// medicine id. The JSON shape mirrors the remote user record's cart field.
type CartLine struct {
	MedicineID  string  `json:"medicine_id"`
	Name        string  `json:"medicine_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Discount    int     `json:"discount"`
	BatchNumber string  `json:"batch_number"`
	ExpiryDate  string  `json:"expiry_date"`
}
