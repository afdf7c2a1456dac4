package types

import "strings"

// DeliveryAddress carries the fields collected before an order is submitted.
type DeliveryAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
}

// Complete reports whether the blocking fields were provided. Zipcode is not
// required here; it falls back to the customer record or the configured
// default at submission time.
func (d DeliveryAddress) Complete() bool {
	return strings.TrimSpace(d.Address) != "" &&
		strings.TrimSpace(d.City) != "" &&
		strings.TrimSpace(d.State) != ""
}

// FullAddress joins every component, including the resolved zipcode.
func (d DeliveryAddress) FullAddress(zipcode string) string {
	return strings.Join([]string{d.Address, d.City, d.State, zipcode}, ", ")
}
