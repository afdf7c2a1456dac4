package validation

import "strings"

const (
	batchNumberMaxLen = 10
	quantityMaxDigits = 4
	discountMaxDigits = 2
)

// SanitizeBatchNumber uppercases the input, strips everything outside
// [A-Z0-9-], and truncates to 10 characters.
func SanitizeBatchNumber(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
		if b.Len() == batchNumberMaxLen {
			break
		}
	}
	return b.String()
}

// SanitizeExpiryDate strips non-digits, inserts the slash after two digits,
// clamps a month above 12 down to 12, and truncates to MM/YY.
func SanitizeExpiryDate(raw string) string {
	digits := keepDigits(raw, 4)
	if len(digits) == 0 {
		return ""
	}

	month := digits
	rest := ""
	if len(digits) > 2 {
		month = digits[:2]
		rest = digits[2:]
	}
	if len(month) == 2 && month > "12" {
		month = "12"
	}
	if rest == "" && len(digits) <= 2 {
		return month
	}
	return month + "/" + rest
}

// SanitizeQuantity strips non-digits and truncates to 4 digits.
func SanitizeQuantity(raw string) string {
	return keepDigits(raw, quantityMaxDigits)
}

// SanitizeDiscount strips non-digits and truncates to 2 digits. The 2-digit
// cap is the only enforced bound on discount values.
func SanitizeDiscount(raw string) string {
	return keepDigits(raw, discountMaxDigits)
}

func keepDigits(raw string, max int) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
		if b.Len() == max {
			break
		}
	}
	return b.String()
}
