package crm

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// phonePattern accepts international numbers (+1234567890) and the
// 123-456-7890 form.
var phonePattern = regexp.MustCompile(`^(\+\d{7,15}|\d{3}-\d{3}-\d{4})$`)

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidateEmail reports whether a normalized email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	return nil
}

// ValidatePhone reports whether raw is an acceptable phone number.
// An empty phone is valid because the field is optional.
func ValidatePhone(raw string) bool {
	if raw == "" {
		return true
	}
	return phonePattern.MatchString(raw)
}

// ValidatePriceStock checks that price is positive and, when supplied,
// that stock is not negative.
func ValidatePriceStock(price decimal.Decimal, stock *int) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if stock != nil && *stock < 0 {
		return ErrInvalidStock
	}
	return nil
}
