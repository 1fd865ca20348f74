package utils

import (
	"fmt"
	"regexp"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// ValidateIdentifier checks an opaque id (order, user, vendor) for the
// characters the API accepts in path segments
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("identifier must not be empty")
	}
	if !identifierRegex.MatchString(id) {
		return fmt.Errorf("invalid identifier: %s", id)
	}
	return nil
}

// ValidateQuantity validates an order line quantity
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %d", quantity)
	}
	if quantity > 50 {
		return fmt.Errorf("quantity exceeds per-line limit: %d", quantity)
	}
	return nil
}

// SanitizeString removes control characters from free-text input such as
// denial reasons
func SanitizeString(s string) string {
	return regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
}
