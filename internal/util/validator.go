package util

import (
	"fmt"
	"regexp"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateAmount checks a monetary amount in currency units (must be
// positive and below the cap).
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %f", amount)
	}
	if amount >= 10000000 { // cap at ten million
		return fmt.Errorf("amount too large, got %f", amount)
	}
	return nil
}

// ValidateColor checks a #RRGGBB display color.
func ValidateColor(color string) error {
	if !hexColorRe.MatchString(color) {
		return fmt.Errorf("invalid color %q, want #RRGGBB", color)
	}
	return nil
}
