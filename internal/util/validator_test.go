package util

import "testing"

func TestValidateAmount(t *testing.T) {
	valid := []float64{0.01, 1, 123.45, 9999999}
	for _, a := range valid {
		if err := ValidateAmount(a); err != nil {
			t.Errorf("amount %v rejected: %v", a, err)
		}
	}

	invalid := []float64{0, -1, -0.01, 10000000, 99999999}
	for _, a := range invalid {
		if err := ValidateAmount(a); err == nil {
			t.Errorf("amount %v accepted", a)
		}
	}
}

func TestValidateColor(t *testing.T) {
	valid := []string{"#000000", "#FFFFFF", "#a1B2c3"}
	for _, c := range valid {
		if err := ValidateColor(c); err != nil {
			t.Errorf("color %q rejected: %v", c, err)
		}
	}

	invalid := []string{"", "red", "#FFF", "#GGGGGG", "123456", "#1234567"}
	for _, c := range invalid {
		if err := ValidateColor(c); err == nil {
			t.Errorf("color %q accepted", c)
		}
	}
}
