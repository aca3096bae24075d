package util

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// ValidateValor checks a transfer amount: non-negative, sane upper bound.
func ValidateValor(valor decimal.Decimal) error {
	if valor.IsNegative() {
		return fmt.Errorf("valor must not be negative, got %s", valor)
	}
	if valor.GreaterThanOrEqual(decimal.NewFromInt(10_000_000_000)) {
		return fmt.Errorf("valor too large, got %s", valor)
	}
	return nil
}

// ValidateFecha checks the date format (must be YYYY-MM-DD).
func ValidateFecha(fecha string) error {
	if fecha == "" {
		return fmt.Errorf("fecha is empty")
	}
	_, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		return fmt.Errorf("invalid fecha format: %w", err)
	}
	return nil
}

var cedulaRe = regexp.MustCompile(`^[0-9]{5,15}$`)

// ValidateCedula checks the government id-card number: digits only, 5-15 long.
func ValidateCedula(cedula string) error {
	if cedula == "" {
		return fmt.Errorf("cedula is empty")
	}
	if !cedulaRe.MatchString(cedula) {
		return fmt.Errorf("invalid cedula: %q", cedula)
	}
	return nil
}
