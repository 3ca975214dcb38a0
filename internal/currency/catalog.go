// Package currency validates currency codes against the ISO 4217 catalog.
package currency

import (
	"errors"
	"strings"

	"golang.org/x/text/currency"
)

// ErrInvalidCode indicates the value is not a three-letter currency code.
var ErrInvalidCode = errors.New("invalid currency code format")

// ErrUnknownCurrency is returned when a well-formed code is not in the catalog.
var ErrUnknownCurrency = errors.New("unknown currency")

// Catalog decides which currency codes are recognized.
type Catalog interface {
	Known(code string) bool
}

type isoCatalog struct{}

// ISO returns a Catalog backed by the ISO 4217 table.
func ISO() Catalog {
	return isoCatalog{}
}

// Known reports whether code is a recognized ISO 4217 currency (case-insensitive).
func (isoCatalog) Known(code string) bool {
	if !IsValidCode(code) {
		return false
	}
	_, err := currency.ParseISO(strings.ToUpper(code))
	return err == nil
}

// Normalize upper-cases code and checks it against the catalog.
func Normalize(c Catalog, code string) (string, error) {
	code = strings.TrimSpace(code)
	if !IsValidCode(code) {
		return "", ErrInvalidCode
	}
	code = strings.ToUpper(code)
	if !c.Known(code) {
		return "", ErrUnknownCurrency
	}
	return code, nil
}

// IsValidCode checks whether a string is a valid 3-letter currency code.
func IsValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	code = strings.ToUpper(code)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
