package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"USD", true},
		{"EUR", true},
		{"usd", true},   // should accept lowercase
		{"US", false},   // too short
		{"USDA", false}, // too long
		{"US1", false},  // contains number
		{"US$", false},  // contains special char
		{"", false},     // empty
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValidCode(tc.code))
		})
	}
}

func TestISO_Known(t *testing.T) {
	c := ISO()
	assert.True(t, c.Known("USD"))
	assert.True(t, c.Known("eur"))
	assert.True(t, c.Known("JPY"))
	assert.False(t, c.Known("ABC"))
	assert.False(t, c.Known("XY"))
}

func TestNormalize(t *testing.T) {
	c := ISO()

	code, err := Normalize(c, " gbp ")
	assert.NoError(t, err)
	assert.Equal(t, "GBP", code)

	_, err = Normalize(c, "12$")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = Normalize(c, "ABC")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}
