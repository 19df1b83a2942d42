package crm

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "bob@example.com", NormalizeEmail("bob@example.com"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.ErrorIs(t, ValidateEmail(""), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateEmail("not-an-email"), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateEmail("Alice <alice@example.com>"), ErrInvalidEmail)
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"", true},
		{"+1234567890", true},
		{"+1234567", true},
		{"+123456789012345", true},
		{"123-456-7890", true},
		{"+123456", false},
		{"+1234567890123456", false},
		{"1234567890", false},
		{"123-4567-890", false},
		{"12-3456-7890", false},
		{"abc", false},
		{" ", false},
		{"+1234567890 ", false},
		{"123-456-7890x", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePhone(tt.phone))
		})
	}
}

func TestValidatePriceStock(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name    string
		price   string
		stock   *int
		wantErr error
	}{
		{"positive price, no stock", "19.99", nil, nil},
		{"positive price, zero stock", "0.01", intPtr(0), nil},
		{"zero price", "0", nil, ErrInvalidPrice},
		{"negative price", "-5", intPtr(3), ErrInvalidPrice},
		{"negative stock", "10", intPtr(-1), ErrInvalidStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			err := ValidatePriceStock(price, tt.stock)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}
