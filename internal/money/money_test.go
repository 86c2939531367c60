package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// normalizeSpaces folds the CLDR grouping characters to plain spaces.
func normalizeSpaces(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"-1.005", "-1.01"},
		{"10", "10"},
		{"0.125", "0.13"},
	}
	for _, tt := range tests {
		assert.True(t, Round2(dec(tt.in)).Equal(dec(tt.want)), "Round2(%s) = %s", tt.in, Round2(dec(tt.in)))
	}
}

func TestSum(t *testing.T) {
	got := Sum(dec("0.1"), dec("0.2"), dec("0.004"))
	assert.Equal(t, "0.30", got.StringFixed(2))
	assert.True(t, Sum().IsZero())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1 234,56", normalizeSpaces(FormatPlain(dec("1234.56"))))
	assert.Equal(t, "0,50", normalizeSpaces(FormatPlain(dec("0.5"))))
	assert.Equal(t, "1 234,56 €", normalizeSpaces(Format(dec("1234.555"))))
	assert.Equal(t, "-850,00", normalizeSpaces(FormatPlain(dec("-850"))))
	assert.Equal(t, "0,00", normalizeSpaces(FormatPlain(decimal.Zero)))
}

func TestFormat_LargeAmountsKeepCents(t *testing.T) {
	assert.Equal(t, "90 071 992 547 409,93", normalizeSpaces(FormatPlain(dec("90071992547409.93"))))
	assert.Equal(t, "12 345 678 901 234 567 890,12", normalizeSpaces(FormatPlain(dec("12345678901234567890.12"))))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.56", "1234.56"},
		{"1 234,56", "1234.56"},
		{"1 234,56 €", "1234.56"},
		{"1 234,5", "1234.5"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234.567", "1234567"},
		{"-12,5", "-12.5"},
		{"€ 40", "40"},
		{"0,99", "0.99"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, "Parse(%q)", tt.in)
		assert.True(t, got.Equal(dec(tt.want)), "Parse(%q) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1,2,3", "12e3", "--4", "€", "1.2.3,4,5", "..", "...", "-.."} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidNumber, "Parse(%q)", in)
	}
}
