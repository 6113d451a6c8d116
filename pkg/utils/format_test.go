package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0.043549549", "$0.04354"},
		{"0.0043549549", "$0.004354"},
		{"0.00043549549", "$0.0004354"},
		{"0.000043549549", "$0.0{4}4354"},
		{"2.00003456", "$2.0{4}3456"},
		{"0.000000123456", "$0.0{6}1234"},
		{"0", "$0"},
		{"", ""},
		{"21.00000000000000000000000", "$21"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.input), "input: %s", tt.input)
	}
}

func TestFormatTokenAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"1234567", "1.23M"},
		{"1500", "1.50K"},
		{"12.3456789", "12.34"},
		{"0.5", "0.5"},
		{"0.004321", "0.004321"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTokenAmount(decimal.RequireFromString(tt.input)), "input: %s", tt.input)
	}
}

func TestFormatUsd(t *testing.T) {
	assert.Equal(t, "$12.34", FormatUsd(decimal.RequireFromString("12.345")))
	assert.Equal(t, "-$12.34", FormatUsd(decimal.RequireFromString("-12.345")))
	assert.Equal(t, "$1.50K", FormatUsd(decimal.RequireFromString("1500")))
	assert.Equal(t, "$0.00", FormatUsd(decimal.Zero))
}

func TestGetDisplayWalletAddress(t *testing.T) {
	assert.Equal(t, "0x1234...abcd", GetDisplayWalletAddress("0x12345678901234567890abcd"))
	assert.Equal(t, "short", GetDisplayWalletAddress("short"))
}
