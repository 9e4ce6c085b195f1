package display_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/sitecrew/internal/display"
)

func ptr(s string) *string { return &s }

func TestDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   *string
		want string
	}{
		{nil, "—"},
		{ptr(""), "—"},
		{ptr("Mon, 15 Jan 2024 00:00:00 GMT"), "Jan 15, 2024"},
		{ptr("2024-01-15"), "Jan 15, 2024"},
		{ptr("2024-01-15T08:30:00Z"), "Jan 15, 2024"},
		{ptr("2024-01-15 08:30:00"), "Jan 15, 2024"},
		{ptr("next week"), "next week"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, display.Date(tt.in))
	}
}

func TestMoney(t *testing.T) {
	t.Parallel()

	require.Equal(t, "—", display.Money(decimal.NullDecimal{}))
	require.Equal(t, "$1500.50", display.Money(decimal.NewNullDecimal(decimal.RequireFromString("1500.5"))))
	require.Equal(t, "$0.00", display.Amount(decimal.Zero))
	require.Equal(t, "0", display.Count(decimal.Decimal{}, false))
	require.Equal(t, "12", display.Count(decimal.NewFromInt(12), true))
}

func TestTruncateAndPad(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abc", display.Truncate("abc", 5))
	require.Equal(t, "ab…", display.Truncate("abcdef", 3))
	require.Equal(t, "ñandú", display.Truncate("ñandú", 5))
	require.Equal(t, "ab  ", display.Pad("ab", 4))
	require.Equal(t, "abc…", display.Pad("abcdefg", 4))
	require.Equal(t, "—", display.Text(nil))
	require.Equal(t, "—", display.ID(nil))
}
