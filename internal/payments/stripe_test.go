package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		cents  int64
	}{
		{"0", 0},
		{"1", 100},
		{"19.99", 1999},
		{"10.999", 1099}, // sub-cent precision truncates
		{"0.01", 1},
		{"0.009", 0},
		{"1234.56", 123456},
	}

	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			require.Equal(t, tc.cents, ToMinorUnits(decimal.RequireFromString(tc.amount)))
		})
	}
}
