package checkout_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaboy/aira-checkout/pkg/checkout"
)

func TestCheckAmount(t *testing.T) {
	tests := []struct {
		name      string
		paid      string
		reference string
		want      checkout.AmountCheck
	}{
		{"exact match", "49.99", "49.99", checkout.AmountFullPaid},
		{"within tolerance below", "49.97", "49.99", checkout.AmountFullPaid},
		{"within tolerance above", "50.03", "49.99", checkout.AmountFullPaid},
		{"at tolerance boundary below", "49.94", "49.99", checkout.AmountFullPaid},
		{"at tolerance boundary above", "50.04", "49.99", checkout.AmountFullPaid},
		{"underpaid", "30.00", "49.99", checkout.AmountNotFullPaid},
		{"just under tolerance", "49.93", "49.99", checkout.AmountNotFullPaid},
		{"overpaid", "60.00", "49.99", checkout.AmountTooMuchPaid},
		{"just over tolerance", "50.05", "49.99", checkout.AmountTooMuchPaid},
		{"rounded to two decimals", "49.994", "49.99", checkout.AmountFullPaid},
		{"zero against zero", "0.00", "0.00", checkout.AmountFullPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkout.CheckAmount(tt.paid, tt.reference)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckAmount_InvalidInput(t *testing.T) {
	_, err := checkout.CheckAmount("not-a-number", "49.99")
	require.Error(t, err)
	assert.True(t, errors.Is(err, checkout.ErrInvalidAmount))

	_, err = checkout.CheckAmount("49.99", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, checkout.ErrInvalidAmount))
}
