package receipts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeChargeExampleTariff(t *testing.T) {
	// 105 kWh at S/ 0.86 plus S/ 10.00 public lighting.
	subtotal, total := ComputeCharge(105, 0.86, 10.00)
	require.InDelta(t, 100.3, subtotal, 1e-9)
	require.Equal(t, 100.30, total)

	// The retired rule rounded up to the whole sol. That must not come back.
	require.NotEqual(t, 101.0, total)
}

func TestComputeChargeRoundsToNearestCent(t *testing.T) {
	cases := []struct {
		name        string
		consumption float64
		price       float64
		surcharge   float64
		total       float64
	}{
		{"exact cents", 100, 0.50, 5, 55.00},
		{"half rounds away from zero", 1, 0.125, 0, 0.13},
		{"thirds truncate down", 10, 0.333, 0, 3.33},
		{"zero consumption still pays surcharge", 0, 0.86, 10, 10.00},
		{"no surcharge", 42, 1.0, 0, 42.00},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, total := ComputeCharge(tc.consumption, tc.price, tc.surcharge)
			require.Equal(t, tc.total, total)
		})
	}
}

func TestComputeChargeDeterministic(t *testing.T) {
	s1, t1 := ComputeCharge(87.5, 0.92, 12.5)
	s2, t2 := ComputeCharge(87.5, 0.92, 12.5)
	require.Equal(t, s1, s2)
	require.Equal(t, t1, t2)
}
