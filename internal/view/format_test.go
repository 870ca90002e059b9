package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCurrency(t *testing.T) {
	require.Equal(t, "S/ 100.30", Currency(100.3))
	require.Equal(t, "S/ 0.00", Currency(0))
	require.Equal(t, "S/ 10.00", Currency(10))
	require.Equal(t, "S/ 1,234.56", Currency(1234.56))
}

func TestPeriodLabel(t *testing.T) {
	require.Equal(t, "Enero 2026", PeriodLabel(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	// Peruvian spelling.
	require.Equal(t, "Setiembre 2025", PeriodLabel(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "Diciembre 2025", PeriodLabel(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))
	require.Empty(t, PeriodLabel(time.Time{}))
}
