package receipts

import "math"

// ComputeCharge turns a reading and a tariff into a charge. The subtotal is
// consumption times price plus the fixed surcharge; the total is the subtotal
// rounded to the nearest cent, ties away from zero. An earlier version of the
// billing sheet rounded up to the whole sol; that rule is retired and the
// tests pin the cent rounding down.
//
// The function is pure: handlers use it for the live preview and the
// repository stores exactly the same values.
func ComputeCharge(consumptionKwh, pricePerKwh, surcharge float64) (subtotal, total float64) {
	subtotal = consumptionKwh*pricePerKwh + surcharge
	total = roundCents(subtotal)
	return subtotal, total
}

// roundCents rounds to two decimals, half away from zero (math.Round).
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
