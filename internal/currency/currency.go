// Package currency holds the fixed USD to IDR conversion used across the
// storefront. Rounding lives here so the cart total, the checkout assembler,
// and the gateway proxy all share one primitive.
package currency

import "math"

// Rate is the fixed multiplicative USD to IDR exchange rate.
const Rate = 15000

// ToIDR converts a source-currency price to whole IDR, rounding to the
// nearest integer.
func ToIDR(usd float64) int64 {
	return Round(usd * Rate)
}

// Round rounds an IDR amount to the nearest whole unit. The payment gateway
// rejects non-integer amounts, so every amount crossing a boundary passes
// through here.
func Round(idr float64) int64 {
	return int64(math.Round(idr))
}
