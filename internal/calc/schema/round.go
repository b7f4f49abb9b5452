package schema

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundSignificant rounds v half away from zero to the given number of significant digits.
// digits <= 0 leaves v unchanged.
func RoundSignificant(v float64, digits int) float64 {
	if digits <= 0 || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exp := int32(math.Floor(math.Log10(math.Abs(v))))
	f, _ := decimal.NewFromFloat(v).Round(int32(digits) - 1 - exp).Float64()
	return f
}

// Rounder builds rounded quantities.
type Rounder struct {
	Digits int
}

func (r Rounder) Q(v float64, unit string) Quantity {
	return Quantity{Value: RoundSignificant(v, r.Digits), Unit: unit}
}

func (r Rounder) P(v float64, unit string) *Quantity {
	q := r.Q(v, unit)
	return &q
}
