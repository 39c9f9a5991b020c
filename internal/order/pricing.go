package order

import (
	"math"

	"github.com/shopspring/decimal"
)

// LinePrice computes one line's price: (unit price + addon surcharges) per
// unit, times quantity. Malformed numeric input (NaN, Inf) prices that
// component at zero instead of aborting the order.
func LinePrice(line *OrderLine) decimal.Decimal {
	unit := decimal.NewFromFloat(sanitizePrice(line.Price))
	for _, a := range line.Addons {
		unit = unit.Add(decimal.NewFromFloat(sanitizePrice(a.Price)))
	}
	return unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// OrderTotal sums the prices of all non-removed lines and rounds half-up to
// 2 decimal places once, at the total. Per-line results stay exact so
// rounding error cannot compound.
func OrderTotal(lines []OrderLine) float64 {
	total := decimal.Zero
	for i := range lines {
		if lines[i].IsRemoved {
			continue
		}
		total = total.Add(LinePrice(&lines[i]))
	}
	f, _ := total.Round(2).Float64()
	return f
}

func sanitizePrice(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}
