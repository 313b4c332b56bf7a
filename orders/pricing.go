package orders

import (
	"github.com/shopspring/decimal"

	"restaurant/models"
)

// TaxRate is applied to every order subtotal.
var TaxRate = decimal.NewFromFloat(0.08)

// ComputeTotals prices lines at their snapshotted price. Amounts are rounded
// to cents.
func ComputeTotals(items []models.OrderItem) models.Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
	}
	return totalsFor(subtotal)
}

func totalsFor(subtotal decimal.Decimal) models.Totals {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)
	total := subtotal.Add(tax)

	return models.Totals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// addTotals grows cur by delta field by field, rounding each sum to cents.
func addTotals(cur, delta models.Totals) models.Totals {
	sum := func(a, b float64) float64 {
		return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
	}
	return models.Totals{
		Subtotal: sum(cur.Subtotal, delta.Subtotal),
		Tax:      sum(cur.Tax, delta.Tax),
		Total:    sum(cur.Total, delta.Total),
	}
}

// Change returns received minus amount, rounded to cents.
func Change(amount, received float64) float64 {
	return decimal.NewFromFloat(received).Sub(decimal.NewFromFloat(amount)).Round(2).InexactFloat64()
}

func covers(paid, due float64) bool {
	return decimal.NewFromFloat(paid).Round(2).GreaterThanOrEqual(decimal.NewFromFloat(due).Round(2))
}

func equalCents(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
