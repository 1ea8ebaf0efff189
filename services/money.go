package services

import (
	"restaurant-pos-api/models"

	"github.com/shopspring/decimal"
)

// OrderTotal is Σ price × quantity over lines, rounded to cents
func OrderTotal(lines []models.OrderItem) float64 {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}

func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
