package repositories

import (
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/collection"
)

// MonthKey is the bucket label used by the revenue series.
const MonthKey = "2006-01"

// RollupMonthly buckets orders by UTC creation month and sums their totals.
// Buckets come back in ascending month order.
func RollupMonthly(orders []models.Order) []models.MonthlyRevenue {
	groups := collection.GroupBy(orders, func(o models.Order) string {
		return o.CreatedAt.UTC().Format(MonthKey)
	})

	out := make([]models.MonthlyRevenue, 0, len(groups))
	for month, group := range groups {
		out = append(out, models.MonthlyRevenue{Month: month, Revenue: SumTotals(group)})
	}

	return collection.SortBy(out, func(a, b models.MonthlyRevenue) bool {
		return a.Month < b.Month
	})
}

// SumTotals adds up order totals without going through floats.
func SumTotals(orders []models.Order) decimal.Decimal {
	return collection.Reduce(orders, decimal.Zero, func(sum decimal.Decimal, o models.Order) decimal.Decimal {
		return sum.Add(o.Total)
	})
}
