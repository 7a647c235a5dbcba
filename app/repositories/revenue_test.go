package repositories_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

func order(total string, at time.Time) models.Order {
	return models.Order{Total: decimal.RequireFromString(total), CreatedAt: at}
}

func TestRollupMonthly_AscendingBuckets(t *testing.T) {
	orders := []models.Order{
		order("30.00", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)),
		order("10.50", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
		order("4.50", time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)),
		order("5.00", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	}

	got := repositories.RollupMonthly(orders)

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01", got[0].Month)
	assert.True(t, decimal.RequireFromString("15.00").Equal(got[0].Revenue), got[0].Revenue.String())
	assert.Equal(t, "2024-02", got[1].Month)
	assert.True(t, decimal.RequireFromString("35.00").Equal(got[1].Revenue), got[1].Revenue.String())
}

func TestRollupMonthly_SortsAcrossYears(t *testing.T) {
	orders := []models.Order{
		order("1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		order("1", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)),
		order("1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	got := repositories.RollupMonthly(orders)

	months := []string{got[0].Month, got[1].Month, got[2].Month}
	assert.Equal(t, []string{"2024-03", "2024-12", "2025-01"}, months)
}

func TestRollupMonthly_Empty(t *testing.T) {
	assert.Empty(t, repositories.RollupMonthly(nil))
}

func TestSumTotals(t *testing.T) {
	orders := []models.Order{order("0.10", time.Now()), order("0.20", time.Now())}
	assert.Equal(t, "0.3", repositories.SumTotals(orders).String())
}
