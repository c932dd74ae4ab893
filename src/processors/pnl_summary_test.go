package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

func classifiedFixture(t *testing.T) *ClassifiedPnL {
	t.Helper()
	classifier := NewClassifier(DefaultClassificationMap())
	rows := []models.PnLRow{
		row("Qual Project Revenue", map[string]string{"Jan 2025": "10000", "Feb 2025": "12000"}),
		row("Fieldwork Costs (Qual)", map[string]string{"Jan 2025": "3000"}),
		row("Office Rent", map[string]string{"Jan 2025": "2000", "Feb 2025": "2000"}),
		row("Salaries", map[string]string{"Jan 2025": "4000", "Feb 2025": "4000"}),
	}
	return classifier.Classify(rows, testMonths(), nil, 2025)
}

func TestSummarizePnL_DerivedLines(t *testing.T) {
	summary := SummarizePnL(classifiedFixture(t), nil, 0)

	assert.True(t, summary.TotalRevenue.Values["Jan 2025"].Equal(decimal.NewFromInt(10000)))
	assert.True(t, summary.TotalRevenue.Values["Feb 2025"].Equal(decimal.NewFromInt(12000)))
	assert.True(t, summary.TotalRevenue.YTD.Equal(decimal.NewFromInt(22000)))

	assert.True(t, summary.TotalCostOfSales.YTD.Equal(decimal.NewFromInt(3000)))

	assert.True(t, summary.GrossProfit.Values["Jan 2025"].Equal(decimal.NewFromInt(7000)))
	assert.True(t, summary.GrossProfit.YTD.Equal(decimal.NewFromInt(19000)))

	assert.True(t, summary.TotalOpex.Values["Jan 2025"].Equal(decimal.NewFromInt(6000)))
	assert.True(t, summary.TotalOpex.YTD.Equal(decimal.NewFromInt(12000)))

	assert.True(t, summary.NetProfit.Values["Jan 2025"].Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.NetProfit.Values["Feb 2025"].Equal(decimal.NewFromInt(6000)))
	assert.True(t, summary.NetProfit.YTD.Equal(decimal.NewFromInt(7000)))

	// No adjustments: adjusted equals net.
	assert.True(t, summary.AdjustedNetProfit.YTD.Equal(summary.NetProfit.YTD))

	assert.True(t, summary.GrossMarginPct.Values["Jan 2025"].Equal(decimal.NewFromInt(70)))
	assert.True(t, summary.NetMarginPct.Values["Jan 2025"].Equal(decimal.NewFromInt(10)))

	assert.True(t, summary.PercentOfRevenue[CategoryQualRevenue].Equal(decimal.NewFromInt(100)))
}

func TestSummarizePnL_EbitdaAdjustments(t *testing.T) {
	adjustments := []models.EbitdaAdjustment{
		{LineItem: "Director Remuneration", Month: "Jan 2025", Amount: decimal.NewFromInt(500)},
		{LineItem: "One-off Legal", Month: "Jan 2025", Amount: decimal.NewFromInt(250)},
	}

	summary := SummarizePnL(classifiedFixture(t), adjustments, 0)

	assert.True(t, summary.AdjustedNetProfit.Values["Jan 2025"].Equal(decimal.NewFromInt(1750)))
	assert.True(t, summary.AdjustedNetProfit.Values["Feb 2025"].Equal(decimal.NewFromInt(6000)))
	assert.True(t, summary.AdjustedNetProfit.YTD.Equal(decimal.NewFromInt(7750)))
	// The base net profit line is untouched.
	assert.True(t, summary.NetProfit.Values["Jan 2025"].Equal(decimal.NewFromInt(1000)))
}

func TestSummarizePnL_HeadcountRatios(t *testing.T) {
	summary := SummarizePnL(classifiedFixture(t), nil, 2)

	require.NotNil(t, summary.Headcount.RevenuePerHeadcount)
	assert.True(t, summary.Headcount.RevenuePerHeadcount.Equal(decimal.NewFromInt(11000)))
	require.NotNil(t, summary.Headcount.GrossProfitPerHeadcount)
	assert.True(t, summary.Headcount.GrossProfitPerHeadcount.Equal(decimal.NewFromInt(9500)))
	require.NotNil(t, summary.Headcount.EmploymentCostPerHeadcount)
	assert.True(t, summary.Headcount.EmploymentCostPerHeadcount.Equal(decimal.NewFromInt(4000)))
}

func TestSummarizePnL_ZeroHeadcountYieldsNilRatios(t *testing.T) {
	summary := SummarizePnL(classifiedFixture(t), nil, 0)

	assert.Nil(t, summary.Headcount.RevenuePerHeadcount)
	assert.Nil(t, summary.Headcount.GrossProfitPerHeadcount)
	assert.Nil(t, summary.Headcount.EmploymentCostPerHeadcount)
}

func TestSummarizePnL_ZeroRevenueYieldsZeroPercentages(t *testing.T) {
	classifier := NewClassifier(DefaultClassificationMap())
	rows := []models.PnLRow{
		row("Office Rent", map[string]string{"Jan 2025": "2000"}),
	}
	classified := classifier.Classify(rows, testMonths(), nil, 2025)

	summary := SummarizePnL(classified, nil, 0)

	assert.True(t, summary.TotalRevenue.YTD.IsZero())
	assert.True(t, summary.GrossMarginPct.Values["Jan 2025"].IsZero())
	assert.True(t, summary.NetMarginPct.YTD.IsZero())
	assert.True(t, summary.PercentOfRevenue[CategoryAdminCost].IsZero())
}

func TestSummarizePnL_CategoryAccessors(t *testing.T) {
	summary := SummarizePnL(classifiedFixture(t), nil, 0)

	assert.True(t, summary.CategoryTotal(CategoryEmploymentCost, "Feb 2025").Equal(decimal.NewFromInt(4000)))
	assert.True(t, summary.YTDTotal(CategoryEmploymentCost).Equal(decimal.NewFromInt(8000)))
}
