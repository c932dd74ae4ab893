package processors

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

var oneHundred = decimal.NewFromInt(100)

// SummaryLine is one derived financial line: a value per month column plus
// the year-to-date sum across all loaded months.
type SummaryLine struct {
	Values map[string]decimal.Decimal `json:"values"`
	YTD    decimal.Decimal            `json:"ytd"`
}

// HeadcountRatios are per-head figures. Nil fields mean "not applicable"
// (headcount is zero); they are never computed by dividing by zero.
type HeadcountRatios struct {
	RevenuePerHeadcount        *decimal.Decimal `json:"revenuePerHeadcount"`
	GrossProfitPerHeadcount    *decimal.Decimal `json:"grossProfitPerHeadcount"`
	EmploymentCostPerHeadcount *decimal.Decimal `json:"employmentCostPerHeadcount"`
}

// PnLSummary is the flat render-ready result table produced in a single
// aggregation pass: category x month totals plus the derived financial
// lines, which are always recomputed from base categories rather than taken
// from the source export's subtotal rows.
type PnLSummary struct {
	Months            []models.Month             `json:"months"`
	CategoryTotals    map[string]SummaryLine     `json:"categoryTotals"`
	TotalRevenue      SummaryLine                `json:"totalRevenue"`
	TotalCostOfSales  SummaryLine                `json:"totalCostOfSales"`
	GrossProfit       SummaryLine                `json:"grossProfit"`
	TotalOpex         SummaryLine                `json:"totalOpex"`
	NetProfit         SummaryLine                `json:"netProfit"`
	AdjustedNetProfit SummaryLine                `json:"adjustedNetProfit"`
	GrossMarginPct    SummaryLine                `json:"grossMarginPct"`
	NetMarginPct      SummaryLine                `json:"netMarginPct"`
	PercentOfRevenue  map[string]decimal.Decimal `json:"percentOfRevenue"` // category -> YTD % of revenue
	Headcount         HeadcountRatios            `json:"headcount"`
}

// SummarizePnL rolls the classified groups up into the flat summary table.
// EBITDA adjustments are added back per month to produce Adjusted Net Profit.
func SummarizePnL(classified *ClassifiedPnL, adjustments []models.EbitdaAdjustment, headcount int) *PnLSummary {
	months := classified.Months
	summary := &PnLSummary{
		Months:           months,
		CategoryTotals:   make(map[string]SummaryLine, len(classified.Groups)),
		PercentOfRevenue: make(map[string]decimal.Decimal, len(classified.Groups)),
	}

	for _, group := range classified.Groups {
		summary.CategoryTotals[group.Category] = sumGroup(group, months)
	}

	summary.TotalRevenue = sumLines(summary.CategoryTotals, RevenueCategories, months)
	summary.TotalCostOfSales = sumLines(summary.CategoryTotals, costOfSalesCategories(classified), months)
	summary.GrossProfit = subtractLines(summary.TotalRevenue, summary.TotalCostOfSales, months)
	summary.TotalOpex = sumLines(summary.CategoryTotals, OpexCategories, months)
	summary.NetProfit = subtractLines(summary.GrossProfit, summary.TotalOpex, months)
	summary.AdjustedNetProfit = addAdjustments(summary.NetProfit, adjustments, months)

	summary.GrossMarginPct = percentOfRevenueLine(summary.GrossProfit, summary.TotalRevenue, months)
	summary.NetMarginPct = percentOfRevenueLine(summary.NetProfit, summary.TotalRevenue, months)
	for category, line := range summary.CategoryTotals {
		summary.PercentOfRevenue[category] = percentOf(line.YTD, summary.TotalRevenue.YTD)
	}

	summary.Headcount = headcountRatios(summary, headcount)
	return summary
}

// CategoryTotal is the sum of a category's row values for one month.
func (s *PnLSummary) CategoryTotal(category, monthColumn string) decimal.Decimal {
	return s.CategoryTotals[category].Values[monthColumn]
}

// YTDTotal is the sum of a category's row values across all months.
func (s *PnLSummary) YTDTotal(category string) decimal.Decimal {
	return s.CategoryTotals[category].YTD
}

func sumGroup(group CategoryGroup, months []models.Month) SummaryLine {
	line := newLine(months)
	for _, row := range group.Rows {
		for _, month := range months {
			value := row.MonthlyValues[month.ColumnName]
			line.Values[month.ColumnName] = line.Values[month.ColumnName].Add(value)
			line.YTD = line.YTD.Add(value)
		}
	}
	return line
}

func sumLines(totals map[string]SummaryLine, categories []string, months []models.Month) SummaryLine {
	line := newLine(months)
	for _, category := range categories {
		source, ok := totals[category]
		if !ok {
			continue
		}
		for _, month := range months {
			line.Values[month.ColumnName] = line.Values[month.ColumnName].Add(source.Values[month.ColumnName])
		}
		line.YTD = line.YTD.Add(source.YTD)
	}
	return line
}

func subtractLines(a, b SummaryLine, months []models.Month) SummaryLine {
	line := newLine(months)
	for _, month := range months {
		line.Values[month.ColumnName] = a.Values[month.ColumnName].Sub(b.Values[month.ColumnName])
	}
	line.YTD = a.YTD.Sub(b.YTD)
	return line
}

func addAdjustments(net SummaryLine, adjustments []models.EbitdaAdjustment, months []models.Month) SummaryLine {
	line := newLine(months)
	for _, month := range months {
		adjusted := net.Values[month.ColumnName]
		for _, adj := range adjustments {
			if adj.Month == month.ColumnName {
				adjusted = adjusted.Add(adj.Amount)
			}
		}
		line.Values[month.ColumnName] = adjusted
		line.YTD = line.YTD.Add(adjusted)
	}
	return line
}

func percentOfRevenueLine(value, revenue SummaryLine, months []models.Month) SummaryLine {
	line := newLine(months)
	for _, month := range months {
		line.Values[month.ColumnName] = percentOf(value.Values[month.ColumnName], revenue.Values[month.ColumnName])
	}
	line.YTD = percentOf(value.YTD, revenue.YTD)
	return line
}

// percentOf returns value/total as a percentage, with a zero total yielding 0
// rather than a division error.
func percentOf(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Div(total).Mul(oneHundred)
}

func headcountRatios(summary *PnLSummary, headcount int) HeadcountRatios {
	if headcount == 0 {
		return HeadcountRatios{}
	}
	heads := decimal.NewFromInt(int64(headcount))
	revenue := summary.TotalRevenue.YTD.Div(heads)
	gross := summary.GrossProfit.YTD.Div(heads)
	employment := summary.CategoryTotals[CategoryEmploymentCost].YTD.Div(heads)
	return HeadcountRatios{
		RevenuePerHeadcount:        &revenue,
		GrossProfitPerHeadcount:    &gross,
		EmploymentCostPerHeadcount: &employment,
	}
}

// costOfSalesCategories collects every category whose name starts with
// "Cost of Sales", including any extra categories beyond the fixed list.
func costOfSalesCategories(classified *ClassifiedPnL) []string {
	var categories []string
	for _, group := range classified.Groups {
		if strings.HasPrefix(group.Category, costOfSalesCategoryStart) {
			categories = append(categories, group.Category)
		}
	}
	return categories
}

func newLine(months []models.Month) SummaryLine {
	line := SummaryLine{Values: make(map[string]decimal.Decimal, len(months)), YTD: decimal.Zero}
	for _, month := range months {
		line.Values[month.ColumnName] = decimal.Zero
	}
	return line
}
