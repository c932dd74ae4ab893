package processors

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

// P&L categories, in fixed display order. Categories outside this list are
// appended after Unclassified in first-seen order.
const (
	CategoryOtherRevenue     = "Other Revenue"
	CategoryQualRevenue      = "Qual Revenue"
	CategoryQuantRevenue     = "Quant Revenue"
	CategoryCOSQual          = "Cost of Sales (Qual)"
	CategoryCOSQuant         = "Cost of Sales (Quant)"
	CategoryCOSOther         = "Cost of Sales (Other)"
	CategoryCOS              = "Cost of Sales"
	CategoryAdminCost        = "Admin Cost"
	CategoryEmploymentCost   = "Employment Cost"
	CategoryFinancingCost    = "Financing Cost"
	CategoryUnclassified     = "Unclassified"
	PipelineRevenueRowName   = "Pipeline Revenue (Forecast)"
	costOfSalesCategoryStart = "Cost of Sales"
)

var CategoryOrder = []string{
	CategoryOtherRevenue, CategoryQualRevenue, CategoryQuantRevenue,
	CategoryCOSQual, CategoryCOSQuant, CategoryCOSOther, CategoryCOS,
	CategoryAdminCost, CategoryEmploymentCost, CategoryFinancingCost,
	CategoryUnclassified,
}

// RevenueCategories are the categories whose totals make up TotalRevenue.
var RevenueCategories = []string{CategoryOtherRevenue, CategoryQualRevenue, CategoryQuantRevenue}

// OpexCategories are the categories whose totals make up TotalOpex.
var OpexCategories = []string{CategoryAdminCost, CategoryEmploymentCost, CategoryFinancingCost}

// ClassificationMap maps exact P&L line-item names to categories. It is
// process-wide configuration loaded once at startup; unmapped names fall into
// Unclassified.
type ClassificationMap map[string]string

// LoadClassificationMap reads the line-item classification table from a JSON
// file. When the file is missing or malformed the compiled-in default table
// is used, with a warning.
func LoadClassificationMap(path string) ClassificationMap {
	data, err := os.ReadFile(path)
	if err != nil {
		if logger.L != nil {
			logger.L.Warn("Classification map file not readable, using built-in defaults", "path", path, "error", err)
		}
		return DefaultClassificationMap()
	}

	var mapping ClassificationMap
	if err := json.Unmarshal(data, &mapping); err != nil {
		if logger.L != nil {
			logger.L.Warn("Classification map file invalid, using built-in defaults", "path", path, "error", err)
		}
		return DefaultClassificationMap()
	}

	if logger.L != nil {
		logger.L.Info("Classification map loaded", "path", path, "entries", len(mapping))
	}
	return mapping
}

// DefaultClassificationMap is the built-in line-item taxonomy.
func DefaultClassificationMap() ClassificationMap {
	return ClassificationMap{
		"Qualitative Research Revenue":  CategoryQualRevenue,
		"Qual Project Revenue":          CategoryQualRevenue,
		"Quantitative Research Revenue": CategoryQuantRevenue,
		"Quant Project Revenue":         CategoryQuantRevenue,
		"Consulting Revenue":            CategoryOtherRevenue,
		"Workshop Revenue":              CategoryOtherRevenue,
		"Interest Income":               CategoryOtherRevenue,
		"Other Income":                  CategoryOtherRevenue,

		"Fieldwork Costs (Qual)":        CategoryCOSQual,
		"Moderator Fees":                CategoryCOSQual,
		"Respondent Incentives (Qual)":  CategoryCOSQual,
		"Panel Costs (Quant)":           CategoryCOSQuant,
		"Survey Platform Fees":          CategoryCOSQuant,
		"Respondent Incentives (Quant)": CategoryCOSQuant,
		"Translation Costs":             CategoryCOSOther,
		"Transcription Costs":           CategoryCOSOther,
		"Subcontractor Costs":           CategoryCOS,
		"Freelancer Fees":               CategoryCOS,
		"Project Travel":                CategoryCOS,

		"Bank Fees":             CategoryAdminCost,
		"Accounting Fees":       CategoryAdminCost,
		"Office Rent":           CategoryAdminCost,
		"Software Subscriptions": CategoryAdminCost,
		"Insurance":             CategoryAdminCost,
		"Telephone & Internet":  CategoryAdminCost,
		"Printing & Stationery": CategoryAdminCost,
		"Professional Fees":     CategoryAdminCost,
		"Entertainment":         CategoryAdminCost,
		"General Expenses":      CategoryAdminCost,

		"Salaries":                CategoryEmploymentCost,
		"Director Remuneration":   CategoryEmploymentCost,
		"CPF Contributions":       CategoryEmploymentCost,
		"Skills Development Levy": CategoryEmploymentCost,
		"Staff Welfare":           CategoryEmploymentCost,
		"Medical Expenses":        CategoryEmploymentCost,

		"Interest Expense":       CategoryFinancingCost,
		"Loan Interest":          CategoryFinancingCost,
		"Hire Purchase Interest": CategoryFinancingCost,
		"Foreign Exchange Loss":  CategoryFinancingCost,
	}
}

// CategoryGroup holds the line items classified into one category, in source
// row order.
type CategoryGroup struct {
	Category string          `json:"category"`
	Rows     []models.PnLRow `json:"rows"`
}

// ClassifiedPnL is the grouped, ordered classification result consumed by the
// summary aggregator.
type ClassifiedPnL struct {
	Groups []CategoryGroup `json:"groups"`
	Months []models.Month  `json:"months"`
}

// Classifier classifies P&L line items against an immutable snapshot of the
// classification map.
type Classifier struct {
	mapping ClassificationMap
}

func NewClassifier(mapping ClassificationMap) *Classifier {
	return &Classifier{mapping: mapping}
}

// Category resolves a line-item name by exact match, falling back to
// Unclassified. Classification is derived, never stored on the row.
func (c *Classifier) Category(lineItemName string) string {
	if category, ok := c.mapping[lineItemName]; ok {
		return category
	}
	return CategoryUnclassified
}

// Classify groups P&L rows by category and synthesizes the Pipeline Revenue
// (Forecast) row from the supplied deals.
//
// Pre-computed subtotal rows (name starting with "total") are dropped and
// recomputed downstream to avoid double counting; rows with no nonzero value
// across any month are dropped as decorative.
//
// The synthetic pipeline row only matches revenue-breakdown entries whose
// year equals currentYear; deals booked for other years are silently
// excluded from it. This mirrors the dashboard's single-year view and is a
// documented limitation for multi-year datasets.
func (c *Classifier) Classify(rows []models.PnLRow, months []models.Month, deals []models.Deal, currentYear int) *ClassifiedPnL {
	grouped := make(map[string][]models.PnLRow)
	var extraCategories []string

	for _, row := range rows {
		name := strings.ToLower(strings.TrimSpace(row.Name))
		if strings.HasPrefix(name, "total") {
			continue
		}
		if allZero(row, months) {
			continue
		}

		category := c.Category(row.Name)
		if _, seen := grouped[category]; !seen && !isFixedCategory(category) {
			extraCategories = append(extraCategories, category)
		}
		grouped[category] = append(grouped[category], row)
	}

	grouped[CategoryOtherRevenue] = append(grouped[CategoryOtherRevenue], c.pipelineRevenueRow(months, deals, currentYear))

	result := &ClassifiedPnL{Months: months}
	for _, category := range CategoryOrder {
		result.Groups = append(result.Groups, CategoryGroup{Category: category, Rows: grouped[category]})
	}
	for _, category := range extraCategories {
		result.Groups = append(result.Groups, CategoryGroup{Category: category, Rows: grouped[category]})
	}
	return result
}

// pipelineRevenueRow builds the synthetic forecast revenue line: for every
// Forecast month, the probability-weighted sum of all deal revenue-breakdown
// entries falling in that calendar month of currentYear. ACTUAL months are
// forced to zero even when breakdown entries exist for them.
func (c *Classifier) pipelineRevenueRow(months []models.Month, deals []models.Deal, currentYear int) models.PnLRow {
	row := models.PnLRow{Name: PipelineRevenueRowName, MonthlyValues: make(map[string]decimal.Decimal)}
	year := strconv.Itoa(currentYear)

	for _, month := range months {
		if month.Status != models.MonthForecast {
			row.MonthlyValues[month.ColumnName] = decimal.Zero
			continue
		}

		total := decimal.Zero
		for _, deal := range deals {
			for _, entry := range deal.RevenueBreakdown {
				if entry.Month == month.Number && entry.Year == year {
					total = total.Add(entry.Amount.Mul(deal.Probability).Div(decimal.NewFromInt(100)))
				}
			}
		}
		row.MonthlyValues[month.ColumnName] = total
	}

	return row
}

func allZero(row models.PnLRow, months []models.Month) bool {
	for _, month := range months {
		if value, exists := row.MonthlyValues[month.ColumnName]; exists && !value.IsZero() {
			return false
		}
	}
	return true
}

func isFixedCategory(category string) bool {
	for _, c := range CategoryOrder {
		if c == category {
			return true
		}
	}
	return false
}
