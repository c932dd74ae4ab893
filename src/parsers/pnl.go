package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/utils"
)

// maxMonthColumns caps how many month columns of a P&L export are consumed.
// Anything after the first twelve month-like columns is ignored.
const maxMonthColumns = 12

// netProfitRowMarker identifies the source export's pre-computed Net
// Profit/Loss row, used to derive per-month ACTUAL/Forecast status.
const netProfitRowMarker = "net profit"

var monthNames = map[string]struct {
	display string
	number  string
}{
	"jan": {"January", "01"}, "feb": {"February", "02"}, "mar": {"March", "03"},
	"apr": {"April", "04"}, "may": {"May", "05"}, "jun": {"June", "06"},
	"jul": {"July", "07"}, "aug": {"August", "08"}, "sep": {"September", "09"},
	"oct": {"October", "10"}, "nov": {"November", "11"}, "dec": {"December", "12"},
}

// PnLResult is the outcome of parsing a wide-format P&L export: one row per
// line item, one ordered month column list with derived status.
type PnLResult struct {
	Rows     []models.PnLRow
	Months   []models.Month
	Warnings []string
}

// PnLParser parses wide-format P&L CSV exports where column 0 is the
// account/line-item name and subsequent columns are calendar months in
// source order.
type PnLParser struct{}

func NewPnLParser() *PnLParser {
	return &PnLParser{}
}

func (p *PnLParser) Parse(file io.Reader) (*PnLResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	months, monthIndexes := detectMonthColumns(header)
	if len(months) == 0 {
		return nil, ErrNoMonthColumns
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}

	result := &PnLResult{}
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}

		row := models.PnLRow{Name: name, MonthlyValues: make(map[string]decimal.Decimal)}
		for m, month := range months {
			idx := monthIndexes[m]
			if idx < len(record) {
				if value, ok := utils.ParseValue(record[idx]); ok {
					row.MonthlyValues[month.ColumnName] = value
				}
			}
		}
		result.Rows = append(result.Rows, row)
	}

	deriveMonthStatus(months, result.Rows)
	result.Months = months

	if !hasNetProfitRow(result.Rows) {
		result.Warnings = append(result.Warnings, "no Net Profit/Loss row found; all months treated as Forecast")
	}

	return result, nil
}

// detectMonthColumns scans the header after the name column and keeps the
// first twelve month-like columns, in source order. Non-month columns are
// skipped; columns past the cap are ignored.
func detectMonthColumns(header []string) ([]models.Month, []int) {
	var months []models.Month
	var indexes []int

	for i := 1; i < len(header) && len(months) < maxMonthColumns; i++ {
		columnName := strings.TrimSpace(header[i])
		display, number, ok := monthFromHeader(columnName)
		if !ok {
			continue
		}
		months = append(months, models.Month{
			ColumnName:  columnName,
			DisplayName: display,
			Number:      number,
			Status:      models.MonthForecast,
		})
		indexes = append(indexes, i)
	}

	return months, indexes
}

func monthFromHeader(header string) (display, number string, ok bool) {
	lower := strings.ToLower(header)
	for prefix, m := range monthNames {
		if strings.Contains(lower, prefix) {
			return m.display, m.number, true
		}
	}
	return "", "", false
}

// deriveMonthStatus marks a month ACTUAL when the source export's Net
// Profit/Loss row carries a nonzero value for it, Forecast otherwise.
func deriveMonthStatus(months []models.Month, rows []models.PnLRow) {
	for _, row := range rows {
		if !strings.Contains(strings.ToLower(row.Name), netProfitRowMarker) {
			continue
		}
		for i := range months {
			if value, exists := row.MonthlyValues[months[i].ColumnName]; exists && !value.IsZero() {
				months[i].Status = models.MonthActual
			}
		}
		return
	}
}

func hasNetProfitRow(rows []models.PnLRow) bool {
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Name), netProfitRowMarker) {
			return true
		}
	}
	return false
}
