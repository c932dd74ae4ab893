package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a bank account movement.
type TransactionType string

const (
	TransactionInflow  TransactionType = "inflow"
	TransactionOutflow TransactionType = "outflow"
)

// Account identifies which bank account a transaction belongs to.
type Account string

const (
	AccountSGD Account = "sgd"
	AccountUSD Account = "usd"
)

// View selects which account perspective a report is computed for. The
// combined view merges both accounts using SGD-equivalent amounts for
// USD-sourced rows.
type View string

const (
	ViewSGD      View = "sgd"
	ViewUSD      View = "usd"
	ViewCombined View = "combined"
)

// Transaction is a single normalized bank account movement. Amount is always
// non-negative; direction is captured by Type. AmountSGD carries the
// SGD-equivalent for USD-account rows and equals Amount for SGD-account rows.
//
// Contact is stored as the empty string when the source statement has no
// contact column; presentation layers fall back to Description for display.
type Transaction struct {
	ID          string          `json:"id"`
	Account     Account         `json:"account"`
	Date        string          `json:"date"` // ISO YYYY-MM-DD
	Description string          `json:"description"`
	Category    string          `json:"category"` // defaults "Uncategorized"
	Contact     string          `json:"contact"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	AmountSGD   decimal.Decimal `json:"amountSGD"`
}

// DefaultCategory is assigned when a statement has no category column or the
// cell is blank.
const DefaultCategory = "Uncategorized"

// PnLRow is one line item of a wide-format P&L export: one row per account
// name, one value per month column. Classification is derived by lookup on
// Name and is not stored on the row.
type PnLRow struct {
	Name          string                     `json:"name"`
	MonthlyValues map[string]decimal.Decimal `json:"monthlyValues"` // keyed by month column name
}

// MonthStatus marks whether a P&L month holds actuals or projections.
type MonthStatus string

const (
	MonthActual   MonthStatus = "ACTUAL"
	MonthForecast MonthStatus = "Forecast"
)

// Month describes one month column of a P&L export. Ordering is positional
// (column order in the source), not calendar-inferred.
type Month struct {
	ColumnName  string      `json:"columnName"`
	DisplayName string      `json:"displayName"` // full month name, e.g. "March"
	Number      string      `json:"number"`      // zero-padded MM, e.g. "03"
	Status      MonthStatus `json:"status"`
}

// PnLSnapshot is the persisted result of the most recent P&L import.
type PnLSnapshot struct {
	Rows       []PnLRow  `json:"rows"`
	Months     []Month   `json:"months"`
	ImportedAt time.Time `json:"importedAt"`
}

// DealStage is the sales pipeline stage of a deal.
type DealStage string

const (
	StageLead        DealStage = "Lead"
	StageQualified   DealStage = "Qualified"
	StageProposal    DealStage = "Proposal"
	StageNegotiation DealStage = "Negotiation"
	StageClosedWon   DealStage = "Closed Won"
	StageClosedLost  DealStage = "Closed Lost"
)

// FunnelStages is the fixed display order of the non-closed-lost stages.
var FunnelStages = []DealStage{StageLead, StageQualified, StageProposal, StageNegotiation, StageClosedWon}

// ValidStage reports whether s is one of the known pipeline stages.
func ValidStage(s DealStage) bool {
	switch s {
	case StageLead, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

// RevenueBreakdownEntry allocates a slice of a deal's value to a calendar
// month. Month is a zero-padded MM string, Year a YYYY string.
type RevenueBreakdownEntry struct {
	Month  string          `json:"month"`
	Year   string          `json:"year"`
	Amount decimal.Decimal `json:"amount"`
}

// Deal is a sales pipeline opportunity. The sum of RevenueBreakdown amounts
// is expected to match DealValue within 0.01; the mismatch is advisory, not
// enforced on stored data.
type Deal struct {
	ID                string                  `json:"id"`
	ClientName        string                  `json:"clientName"`
	DealName          string                  `json:"dealName"`
	DealValue         decimal.Decimal         `json:"dealValue"`
	Stage             DealStage               `json:"stage"`
	Probability       decimal.Decimal         `json:"probability"` // percent, 0-100
	ExpectedCloseDate string                  `json:"expectedCloseDate"`
	RevenueBreakdown  []RevenueBreakdownEntry `json:"revenueBreakdown"`
}

// WeightedValue is the deal value discounted by its probability.
func (d Deal) WeightedValue() decimal.Decimal {
	return d.DealValue.Mul(d.Probability).Div(decimal.NewFromInt(100))
}

// Project is a client engagement tracked for costing.
type Project struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Client    string          `json:"client"`
	Status    string          `json:"status"`
	Budget    decimal.Decimal `json:"budget"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
}

// ProjectCost is a single cost entry booked against a project.
type ProjectCost struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"projectId"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"` // ISO YYYY-MM-DD
}

// EbitdaAdjustment is a manually entered add-back amount for one line item in
// one month, used to compute Adjusted Net Profit.
type EbitdaAdjustment struct {
	LineItem string          `json:"lineItem"`
	Month    string          `json:"month"` // month column name
	Amount   decimal.Decimal `json:"amount"`
}

// Settings is the single persisted settings record. Opening balances are
// pointers so that "not yet configured" is distinguishable from zero; an
// import that fails to extract a balance must leave the stored value
// untouched.
type Settings struct {
	CashflowOpeningBalance *decimal.Decimal   `json:"cashflowOpeningBalance"`
	USDOpeningBalance      *decimal.Decimal   `json:"usdOpeningBalance"`
	USDOpeningBalanceSGD   *decimal.Decimal   `json:"usdOpeningBalanceSGD"`
	Headcount              int                `json:"headcount"`
	EbitdaAdjustments      []EbitdaAdjustment `json:"ebitdaAdjustments"`
}
