package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/utils"
)

// RawRow is one statement data row keyed by its trimmed header names. Header
// keys are not carried past this package; rows are resolved into typed
// transactions through the RoleMap before leaving the parsing boundary.
type RawRow map[string]string

// StatementResult is the outcome of parsing one bank statement upload.
// Row-level problems are counted, not raised: SkippedCount and Warnings feed
// the user-facing import summary.
type StatementResult struct {
	Transactions      []models.Transaction
	OpeningBalance    *decimal.Decimal
	OpeningBalanceSGD *decimal.Decimal
	SkippedCount      int
	Warnings          []string
	Roles             RoleMap
}

// StatementParser turns heterogeneous bank statement CSV exports into
// normalized transactions. The row at OpeningBalanceRowIndex (zero-based,
// after the header) is reserved for the opening balance and never produces a
// transaction, regardless of its content.
type StatementParser struct {
	OpeningBalanceRowIndex int
}

func NewStatementParser(openingBalanceRowIndex int) *StatementParser {
	return &StatementParser{OpeningBalanceRowIndex: openingBalanceRowIndex}
}

func (p *StatementParser) Parse(file io.Reader, account models.Account) (*StatementResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	roles, warnings, err := InferColumns(headers)
	if err != nil {
		return nil, err
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}

	result := &StatementResult{Roles: roles, Warnings: warnings}

	for i, record := range records {
		row := recordToRow(headers, record)

		if i == p.OpeningBalanceRowIndex {
			result.OpeningBalance, result.OpeningBalanceSGD = OpeningBalanceFromRow(row, roles)
			continue
		}

		tx, ok := ParseRow(row, roles, account)
		if !ok {
			result.SkippedCount++
			continue
		}
		result.Transactions = append(result.Transactions, *tx)
	}

	if result.OpeningBalance == nil {
		result.Warnings = append(result.Warnings, "no opening balance could be extracted; any previously configured balance is left unchanged")
	}
	if len(result.Transactions) == 0 && result.OpeningBalance == nil {
		return nil, ErrNoUsableData
	}

	return result, nil
}

func recordToRow(headers []string, record []string) RawRow {
	row := make(RawRow, len(headers))
	for i, h := range headers {
		if i < len(record) {
			row[h] = strings.TrimSpace(record[i])
		}
	}
	return row
}

// ParseRow converts a single statement data row into a Transaction. The
// boolean is false when the row must be skipped: unparsable or missing date,
// missing description, or no usable amount.
func ParseRow(row RawRow, roles RoleMap, account models.Account) (*models.Transaction, bool) {
	date, err := utils.ParseFlexibleDate(row[roles.Date])
	if err != nil {
		if logger.L != nil {
			logger.L.Debug("Skipping statement row with invalid date", "value", row[roles.Date])
		}
		return nil, false
	}

	description := row[roles.Description]
	if description == "" {
		return nil, false
	}

	txType, amount, ok := resolveAmount(row, roles)
	if !ok {
		return nil, false
	}

	amountSGD := resolveAmountSGD(row, roles, txType, amount)

	category := row[roles.Category]
	if category == "" {
		category = models.DefaultCategory
	}

	return &models.Transaction{
		ID:          uuid.NewString(),
		Account:     account,
		Date:        date.Format(utils.ISODateFormat),
		Description: description,
		Category:    category,
		Contact:     row[roles.Contact],
		Type:        txType,
		Amount:      amount,
		AmountSGD:   amountSGD,
	}, true
}

// resolveAmount determines direction and magnitude from either the
// debit/credit pair or the single signed amount column. A positive debit is
// an inflow, a positive credit an outflow; with a single amount column the
// sign carries the direction. Rows with no usable value are skipped.
func resolveAmount(row RawRow, roles RoleMap) (models.TransactionType, decimal.Decimal, bool) {
	if roles.HasDebitCredit() {
		if debit, ok := utils.ParseValue(row[roles.Debit]); ok && debit.IsPositive() {
			return models.TransactionInflow, debit.Abs(), true
		}
		if credit, ok := utils.ParseValue(row[roles.Credit]); ok && credit.IsPositive() {
			return models.TransactionOutflow, credit.Abs(), true
		}
		return "", decimal.Zero, false
	}

	value, ok := utils.ParseValue(row[roles.Amount])
	if !ok || value.IsZero() {
		return "", decimal.Zero, false
	}
	if value.IsNegative() {
		return models.TransactionOutflow, value.Abs(), true
	}
	return models.TransactionInflow, value, true
}

// resolveAmountSGD resolves the SGD-equivalent amount from the SGD column
// pair when present, falling back to the primary amount for same-currency
// accounts.
func resolveAmountSGD(row RawRow, roles RoleMap, txType models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if roles.DebitSGD == "" && roles.CreditSGD == "" {
		return amount
	}

	if txType == models.TransactionInflow {
		if v, ok := utils.ParseValue(row[roles.DebitSGD]); ok && v.IsPositive() {
			return v.Abs()
		}
	} else {
		if v, ok := utils.ParseValue(row[roles.CreditSGD]); ok && v.IsPositive() {
			return v.Abs()
		}
	}
	return amount
}

// OpeningBalanceFromRow extracts the signed opening balance from the reserved
// statement row. A positive debit yields a positive balance, a positive
// credit a negative one; with a single amount column any nonzero value is
// taken as-is. Extraction never fails: absence yields nil and the caller must
// leave any previously configured balance untouched.
func OpeningBalanceFromRow(row RawRow, roles RoleMap) (*decimal.Decimal, *decimal.Decimal) {
	balance := signedBalance(row[roles.Debit], row[roles.Credit], row[roles.Amount], roles.HasDebitCredit())

	var balanceSGD *decimal.Decimal
	if roles.DebitSGD != "" || roles.CreditSGD != "" {
		balanceSGD = signedBalance(row[roles.DebitSGD], row[roles.CreditSGD], "", true)
	}

	return balance, balanceSGD
}

func signedBalance(debitCell, creditCell, amountCell string, hasDebitCredit bool) *decimal.Decimal {
	if hasDebitCredit {
		if debit, ok := utils.ParseValue(debitCell); ok && debit.IsPositive() {
			return &debit
		}
		if credit, ok := utils.ParseValue(creditCell); ok && credit.IsPositive() {
			negated := credit.Neg()
			return &negated
		}
		return nil
	}

	if value, ok := utils.ParseValue(amountCell); ok && !value.IsZero() {
		return &value
	}
	return nil
}
