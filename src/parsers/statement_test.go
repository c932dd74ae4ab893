package parsers

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

func TestStatementParser_DebitCredit(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Description,Category,Contact,Debit,Credit",
		"2025-01-01,OPENING BALANCE,,,10000.00,",
		"02/01/2025,Client payment,Qual Revenue,Acme Pte Ltd,5000.00,",
		"03/01/2025,Office rent,Admin Cost,Landlord Pte,,2000.00",
	}, "\n")

	parser := NewStatementParser(0)
	result, err := parser.Parse(strings.NewReader(csvData), models.AccountSGD)
	require.NoError(t, err)

	require.NotNil(t, result.OpeningBalance)
	assert.True(t, result.OpeningBalance.Equal(decimal.NewFromInt(10000)))
	assert.Nil(t, result.OpeningBalanceSGD)

	require.Len(t, result.Transactions, 2)
	assert.Equal(t, 0, result.SkippedCount)

	inflow := result.Transactions[0]
	assert.Equal(t, models.TransactionInflow, inflow.Type)
	assert.Equal(t, "2025-01-02", inflow.Date)
	assert.Equal(t, "Client payment", inflow.Description)
	assert.Equal(t, "Qual Revenue", inflow.Category)
	assert.Equal(t, "Acme Pte Ltd", inflow.Contact)
	assert.True(t, inflow.Amount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, inflow.AmountSGD.Equal(decimal.NewFromInt(5000)))
	assert.NotEmpty(t, inflow.ID)

	outflow := result.Transactions[1]
	assert.Equal(t, models.TransactionOutflow, outflow.Type)
	assert.True(t, outflow.Amount.Equal(decimal.NewFromInt(2000)))
}

func TestStatementParser_SingleAmountColumn(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Description,Amount",
		"2025-01-01,OPENING BALANCE,2500.00",
		"2025-01-05,Workshop fee received,\"$1,200.00\"",
		"2025-01-10,Software subscription,-350.00",
		"2025-01-12,Refund issued,\"($150.00)\"",
	}, "\n")

	parser := NewStatementParser(0)
	result, err := parser.Parse(strings.NewReader(csvData), models.AccountSGD)
	require.NoError(t, err)

	require.NotNil(t, result.OpeningBalance)
	assert.True(t, result.OpeningBalance.Equal(decimal.NewFromInt(2500)))

	require.Len(t, result.Transactions, 3)
	assert.Equal(t, models.TransactionInflow, result.Transactions[0].Type)
	assert.Equal(t, models.TransactionOutflow, result.Transactions[1].Type)
	assert.True(t, result.Transactions[1].Amount.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, models.TransactionOutflow, result.Transactions[2].Type)
	assert.True(t, result.Transactions[2].Amount.Equal(decimal.NewFromInt(150)))

	// No category or contact columns: defaults apply.
	assert.Equal(t, models.DefaultCategory, result.Transactions[0].Category)
	assert.Equal(t, "", result.Transactions[0].Contact)
}

func TestStatementParser_USDAccountWithSGDColumns(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Description,Debit,Credit,Debit (SGD),Credit (SGD)",
		"2025-02-01,OPENING BALANCE,8000.00,,10800.00,",
		"2025-02-03,US client payment,1000.00,,1350.00,",
		"2025-02-04,SaaS invoice,,200.00,,270.00",
	}, "\n")

	parser := NewStatementParser(0)
	result, err := parser.Parse(strings.NewReader(csvData), models.AccountUSD)
	require.NoError(t, err)

	require.NotNil(t, result.OpeningBalance)
	assert.True(t, result.OpeningBalance.Equal(decimal.NewFromInt(8000)))
	require.NotNil(t, result.OpeningBalanceSGD)
	assert.True(t, result.OpeningBalanceSGD.Equal(decimal.NewFromInt(10800)))

	require.Len(t, result.Transactions, 2)
	assert.True(t, result.Transactions[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.Transactions[0].AmountSGD.Equal(decimal.NewFromInt(1350)))
	assert.True(t, result.Transactions[1].AmountSGD.Equal(decimal.NewFromInt(270)))
}

func TestStatementParser_SkipsBadRowsAndCounts(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Description,Amount",
		"2025-01-01,OPENING BALANCE,1000.00",
		"not-a-date,Mystery row,100.00",
		"2025-01-05,,100.00",
		"2025-01-06,No usable amount,",
		"2025-01-07,Good row,50.00",
	}, "\n")

	parser := NewStatementParser(0)
	result, err := parser.Parse(strings.NewReader(csvData), models.AccountSGD)
	require.NoError(t, err)

	assert.Equal(t, 3, result.SkippedCount)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "Good row", result.Transactions[0].Description)
}

func TestStatementParser_OpeningBalanceRowNeverATransaction(t *testing.T) {
	// The reserved row parses cleanly as a transaction, but must still be
	// consumed as the opening balance only.
	csvData := strings.Join([]string{
		"Date,Description,Amount",
		"2025-01-01,Balance brought forward,3000.00",
		"2025-01-02,Actual transaction,100.00",
	}, "\n")

	parser := NewStatementParser(0)
	result, err := parser.Parse(strings.NewReader(csvData), models.AccountSGD)
	require.NoError(t, err)

	require.NotNil(t, result.OpeningBalance)
	assert.True(t, result.OpeningBalance.Equal(decimal.NewFromInt(3000)))
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "Actual transaction", result.Transactions[0].Description)
}

func TestStatementParser_CreditOpeningBalanceIsNegative(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Description,Debit,Credit",
		"2025-01-01,OPENING BALANCE,,500.00",
		"2025-01-02,Deposit,100.00,",
	}, "\n")

	parser := NewStatementParser(0)
	result, err := parser.Parse(strings.NewReader(csvData), models.AccountSGD)
	require.NoError(t, err)

	require.NotNil(t, result.OpeningBalance)
	assert.True(t, result.OpeningBalance.Equal(decimal.NewFromInt(-500)))
}

func TestStatementParser_MissingOpeningBalanceWarns(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Description,Amount",
		"2025-01-01,Header-ish row,",
		"2025-01-02,Real transaction,100.00",
	}, "\n")

	parser := NewStatementParser(0)
	result, err := parser.Parse(strings.NewReader(csvData), models.AccountSGD)
	require.NoError(t, err)

	assert.Nil(t, result.OpeningBalance)
	require.Len(t, result.Transactions, 1)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "opening balance") {
			found = true
		}
	}
	assert.True(t, found, "expected an opening balance warning, got %v", result.Warnings)
}

func TestStatementParser_EmptyFile(t *testing.T) {
	parser := NewStatementParser(0)
	_, err := parser.Parse(strings.NewReader(""), models.AccountSGD)
	assert.ErrorIs(t, err, ErrEmptyCSV)
}

func TestStatementParser_NoUsableData(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Description,Amount",
		"garbage,,",
		"also-garbage,,",
	}, "\n")

	parser := NewStatementParser(0)
	_, err := parser.Parse(strings.NewReader(csvData), models.AccountSGD)
	assert.ErrorIs(t, err, ErrNoUsableData)
}

func TestStatementParser_MissingRequiredColumns(t *testing.T) {
	csvData := "Foo,Bar,Amount\n1,2,3\n"

	parser := NewStatementParser(0)
	_, err := parser.Parse(strings.NewReader(csvData), models.AccountSGD)
	assert.ErrorIs(t, err, ErrMissingRequiredColumns)
}
