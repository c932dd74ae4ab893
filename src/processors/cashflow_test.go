package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

func tx(account models.Account, date string, txType models.TransactionType, amount, amountSGD string) models.Transaction {
	return models.Transaction{
		ID:          date + "-" + string(txType),
		Account:     account,
		Date:        date,
		Description: "test",
		Category:    models.DefaultCategory,
		Type:        txType,
		Amount:      decimal.RequireFromString(amount),
		AmountSGD:   decimal.RequireFromString(amountSGD),
	}
}

func TestMonthlyCashflow_RunningBalance(t *testing.T) {
	transactions := []models.Transaction{
		tx(models.AccountSGD, "2025-02-10", models.TransactionOutflow, "400", "400"),
		tx(models.AccountSGD, "2025-01-05", models.TransactionInflow, "1000", "1000"),
		tx(models.AccountSGD, "2025-01-20", models.TransactionOutflow, "300", "300"),
		tx(models.AccountSGD, "2025-03-01", models.TransactionInflow, "250", "250"),
	}

	report := MonthlyCashflow(transactions, decimal.NewFromInt(5000), models.ViewSGD)

	require.Len(t, report.Months, 3)
	assert.Equal(t, "2025-01", report.Months[0].Month)
	assert.Equal(t, "2025-02", report.Months[1].Month)
	assert.Equal(t, "2025-03", report.Months[2].Month)

	jan := report.Months[0]
	assert.True(t, jan.Inflow.Equal(decimal.NewFromInt(1000)))
	assert.True(t, jan.Outflow.Equal(decimal.NewFromInt(300)))
	assert.True(t, jan.Net.Equal(decimal.NewFromInt(700)))
	assert.True(t, jan.Balance.Equal(decimal.NewFromInt(5700)))

	feb := report.Months[1]
	assert.True(t, feb.Balance.Equal(decimal.NewFromInt(5300)))

	mar := report.Months[2]
	assert.True(t, mar.Balance.Equal(decimal.NewFromInt(5550)))
	assert.True(t, report.ClosingBalance.Equal(mar.Balance))
}

func TestMonthlyCashflow_Conservation(t *testing.T) {
	transactions := []models.Transaction{
		tx(models.AccountSGD, "2025-01-05", models.TransactionInflow, "1234.56", "1234.56"),
		tx(models.AccountSGD, "2025-02-10", models.TransactionOutflow, "789.01", "789.01"),
		tx(models.AccountSGD, "2025-04-15", models.TransactionInflow, "0.99", "0.99"),
	}

	opening := decimal.RequireFromString("1000.00")
	report := MonthlyCashflow(transactions, opening, models.ViewSGD)

	expected := opening.Add(report.TotalInflow).Sub(report.TotalOutflow)
	assert.True(t, report.ClosingBalance.Equal(expected),
		"closing %s != opening + inflow - outflow = %s", report.ClosingBalance, expected)
}

func TestMonthlyCashflow_CombinedViewUsesSGDEquivalent(t *testing.T) {
	transactions := []models.Transaction{
		tx(models.AccountSGD, "2025-01-05", models.TransactionInflow, "1000", "1000"),
		tx(models.AccountUSD, "2025-01-10", models.TransactionInflow, "500", "675"),
	}

	combined := MonthlyCashflow(transactions, decimal.Zero, models.ViewCombined)
	require.Len(t, combined.Months, 1)
	assert.True(t, combined.Months[0].Inflow.Equal(decimal.NewFromInt(1675)))

	// A single-account view uses the native amount.
	usdOnly := MonthlyCashflow(transactions[1:], decimal.Zero, models.ViewUSD)
	assert.True(t, usdOnly.Months[0].Inflow.Equal(decimal.NewFromInt(500)))
}

func TestMonthlyCashflow_Empty(t *testing.T) {
	report := MonthlyCashflow(nil, decimal.NewFromInt(42), models.ViewSGD)

	assert.Empty(t, report.Months)
	assert.True(t, report.TotalInflow.IsZero())
	assert.True(t, report.TotalOutflow.IsZero())
	assert.True(t, report.ClosingBalance.Equal(decimal.NewFromInt(42)))
}
