package processors

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

// CashflowMonth is one YYYY-MM bucket of the cashflow series. Balance is the
// running balance after the month's net movement.
type CashflowMonth struct {
	Month   string          `json:"month"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
	Balance decimal.Decimal `json:"balance"`
}

// CashflowReport is the month-keyed cashflow series for one account view.
type CashflowReport struct {
	View           models.View     `json:"view"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Months         []CashflowMonth `json:"months"`
	TotalInflow    decimal.Decimal `json:"totalInflow"`
	TotalOutflow   decimal.Decimal `json:"totalOutflow"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// MonthlyCashflow groups transactions by the (year, month) of their date and
// folds a running balance from the opening balance across sorted month keys.
// Lexicographic YYYY-MM ordering matches chronological ordering.
func MonthlyCashflow(transactions []models.Transaction, openingBalance decimal.Decimal, view models.View) *CashflowReport {
	type bucket struct {
		inflow  decimal.Decimal
		outflow decimal.Decimal
	}
	buckets := make(map[string]*bucket)

	for _, tx := range transactions {
		key := txMonthKey(tx)
		if key == "" {
			continue
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{inflow: decimal.Zero, outflow: decimal.Zero}
			buckets[key] = b
		}
		amount := EffectiveAmount(tx, view)
		if tx.Type == models.TransactionInflow {
			b.inflow = b.inflow.Add(amount)
		} else {
			b.outflow = b.outflow.Add(amount)
		}
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	report := &CashflowReport{
		View:           view,
		OpeningBalance: openingBalance,
		TotalInflow:    decimal.Zero,
		TotalOutflow:   decimal.Zero,
	}

	balance := openingBalance
	for _, key := range keys {
		b := buckets[key]
		net := b.inflow.Sub(b.outflow)
		balance = balance.Add(net)
		report.Months = append(report.Months, CashflowMonth{
			Month:   key,
			Inflow:  b.inflow,
			Outflow: b.outflow,
			Net:     net,
			Balance: balance,
		})
		report.TotalInflow = report.TotalInflow.Add(b.inflow)
		report.TotalOutflow = report.TotalOutflow.Add(b.outflow)
	}
	report.ClosingBalance = balance

	return report
}

// EffectiveAmount selects the amount a transaction contributes to a view: in
// the combined view USD-sourced rows contribute their SGD equivalent, so
// both accounts sum in one currency.
func EffectiveAmount(tx models.Transaction, view models.View) decimal.Decimal {
	if view == models.ViewCombined && tx.Account == models.AccountUSD {
		return tx.AmountSGD
	}
	return tx.Amount
}

// txMonthKey extracts the YYYY-MM prefix of an ISO transaction date.
func txMonthKey(tx models.Transaction) string {
	if len(tx.Date) < 7 {
		return ""
	}
	return tx.Date[:7]
}
