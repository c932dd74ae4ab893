package services

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

func TestViewOpeningBalance(t *testing.T) {
	sgd := decimal.NewFromInt(1000)
	usd := decimal.NewFromInt(800)
	usdSGD := decimal.NewFromInt(1080)
	settings := &models.Settings{
		CashflowOpeningBalance: &sgd,
		USDOpeningBalance:      &usd,
		USDOpeningBalanceSGD:   &usdSGD,
	}

	assert.True(t, viewOpeningBalance(settings, models.ViewSGD).Equal(sgd))
	assert.True(t, viewOpeningBalance(settings, models.ViewUSD).Equal(usd))
	// Combined starts from SGD plus the USD balance's SGD equivalent.
	assert.True(t, viewOpeningBalance(settings, models.ViewCombined).Equal(decimal.NewFromInt(2080)))

	// Unconfigured balances count as zero.
	empty := &models.Settings{}
	assert.True(t, viewOpeningBalance(empty, models.ViewCombined).IsZero())
}

func TestGetSankeyReport_CombinedView(t *testing.T) {
	importService, reportService, _ := newTestServices(t)

	sgd := strings.Join([]string{
		"Date,Description,Category,Contact,Debit,Credit",
		"2025-01-01,OPENING BALANCE,,,1000.00,",
		"2025-01-05,Local invoice,Qual Revenue,Acme,2000.00,",
	}, "\n")
	_, err := importService.ImportBankStatement(strings.NewReader(sgd), models.AccountSGD)
	require.NoError(t, err)

	usd := strings.Join([]string{
		"Date,Description,Category,Contact,Debit,Credit,Debit (SGD),Credit (SGD)",
		"2025-01-01,OPENING BALANCE,,,800.00,,1080.00,",
		"2025-01-10,US invoice,Quant Revenue,Globex,1000.00,,1350.00,",
	}, "\n")
	_, err = importService.ImportBankStatement(strings.NewReader(usd), models.AccountUSD)
	require.NoError(t, err)

	report, err := reportService.GetSankeyReport(models.ViewCombined)
	require.NoError(t, err)

	// 1000 SGD opening + 1080 SGD equivalent of the USD opening.
	assert.True(t, report.OpeningBalance.Equal(decimal.NewFromInt(2080)))
	// 2000 local + 1350 SGD equivalent of the USD inflow.
	assert.True(t, report.TotalInflow.Equal(decimal.NewFromInt(3350)))
	assert.True(t, report.ClosingBalance.Equal(decimal.NewFromInt(5430)))
	require.Len(t, report.Inflows, 2)
}

func TestReportCaching(t *testing.T) {
	importService, reportService, _ := newTestServices(t)

	csvData := "Date,Description,Amount\n2025-01-01,OPENING BALANCE,1000.00\n2025-01-05,Payment,100.00\n"
	_, err := importService.ImportBankStatement(strings.NewReader(csvData), models.AccountSGD)
	require.NoError(t, err)

	first, err := reportService.GetCashflowReport(models.ViewSGD)
	require.NoError(t, err)

	// Cached: the same pointer comes back until something invalidates it.
	second, err := reportService.GetCashflowReport(models.ViewSGD)
	require.NoError(t, err)
	assert.Same(t, first, second)

	reportService.InvalidateReportCache()
	third, err := reportService.GetCashflowReport(models.ViewSGD)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestGetProjectsReport(t *testing.T) {
	_, reportService, _ := newTestServices(t)

	report, err := reportService.GetProjectsReport()
	require.NoError(t, err)
	assert.Empty(t, report.Projects)
	assert.True(t, report.TotalBudget.IsZero())
}

func TestGetPipelineReport(t *testing.T) {
	_, reportService, _ := newTestServices(t)

	report, err := reportService.GetPipelineReport()
	require.NoError(t, err)
	require.Len(t, report.Funnel, len(models.FunnelStages))
}
