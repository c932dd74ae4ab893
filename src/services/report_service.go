package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/processors"
)

const (
	ckPnLReport      = "report_pnl"
	ckCashflowReport = "report_cashflow_%s"
	ckPipelineReport = "report_pipeline"
	ckProjectsReport = "report_projects"
	ckSankeyReport   = "report_sankey_%s"
)

type reportServiceImpl struct {
	classifier      *processors.Classifier
	settingsService *SettingsService
	reportCache     *cache.Cache
}

func NewReportService(classifier *processors.Classifier, settingsService *SettingsService, reportCache *cache.Cache) ReportService {
	return &reportServiceImpl{
		classifier:      classifier,
		settingsService: settingsService,
		reportCache:     reportCache,
	}
}

// InvalidateReportCache clears every cached report view. Called after any
// write to an underlying collection; the next request triggers a full, fresh
// aggregation pass.
func (s *reportServiceImpl) InvalidateReportCache() {
	keysToDelete := []string{ckPnLReport, ckPipelineReport, ckProjectsReport}
	for _, view := range []models.View{models.ViewSGD, models.ViewUSD, models.ViewCombined} {
		keysToDelete = append(keysToDelete,
			fmt.Sprintf(ckCashflowReport, view),
			fmt.Sprintf(ckSankeyReport, view))
	}
	for _, key := range keysToDelete {
		s.reportCache.Delete(key)
	}
	logger.L.Debug("Invalidated all report caches")
}

func (s *reportServiceImpl) GetPnLReport() (*PnLReport, error) {
	if cached, found := s.reportCache.Get(ckPnLReport); found {
		logger.L.Debug("Cache hit for P&L report")
		return cached.(*PnLReport), nil
	}

	snapshot, err := loadPnLSnapshot()
	if err != nil {
		return nil, err
	}
	deals, err := fetchDeals()
	if err != nil {
		return nil, err
	}
	settings, err := s.settingsService.Get()
	if err != nil {
		return nil, err
	}

	// The pipeline revenue row only sees deals booked for the current
	// real-world year; see the classifier for the documented limitation.
	classified := s.classifier.Classify(snapshot.Rows, snapshot.Months, deals, time.Now().Year())
	summary := processors.SummarizePnL(classified, settings.EbitdaAdjustments, settings.Headcount)

	report := &PnLReport{
		Classified: classified,
		Summary:    summary,
		ImportedAt: snapshot.ImportedAt,
	}
	s.reportCache.SetDefault(ckPnLReport, report)
	return report, nil
}

func (s *reportServiceImpl) GetCashflowReport(view models.View) (*processors.CashflowReport, error) {
	cacheKey := fmt.Sprintf(ckCashflowReport, view)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*processors.CashflowReport), nil
	}

	transactions, settings, err := s.viewData(view)
	if err != nil {
		return nil, err
	}

	report := processors.MonthlyCashflow(transactions, viewOpeningBalance(settings, view), view)
	s.reportCache.SetDefault(cacheKey, report)
	return report, nil
}

func (s *reportServiceImpl) GetPipelineReport() (*processors.PipelineReport, error) {
	if cached, found := s.reportCache.Get(ckPipelineReport); found {
		return cached.(*processors.PipelineReport), nil
	}

	deals, err := fetchDeals()
	if err != nil {
		return nil, err
	}

	report := processors.SummarizePipeline(deals)
	s.reportCache.SetDefault(ckPipelineReport, report)
	return report, nil
}

func (s *reportServiceImpl) GetProjectsReport() (*processors.ProjectsReport, error) {
	if cached, found := s.reportCache.Get(ckProjectsReport); found {
		return cached.(*processors.ProjectsReport), nil
	}

	projects, err := fetchProjects()
	if err != nil {
		return nil, err
	}
	costs, err := fetchProjectCosts()
	if err != nil {
		return nil, err
	}

	report := processors.SummarizeProjects(projects, costs)
	s.reportCache.SetDefault(ckProjectsReport, report)
	return report, nil
}

func (s *reportServiceImpl) GetSankeyReport(view models.View) (*processors.SankeyData, error) {
	cacheKey := fmt.Sprintf(ckSankeyReport, view)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*processors.SankeyData), nil
	}

	transactions, settings, err := s.viewData(view)
	if err != nil {
		return nil, err
	}

	report := processors.GroupForSankey(transactions, viewOpeningBalance(settings, view), view)
	s.reportCache.SetDefault(cacheKey, report)
	return report, nil
}

func (s *reportServiceImpl) viewData(view models.View) ([]models.Transaction, *models.Settings, error) {
	account := models.Account("")
	if view == models.ViewSGD || view == models.ViewUSD {
		account = models.Account(view)
	}
	transactions, err := fetchTransactions(account)
	if err != nil {
		return nil, nil, err
	}
	settings, err := s.settingsService.Get()
	if err != nil {
		return nil, nil, err
	}
	return transactions, settings, nil
}

// viewOpeningBalance selects the opening balance for an account view. The
// combined view starts from the SGD balance plus the USD balance's SGD
// equivalent. Unconfigured balances count as zero for reporting.
func viewOpeningBalance(settings *models.Settings, view models.View) decimal.Decimal {
	switch view {
	case models.ViewUSD:
		return balanceOrZero(settings.USDOpeningBalance)
	case models.ViewCombined:
		return balanceOrZero(settings.CashflowOpeningBalance).Add(balanceOrZero(settings.USDOpeningBalanceSGD))
	default:
		return balanceOrZero(settings.CashflowOpeningBalance)
	}
}

func balanceOrZero(balance *decimal.Decimal) decimal.Decimal {
	if balance == nil {
		return decimal.Zero
	}
	return *balance
}
