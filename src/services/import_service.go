package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/parsers"
)

type importServiceImpl struct {
	statementParser *parsers.StatementParser
	pnlParser       *parsers.PnLParser
	settingsService *SettingsService
	reportService   ReportService
}

func NewImportService(
	statementParser *parsers.StatementParser,
	pnlParser *parsers.PnLParser,
	settingsService *SettingsService,
	reportService ReportService,
) ImportService {
	return &importServiceImpl{
		statementParser: statementParser,
		pnlParser:       pnlParser,
		settingsService: settingsService,
		reportService:   reportService,
	}
}

// ImportBankStatement parses a statement upload and, on success, replaces the
// prior in-store batch for that account. Fatal parse conditions abort with no
// partial application; row-level issues are counted and reported in the
// consolidated status message.
func (s *importServiceImpl) ImportBankStatement(file io.Reader, account models.Account) (*ImportSummary, error) {
	startTime := time.Now()
	logger.L.Info("ImportBankStatement START", "account", account)

	result, err := s.statementParser.Parse(file, account)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	if err := replaceTransactions(account, result.Transactions); err != nil {
		return nil, err
	}

	if err := s.settingsService.SetOpeningBalances(account, result.OpeningBalance, result.OpeningBalanceSGD); err != nil {
		return nil, err
	}

	s.reportService.InvalidateReportCache()

	summary := &ImportSummary{
		Account:           account,
		ImportedCount:     len(result.Transactions),
		SkippedCount:      result.SkippedCount,
		OpeningBalance:    result.OpeningBalance,
		OpeningBalanceSGD: result.OpeningBalanceSGD,
		Warnings:          result.Warnings,
	}
	summary.Message = importMessage(summary)

	logger.L.Info("ImportBankStatement END",
		"account", account,
		"imported", summary.ImportedCount,
		"skipped", summary.SkippedCount,
		"warnings", len(summary.Warnings),
		"duration", time.Since(startTime))
	return summary, nil
}

// ImportPnL parses a wide-format P&L export and replaces the stored snapshot.
func (s *importServiceImpl) ImportPnL(file io.Reader) (*PnLImportSummary, error) {
	startTime := time.Now()
	logger.L.Info("ImportPnL START")

	result, err := s.pnlParser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	snapshot := &models.PnLSnapshot{
		Rows:       result.Rows,
		Months:     result.Months,
		ImportedAt: time.Now().UTC(),
	}
	if err := savePnLSnapshot(snapshot); err != nil {
		return nil, err
	}

	s.reportService.InvalidateReportCache()

	summary := &PnLImportSummary{
		RowCount:   len(result.Rows),
		MonthCount: len(result.Months),
		Warnings:   result.Warnings,
	}
	summary.Message = fmt.Sprintf("Imported P&L export: %d line items across %d months.", summary.RowCount, summary.MonthCount)
	if len(summary.Warnings) > 0 {
		summary.Message += " Warnings: " + strings.Join(summary.Warnings, "; ")
	}

	logger.L.Info("ImportPnL END", "rows", summary.RowCount, "months", summary.MonthCount, "duration", time.Since(startTime))
	return summary, nil
}

func importMessage(summary *ImportSummary) string {
	message := fmt.Sprintf("Imported %d transactions (%d rows skipped).", summary.ImportedCount, summary.SkippedCount)
	if summary.OpeningBalance != nil {
		message += fmt.Sprintf(" Opening balance set to %s.", summary.OpeningBalance.StringFixed(2))
	}
	if len(summary.Warnings) > 0 {
		message += " Warnings: " + strings.Join(summary.Warnings, "; ")
	}
	return message
}
