package services

import (
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/processors"
)

var (
	ErrParsingFailed = errors.New("parsing failed")
	ErrNoPnLData     = errors.New("no P&L data imported yet")
)

// ImportSummary is the one consolidated status report for a bank statement
// import attempt: success count, skip count, and every warning triggered.
type ImportSummary struct {
	Account           models.Account   `json:"account"`
	ImportedCount     int              `json:"importedCount"`
	SkippedCount      int              `json:"skippedCount"`
	OpeningBalance    *decimal.Decimal `json:"openingBalance"`
	OpeningBalanceSGD *decimal.Decimal `json:"openingBalanceSGD"`
	Warnings          []string         `json:"warnings"`
	Message           string           `json:"message"`
}

// PnLImportSummary reports the outcome of a P&L export import.
type PnLImportSummary struct {
	RowCount   int      `json:"rowCount"`
	MonthCount int      `json:"monthCount"`
	Warnings   []string `json:"warnings"`
	Message    string   `json:"message"`
}

// ImportService ingests CSV uploads. A successful bank import replaces the
// prior transaction batch for that account; a successful P&L import replaces
// the stored snapshot.
type ImportService interface {
	ImportBankStatement(file io.Reader, account models.Account) (*ImportSummary, error)
	ImportPnL(file io.Reader) (*PnLImportSummary, error)
}

// PnLReport bundles the classified groups with the flat summary table.
type PnLReport struct {
	Classified *processors.ClassifiedPnL `json:"classified"`
	Summary    *processors.PnLSummary    `json:"summary"`
	ImportedAt time.Time                 `json:"importedAt"`
}

// ReportService computes the render-ready report structures, caching each
// view until a write invalidates it.
type ReportService interface {
	GetPnLReport() (*PnLReport, error)
	GetCashflowReport(view models.View) (*processors.CashflowReport, error)
	GetPipelineReport() (*processors.PipelineReport, error)
	GetProjectsReport() (*processors.ProjectsReport, error)
	GetSankeyReport(view models.View) (*processors.SankeyData, error)
	InvalidateReportCache()
}
