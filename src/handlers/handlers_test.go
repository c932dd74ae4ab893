package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/config"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/database"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/parsers"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/processors"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/services"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	config.LoadConfig()
	logger.InitLogger("error")
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })

	var reportService services.ReportService
	settingsService := services.NewSettingsService(10*time.Millisecond, func() {
		if reportService != nil {
			reportService.InvalidateReportCache()
		}
	})
	classifier := processors.NewClassifier(processors.DefaultClassificationMap())
	reportService = services.NewReportService(classifier, settingsService, cache.New(time.Minute, time.Minute))
	importService := services.NewImportService(parsers.NewStatementParser(0), parsers.NewPnLParser(), settingsService, reportService)

	uploadHandler := NewUploadHandler(importService)
	transactionHandler := NewTransactionHandler(reportService)
	dealHandler := NewDealHandler(reportService)
	settingsHandler := NewSettingsHandler(settingsService)
	reportHandler := NewReportHandler(reportService)

	router := chi.NewRouter()
	router.Post("/api/import/bank", uploadHandler.HandleImportBank)
	router.Post("/api/import/pnl", uploadHandler.HandleImportPnL)
	router.Get("/api/transactions", transactionHandler.HandleList)
	router.Post("/api/transactions", transactionHandler.HandleCreate)
	router.Put("/api/transactions/{id}", transactionHandler.HandleUpdate)
	router.Delete("/api/transactions/{id}", transactionHandler.HandleDelete)
	router.Post("/api/deals", dealHandler.HandleCreate)
	router.Get("/api/settings", settingsHandler.HandleGet)
	router.Put("/api/settings", settingsHandler.HandleUpdate)
	router.Get("/api/reports/pnl", reportHandler.HandleGetPnL)
	router.Get("/api/reports/cashflow", reportHandler.HandleGetCashflow)
	return router
}

func multipartUpload(t *testing.T, url, csvData string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvData))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleImportBank(t *testing.T) {
	router := newTestRouter(t)

	csvData := strings.Join([]string{
		"Date,Description,Category,Contact,Debit,Credit",
		"2025-01-01,OPENING BALANCE,,,1000.00,",
		"2025-01-05,Client payment,Qual Revenue,Acme,500.00,",
	}, "\n")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "/api/import/bank?account=sgd", csvData))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary services.ImportSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.ImportedCount)
	require.NotNil(t, summary.OpeningBalance)
	assert.True(t, summary.OpeningBalance.Equal(decimal.NewFromInt(1000)))
}

func TestHandleImportBank_InvalidAccount(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "/api/import/bank?account=eur", "Date,Description,Amount\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleImportBank_ParseErrorIsBadRequest(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "/api/import/bank?account=sgd", "Foo,Bar\n1,2\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "parsing")
}

func TestPnLReportETag(t *testing.T) {
	router := newTestRouter(t)

	// No snapshot yet.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/pnl", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	pnl := strings.Join([]string{
		"Account,Jan 2025,Feb 2025",
		"Qual Project Revenue,1000.00,2000.00",
		"Net Profit/(Loss),1000.00,0.00",
	}, "\n")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "/api/import/pnl", pnl))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/pnl", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/pnl", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestCashflowReport_InvalidView(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/cashflow?view=eur", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionCRUD(t *testing.T) {
	router := newTestRouter(t)

	payload := `{"account":"sgd","date":"2025-01-15","description":"Manual entry","type":"outflow","amount":"250.00"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(payload)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.DefaultCategory, created.Category)
	assert.True(t, created.AmountSGD.Equal(created.Amount))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?account=sgd", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	update := `{"account":"sgd","date":"2025-01-16","description":"Corrected entry","type":"outflow","amount":"300.00"}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/transactions/"+created.ID, strings.NewReader(update)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/transactions/no-such-id", strings.NewReader(update)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/transactions/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/transactions/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateDeal_BreakdownMismatchIsAdvisory(t *testing.T) {
	router := newTestRouter(t)

	payload := `{
		"clientName": "Acme",
		"dealName": "Tracker 2025",
		"dealValue": "10000",
		"stage": "Proposal",
		"probability": "50",
		"revenueBreakdown": [
			{"month": "03", "year": "2025", "amount": "4000"}
		]
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/deals", strings.NewReader(payload)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Warning string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Warning, "a breakdown/value mismatch should warn, not reject")
}

func TestSettingsHandler(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"headcount":-1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"headcount":4}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	// The pending edit is visible on read before the debounced flush.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var settings models.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, 4, settings.Headcount)
}
