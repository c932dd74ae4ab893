package services

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/database"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })
}

func TestSettingsService_DebouncedSave(t *testing.T) {
	setupTestDB(t)

	var persisted atomic.Int32
	service := NewSettingsService(30*time.Millisecond, func() { persisted.Add(1) })

	service.Save(models.Settings{Headcount: 5})

	// The pending edit is readable immediately, before the flush happens.
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, settings.Headcount)
	assert.Equal(t, int32(0), persisted.Load())

	// After the quiet period the edit reaches the store.
	require.Eventually(t, func() bool { return persisted.Load() == 1 },
		2*time.Second, 10*time.Millisecond)

	stored, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Headcount)
}

func TestSettingsService_NewerEditSupersedesPending(t *testing.T) {
	setupTestDB(t)

	var persisted atomic.Int32
	service := NewSettingsService(30*time.Millisecond, func() { persisted.Add(1) })

	service.Save(models.Settings{Headcount: 1})
	service.Save(models.Settings{Headcount: 2})
	service.Save(models.Settings{Headcount: 3})

	require.Eventually(t, func() bool { return persisted.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)
	// The superseded edits never produced their own writes.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), persisted.Load())

	stored, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Headcount)
}

func TestSettingsService_FlushWithNothingPending(t *testing.T) {
	setupTestDB(t)

	var persisted atomic.Int32
	service := NewSettingsService(time.Second, func() { persisted.Add(1) })

	require.NoError(t, service.Flush())
	assert.Equal(t, int32(0), persisted.Load())
}

func TestSettingsService_FlushOnDemand(t *testing.T) {
	setupTestDB(t)

	service := NewSettingsService(time.Hour, nil)
	service.Save(models.Settings{Headcount: 7})

	// The quiet period has not elapsed; an explicit flush writes it anyway.
	require.NoError(t, service.Flush())

	stored, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, 7, stored.Headcount)
}

func TestSettingsService_SetOpeningBalances(t *testing.T) {
	setupTestDB(t)

	service := NewSettingsService(time.Hour, nil)

	sgd := decimal.NewFromInt(10000)
	require.NoError(t, service.SetOpeningBalances(models.AccountSGD, &sgd, nil))

	stored, err := loadSettings()
	require.NoError(t, err)
	require.NotNil(t, stored.CashflowOpeningBalance)
	assert.True(t, stored.CashflowOpeningBalance.Equal(sgd))
	assert.Nil(t, stored.USDOpeningBalance)

	usd := decimal.NewFromInt(8000)
	usdSGD := decimal.NewFromInt(10800)
	require.NoError(t, service.SetOpeningBalances(models.AccountUSD, &usd, &usdSGD))

	stored, err = loadSettings()
	require.NoError(t, err)
	require.NotNil(t, stored.USDOpeningBalance)
	assert.True(t, stored.USDOpeningBalance.Equal(usd))
	require.NotNil(t, stored.USDOpeningBalanceSGD)
	assert.True(t, stored.USDOpeningBalanceSGD.Equal(usdSGD))
	// The SGD balance set earlier is untouched.
	require.NotNil(t, stored.CashflowOpeningBalance)
	assert.True(t, stored.CashflowOpeningBalance.Equal(sgd))
}

func TestSettingsService_NilBalancesLeaveStoredUntouched(t *testing.T) {
	setupTestDB(t)

	service := NewSettingsService(time.Hour, nil)

	sgd := decimal.NewFromInt(5000)
	require.NoError(t, service.SetOpeningBalances(models.AccountSGD, &sgd, nil))

	// A later import with no extractable balance must not zero the stored one.
	require.NoError(t, service.SetOpeningBalances(models.AccountSGD, nil, nil))

	stored, err := loadSettings()
	require.NoError(t, err)
	require.NotNil(t, stored.CashflowOpeningBalance)
	assert.True(t, stored.CashflowOpeningBalance.Equal(sgd))
}
