package services

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
)

// SettingsService is the single gate for the settings record. Edits from the
// UI are debounced: a write is issued only after the quiet period elapses
// with no newer edit, and a newer edit supersedes any pending write.
// Reads see the pending (most recent) value immediately. Concurrent editors
// are last-write-wins; there is no conflict detection.
type SettingsService struct {
	quietPeriod time.Duration
	onPersist   func()

	mu      sync.Mutex
	pending *models.Settings
	timer   *time.Timer
}

// NewSettingsService creates the settings gate. onPersist is invoked after
// each successful flush (used to invalidate report caches); it may be nil.
func NewSettingsService(quietPeriod time.Duration, onPersist func()) *SettingsService {
	return &SettingsService{quietPeriod: quietPeriod, onPersist: onPersist}
}

// Get returns the current settings: the pending edit when one is waiting to
// flush, otherwise the stored record.
func (s *SettingsService) Get() (*models.Settings, error) {
	s.mu.Lock()
	if s.pending != nil {
		snapshot := *s.pending
		s.mu.Unlock()
		return &snapshot, nil
	}
	s.mu.Unlock()
	return loadSettings()
}

// Save schedules a debounced persist of the full settings record. Each call
// restarts the quiet period and replaces any pending value.
func (s *SettingsService) Save(settings models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = &settings
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.quietPeriod, func() {
		if err := s.Flush(); err != nil {
			logger.L.Error("Debounced settings write failed", "error", err)
		}
	})
}

// Flush writes any pending settings immediately. Safe to call with nothing
// pending; used on shutdown so a quiet-period edit is not lost.
func (s *SettingsService) Flush() error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if pending == nil {
		return nil
	}
	if err := saveSettings(pending); err != nil {
		return err
	}
	logger.L.Debug("Settings persisted")
	if s.onPersist != nil {
		s.onPersist()
	}
	return nil
}

// SetOpeningBalances records balances extracted during a bank import. Nil
// values leave the corresponding stored balance untouched; a failed
// extraction never zeroes a configured balance. The write is immediate, not
// debounced.
func (s *SettingsService) SetOpeningBalances(account models.Account, balance, balanceSGD *decimal.Decimal) error {
	if balance == nil && balanceSGD == nil {
		return nil
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch account {
	case models.AccountUSD:
		if balance != nil {
			settings.USDOpeningBalance = balance
		}
		if balanceSGD != nil {
			settings.USDOpeningBalanceSGD = balanceSGD
		}
	default:
		if balance != nil {
			settings.CashflowOpeningBalance = balance
		}
	}

	s.mu.Lock()
	// Supersede any pending debounced edit with the merged record.
	s.pending = settings
	s.mu.Unlock()
	return s.Flush()
}
