package testing

import (
	"sync"

	"github.com/aristath/watchdeck/internal/domain"
)

// MockSaver records persistence calls from the store for assertion in tests.
type MockSaver struct {
	mu sync.Mutex

	SaveCount  int
	LastAlerts []domain.Alert
	LastGroups []domain.StockGroup
	LastPrefs  domain.Preferences
	Err        error // Returned from Save when set
}

// NewMockSaver creates a new mock saver
func NewMockSaver() *MockSaver {
	return &MockSaver{}
}

// Save records the call and returns the configured error, if any
func (m *MockSaver) Save(alerts []domain.Alert, groups []domain.StockGroup, prefs domain.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCount++
	m.LastAlerts = alerts
	m.LastGroups = groups
	m.LastPrefs = prefs
	return m.Err
}

// Saves returns the number of recorded Save calls
func (m *MockSaver) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SaveCount
}
