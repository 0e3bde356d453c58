package dateparser

import (
	"context"
	"sync"
	"time"
)

// MockOracle is an Oracle with canned answers for testing.
type MockOracle struct {
	// Hits is returned by every Search call.
	Hits []Hit
	// Dates maps exact Resolve input to its answer.
	Dates map[string]time.Time
	// Err, when set, is returned by both methods.
	Err error

	mu    sync.Mutex
	texts []string
}

// NewMockOracle creates a MockOracle returning hits from Search.
func NewMockOracle(hits ...Hit) *MockOracle {
	return &MockOracle{Hits: hits, Dates: make(map[string]time.Time)}
}

// Resolve implements Oracle.
func (m *MockOracle) Resolve(_ context.Context, text string, _ Settings) (time.Time, bool, error) {
	m.record(text)
	if m.Err != nil {
		return time.Time{}, false, m.Err
	}
	t, ok := m.Dates[text]
	return t, ok, nil
}

// Search implements Oracle.
func (m *MockOracle) Search(_ context.Context, text string, _ Settings) ([]Hit, error) {
	m.record(text)
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]Hit(nil), m.Hits...), nil
}

// Texts returns every text the oracle has been asked about, in call order.
func (m *MockOracle) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

func (m *MockOracle) record(text string) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
}

// Ensure MockOracle implements Oracle
var _ Oracle = (*MockOracle)(nil)
