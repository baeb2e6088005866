package sheets

import (
	"context"
	"sync"
)

// MockWriter is a ReportWriter for tests.
type MockWriter struct {
	ExportFunc      func(ctx context.Context, export Export) (string, error)
	LastExport      *Export
	ExportCalls     []ExportCall
	ExportCallCount int
	mu              sync.Mutex
}

// ExportCall represents a single call to Export.
type ExportCall struct {
	Error  error
	Export Export
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{
		ExportCalls: make([]ExportCall, 0),
	}
}

// Export records the call and delegates to ExportFunc. Without one it
// returns "mock-spreadsheet".
func (m *MockWriter) Export(ctx context.Context, export Export) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExportCallCount++
	m.LastExport = &export

	id, err := "mock-spreadsheet", error(nil)
	if m.ExportFunc != nil {
		id, err = m.ExportFunc(ctx, export)
	}

	m.ExportCalls = append(m.ExportCalls, ExportCall{Export: export, Error: err})
	return id, err
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExportCallCount = 0
	m.ExportCalls = make([]ExportCall, 0)
	m.LastExport = nil
}

// GetExportCalls returns a copy of all export calls.
func (m *MockWriter) GetExportCalls() []ExportCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]ExportCall, len(m.ExportCalls))
	copy(calls, m.ExportCalls)
	return calls
}

// SetExportError configures the mock to fail every Export call with err.
func (m *MockWriter) SetExportError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExportFunc = func(context.Context, Export) (string, error) {
		return "", err
	}
}

var _ ReportWriter = (*MockWriter)(nil)
