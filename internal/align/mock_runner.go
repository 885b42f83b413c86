package align

import (
	"context"
	"sync"
)

// InvokeRecord captures one call to a MockRunner for assertions.
type InvokeRecord struct {
	AudioPath string
	Mode      RecognizerMode
	Hint      string
}

// MockRunner is a scripted Runner. Each Invoke pops the next step: either a
// canned RawResult or an error. When the script is exhausted the last step
// repeats.
type MockRunner struct {
	mu    sync.Mutex
	steps []mockStep
	calls []InvokeRecord
}

type mockStep struct {
	result RawResult
	err    error
}

func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

// QueueResult appends a successful step to the script.
func (m *MockRunner) QueueResult(result RawResult) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{result: result})
	return m
}

// QueueError appends a failing step to the script.
func (m *MockRunner) QueueError(err error) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{err: err})
	return m
}

func (m *MockRunner) Invoke(_ context.Context, audioPath string, mode RecognizerMode, hint string) (RawResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, InvokeRecord{AudioPath: audioPath, Mode: mode, Hint: hint})
	if len(m.steps) == 0 {
		return RawResult{}, &ToolInvocationError{Mode: mode, Err: context.Canceled}
	}
	step := m.steps[0]
	if len(m.steps) > 1 {
		m.steps = m.steps[1:]
	}
	return step.result, step.err
}

// Calls returns a copy of the recorded invocations.
func (m *MockRunner) Calls() []InvokeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]InvokeRecord, len(m.calls))
	copy(out, m.calls)
	return out
}
