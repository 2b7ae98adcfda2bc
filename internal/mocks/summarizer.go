package mocks

import (
	"context"
	"sync"

	"github.com/pep299/paper-summarizer/internal/summarizer"
)

// MockSummarizer records every input and answers from Respond, or with a
// fixed summary when Respond is nil.
type MockSummarizer struct {
	mu      sync.Mutex
	Inputs  []string
	Respond func(text string) (*summarizer.Result, error)
}

func (m *MockSummarizer) Summarize(ctx context.Context, text string) (*summarizer.Result, error) {
	m.mu.Lock()
	m.Inputs = append(m.Inputs, text)
	m.mu.Unlock()

	if m.Respond != nil {
		return m.Respond(text)
	}
	return &summarizer.Result{Kind: summarizer.KindSummary, Text: "test summary"}, nil
}

// Calls returns a copy of the recorded inputs.
func (m *MockSummarizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Inputs...)
}
