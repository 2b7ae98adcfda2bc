package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/pep299/paper-summarizer/internal/slack"
)

// Mock Slack notifier
type MockNotifier struct {
	mu   sync.Mutex
	Sent []slack.PaperAnnotation
	Err  error
}

func (m *MockNotifier) SendAnnotation(ctx context.Context, annotation slack.PaperAnnotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, annotation)
	return m.Err
}

// Mock upload store keeping file contents in memory
type MockStore struct {
	mu    sync.Mutex
	Files map[string][]byte
	Err   error
}

func (m *MockStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Files == nil {
		m.Files = make(map[string][]byte)
	}
	m.Files[filename] = data
	return "mock://" + filename, nil
}
