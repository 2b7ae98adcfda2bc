package summarizer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-token", "http://example.com/model", 5*time.Second)

	if client == nil {
		t.Fatal("Expected non-nil client")
	}

	if client.apiToken != "test-token" {
		t.Errorf("Expected API token 'test-token', got '%s'", client.apiToken)
	}

	if client.endpoint != "http://example.com/model" {
		t.Errorf("Expected endpoint 'http://example.com/model', got '%s'", client.endpoint)
	}

	if client.httpClient == nil || client.httpClient.Timeout != 5*time.Second {
		t.Error("Expected HTTP client with a 5s timeout")
	}
}

func TestSummarizeSendsInputsWithBearerToken(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody summarizeRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Errorf("Expected JSON body, got %q", string(data))
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"summary_text":"A short summary."}]`))
	}))
	defer server.Close()

	client := NewClient("secret-token", server.URL, 5*time.Second)

	result, err := client.Summarize(context.Background(), "paper text")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("Expected Authorization 'Bearer secret-token', got '%s'", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", gotContentType)
	}
	if gotBody.Inputs != "paper text" {
		t.Errorf("Expected inputs 'paper text', got '%s'", gotBody.Inputs)
	}
	if result.Kind != KindSummary {
		t.Errorf("Expected KindSummary, got %v", result.Kind)
	}
	if result.String() != "A short summary." {
		t.Errorf("Expected 'A short summary.', got '%s'", result.String())
	}
}

func TestSummarizeStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", server.URL, 5*time.Second)

	_, err := client.Summarize(context.Background(), "text")
	if err == nil {
		t.Fatal("Expected error for 503 status")
	}

	if !strings.Contains(err.Error(), "503") {
		t.Errorf("Expected error to mention status code, got: %v", err)
	}
}

func TestSummarizeNoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-token", server.URL, 5*time.Second)
	client.Summarize(context.Background(), "text")

	if calls != 1 {
		t.Errorf("Expected exactly 1 call, got %d", calls)
	}
}

func TestSummarizeConnectionError(t *testing.T) {
	client := NewClient("test-token", "http://127.0.0.1:1/unreachable", time.Second)

	_, err := client.Summarize(context.Background(), "text")
	if err == nil {
		t.Error("Expected error for unreachable endpoint")
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		kind     Kind
		expected string
	}{
		{
			name:     "list with summary_text",
			body:     `[{"summary_text":"from list"}]`,
			kind:     KindSummary,
			expected: "from list",
		},
		{
			name:     "object with summary_text",
			body:     `{"summary_text":"from object"}`,
			kind:     KindSummary,
			expected: "from object",
		},
		{
			name:     "list without summary_text",
			body:     `[{"generated_text":"other"}]`,
			kind:     KindUnrecognized,
			expected: `[{"generated_text":"other"}]`,
		},
		{
			name:     "empty list",
			body:     `[]`,
			kind:     KindUnrecognized,
			expected: `[]`,
		},
		{
			name:     "object with error",
			body:     `{"error":"bad input"}`,
			kind:     KindUnrecognized,
			expected: `{"error":"bad input"}`,
		},
		{
			name:     "non-string summary_text",
			body:     `{"summary_text":42}`,
			kind:     KindUnrecognized,
			expected: `{"summary_text":42}`,
		},
		{
			name:     "scalar payload",
			body:     "\"plain\"\n",
			kind:     KindUnrecognized,
			expected: `"plain"`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := ParseResponse([]byte(test.body))
			if err != nil {
				t.Fatalf("ParseResponse failed: %v", err)
			}
			if result.Kind != test.kind {
				t.Errorf("Expected kind %v, got %v", test.kind, result.Kind)
			}
			if result.String() != test.expected {
				t.Errorf("Expected '%s', got '%s'", test.expected, result.String())
			}
		})
	}
}

func TestParseResponseInvalidJSON(t *testing.T) {
	_, err := ParseResponse([]byte("<html>oops</html>"))
	if err == nil {
		t.Error("Expected error for non-JSON body")
	}
}
