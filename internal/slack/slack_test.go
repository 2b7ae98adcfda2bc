package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	client := NewClient("xoxb-test", "#test-channel")

	if client == nil {
		t.Fatal("Expected non-nil client")
	}

	if client.botToken != "xoxb-test" {
		t.Errorf("Expected bot token 'xoxb-test', got '%s'", client.botToken)
	}

	if client.channel != "#test-channel" {
		t.Errorf("Expected channel '#test-channel', got '%s'", client.channel)
	}

	if client.apiURL != defaultAPIURL {
		t.Errorf("Expected API URL '%s', got '%s'", defaultAPIURL, client.apiURL)
	}

	if client.httpClient == nil {
		t.Error("Expected non-nil http client")
	}
}

func TestSendAnnotation(t *testing.T) {
	var got ChatPostMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}

		if auth := r.Header.Get("Authorization"); auth != "Bearer xoxb-test" {
			t.Errorf("Expected Authorization 'Bearer xoxb-test', got '%s'", auth)
		}

		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient("xoxb-test", "#papers")
	client.apiURL = server.URL

	err := client.SendAnnotation(context.Background(), PaperAnnotation{
		Filename: "paper.pdf",
		Summary:  "A summary.",
		Gaps:     "Some gaps.",
	})
	if err != nil {
		t.Fatalf("Failed to send annotation: %v", err)
	}

	if got.Channel != "#papers" {
		t.Errorf("Expected channel '#papers', got '%s'", got.Channel)
	}

	for _, expected := range []string{"paper.pdf", "A summary.", "Some gaps."} {
		if !strings.Contains(got.Text, expected) {
			t.Errorf("Expected message to contain '%s', got '%s'", expected, got.Text)
		}
	}
}

func TestSendAnnotationAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer server.Close()

	client := NewClient("xoxb-test", "#missing")
	client.apiURL = server.URL

	err := client.SendAnnotation(context.Background(), PaperAnnotation{Filename: "paper.pdf"})
	if err == nil {
		t.Fatal("Expected error for ok=false response")
	}

	if !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("Expected error to mention channel_not_found, got: %v", err)
	}
}

func TestSendAnnotationStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("xoxb-test", "#papers")
	client.apiURL = server.URL

	err := client.SendAnnotation(context.Background(), PaperAnnotation{Filename: "paper.pdf"})
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status 500 error, got: %v", err)
	}
}
