package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client handles summarization API operations
type Client struct {
	apiToken   string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a new summarization API client
func NewClient(apiToken, endpoint string, timeout time.Duration) *Client {
	return &Client{
		apiToken: apiToken,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Kind tells whether the endpoint answered in a shape we understand
type Kind int

const (
	// KindSummary means a summary_text value was found
	KindSummary Kind = iota
	// KindUnrecognized means the payload had some other shape
	KindUnrecognized
)

func (k Kind) String() string {
	switch k {
	case KindSummary:
		return "summary"
	case KindUnrecognized:
		return "unrecognized"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the outcome of a summarization call
type Result struct {
	Kind Kind
	Text string
	Raw  json.RawMessage
}

// String returns the summary text, or the raw payload for unrecognized shapes
func (r *Result) String() string {
	if r.Kind == KindSummary {
		return r.Text
	}
	return string(r.Raw)
}

// summarizeRequest represents the request structure for the inference API
type summarizeRequest struct {
	Inputs string `json:"inputs"`
}

// Summarize sends text to the summarization endpoint
func (c *Client) Summarize(ctx context.Context, text string) (*Result, error) {
	body, err := json.Marshal(summarizeRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return ParseResponse(respBody)
}

// ParseResponse classifies a successful response body
func ParseResponse(body []byte) (*Result, error) {
	raw := json.RawMessage(bytes.TrimSpace(body))
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decoding response: invalid JSON")
	}

	if text, ok := summaryFromList(raw); ok {
		return &Result{Kind: KindSummary, Text: text, Raw: raw}, nil
	}
	if text, ok := summaryFromObject(raw); ok {
		return &Result{Kind: KindSummary, Text: text, Raw: raw}, nil
	}

	return &Result{Kind: KindUnrecognized, Raw: raw}, nil
}

// summaryFromList handles [{"summary_text": "..."}]
func summaryFromList(raw json.RawMessage) (string, bool) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return "", false
	}
	return summaryFromObject(list[0])
}

// summaryFromObject handles {"summary_text": "..."}
func summaryFromObject(raw json.RawMessage) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	value, ok := obj["summary_text"]
	if !ok {
		return "", false
	}
	var text string
	if err := json.Unmarshal(value, &text); err != nil {
		return "", false
	}
	return text, true
}
