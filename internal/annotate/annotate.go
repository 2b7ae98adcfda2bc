// Package annotate turns extracted paper text into a summary and a
// research-gaps statement using a remote summarizer.
package annotate

import (
	"context"
	"fmt"
	"log"

	"github.com/pep299/paper-summarizer/internal/sections"
	"github.com/pep299/paper-summarizer/internal/summarizer"
)

// MaxInputChars caps every text sent to the summarizer.
const MaxInputChars = 1000

// GapsPromptPrefix is prepended to the key sections for the gaps call.
const GapsPromptPrefix = "Identify the main research gaps and directions for future work in the following research paper:\n"

// Summarizer is the remote text-to-text model.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (*summarizer.Result, error)
}

// Annotation is the pair of generated texts for one document.
type Annotation struct {
	Summary string `json:"summary"`
	Gaps    string `json:"gaps"`
}

// Service runs the summary and gaps calls.
type Service struct {
	summarizer Summarizer
}

// NewService creates a Service backed by s.
func NewService(s Summarizer) *Service {
	return &Service{summarizer: s}
}

// Annotate runs Summary then Gaps. The first error aborts.
func (s *Service) Annotate(ctx context.Context, text string) (*Annotation, error) {
	summary, err := s.Summary(ctx, text)
	if err != nil {
		return nil, err
	}

	gaps, err := s.Gaps(ctx, text)
	if err != nil {
		return nil, err
	}

	return &Annotation{Summary: summary, Gaps: gaps}, nil
}

// Summary summarizes the first MaxInputChars characters of text.
func (s *Service) Summary(ctx context.Context, text string) (string, error) {
	return s.call(ctx, "summary", Truncate(text, MaxInputChars))
}

// Gaps asks for research gaps based on the key sections of text.
func (s *Service) Gaps(ctx context.Context, text string) (string, error) {
	return s.call(ctx, "gaps", GapsPrompt(text))
}

func (s *Service) call(ctx context.Context, purpose, input string) (string, error) {
	result, err := s.summarizer.Summarize(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%s: %w", purpose, err)
	}
	if result.Kind == summarizer.KindUnrecognized {
		log.Printf("Summarizer returned unrecognized payload for %s: %s", purpose, Truncate(string(result.Raw), 200))
	}
	return result.String(), nil
}

// GapsPrompt builds the truncated gaps prompt for text.
func GapsPrompt(text string) string {
	key := sections.Slice(text)
	if key == "" {
		key = Truncate(text, MaxInputChars)
	}
	return Truncate(GapsPromptPrefix+key, MaxInputChars)
}

// Truncate returns the first n characters of text.
func Truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
