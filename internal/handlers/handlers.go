package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/pep299/paper-summarizer/internal/annotate"
	"github.com/pep299/paper-summarizer/internal/response"
	"github.com/pep299/paper-summarizer/internal/session"
	"github.com/pep299/paper-summarizer/internal/slack"
	"github.com/pep299/paper-summarizer/internal/upload"
)

// maxMemory is how much of a multipart body is held in memory before
// spilling to temporary files. It is not an upload size limit.
const maxMemory = 32 << 20

// pageData is rendered by templates/index.html
type pageData struct {
	Filename string
	Summary  string
	Gaps     string
	History  []session.HistoryEntry
}

// indexHandler renders the upload form and the session history
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	state := s.sessions.Load(w, r)
	s.render(w, pageData{History: state.History()})
}

// uploadHandler runs an uploaded paper through extraction and annotation
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	state := s.sessions.Load(w, r)

	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, fmt.Sprintf("Invalid form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing 'file' in form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	logger := log.New(funcframework.LogWriter(r.Context()), "", 0)

	if !upload.Allowed(header.Filename) {
		logger.Printf("Skipping upload %q: not a PDF", header.Filename)
		s.render(w, pageData{History: state.History()})
		return
	}

	startTime := time.Now()
	logger.Printf("Paper processing started filename=%s session=%s", header.Filename, state.ID)

	annotation, err := s.process(r.Context(), logger, header.Filename, file)
	if err != nil {
		logger.Printf("Error processing %s: %v", header.Filename, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	state.Append(session.HistoryEntry{
		Filename:   header.Filename,
		Summary:    annotation.Summary,
		Gaps:       annotation.Gaps,
		RecordedAt: time.Now(),
	})

	s.notify(r.Context(), logger, header.Filename, annotation)
	logger.Printf("Paper processing completed filename=%s total_duration_ms=%d history_len=%d",
		header.Filename, time.Since(startTime).Milliseconds(), state.Len())

	s.render(w, pageData{
		Filename: header.Filename,
		Summary:  annotation.Summary,
		Gaps:     annotation.Gaps,
		History:  state.History(),
	})
}

// process saves the upload, extracts its text and annotates it
func (s *Server) process(ctx context.Context, logger *log.Logger, filename string, file multipart.File) (*annotate.Annotation, error) {
	path, err := s.uploads.Save(ctx, filename, file)
	if err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}

	s.archiveCopy(ctx, logger, filename, path)

	text, err := s.extract(path)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	annotation, err := s.annotator.Annotate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("annotating paper: %w", err)
	}

	return annotation, nil
}

// archiveCopy uploads the saved file to the archive. Failures are logged only.
func (s *Server) archiveCopy(ctx context.Context, logger *log.Logger, filename, path string) {
	if s.archive == nil {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Printf("Error opening %s for archive: %v", path, err)
		return
	}
	defer f.Close()

	location, err := s.archive.Save(ctx, filename, f)
	if err != nil {
		logger.Printf("Error archiving %s: %v", filename, err)
		return
	}
	logger.Printf("Archived %s to %s", filename, location)
}

// notify sends the annotation to Slack. Failures are logged only.
func (s *Server) notify(ctx context.Context, logger *log.Logger, filename string, annotation *annotate.Annotation) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.SendAnnotation(ctx, slack.PaperAnnotation{
		Filename: filename,
		Summary:  annotation.Summary,
		Gaps:     annotation.Gaps,
	})
	if err != nil {
		logger.Printf("Error sending Slack notification for %s: %v", filename, err)
	}
}

func (s *Server) render(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		log.Printf("Error rendering page: %v", err)
	}
}

// healthData is the payload of the health endpoint
type healthData struct {
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"`
	Sessions  int    `json:"sessions"`
}

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteData(w, healthData{
		Version:   Version,
		Timestamp: time.Now().Unix(),
		Sessions:  s.Sessions().GetStats().ActiveSessions,
	})
}

// historyHandler returns the caller's history as JSON
func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	state := s.sessions.Load(w, r)

	history := state.History()
	if history == nil {
		history = []session.HistoryEntry{}
	}
	response.WriteData(w, history)
}
