package handlers

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pep299/paper-summarizer/internal/annotate"
	"github.com/pep299/paper-summarizer/internal/config"
	"github.com/pep299/paper-summarizer/internal/pdftext"
	"github.com/pep299/paper-summarizer/internal/response"
	"github.com/pep299/paper-summarizer/internal/session"
	"github.com/pep299/paper-summarizer/internal/slack"
	"github.com/pep299/paper-summarizer/internal/summarizer"
	"github.com/pep299/paper-summarizer/internal/upload"
)

// Version is reported by the health endpoint
const Version = "v1.0.0"

//go:embed templates/index.html
var templateFS embed.FS

// Notifier announces a processed paper
type Notifier interface {
	SendAnnotation(ctx context.Context, annotation slack.PaperAnnotation) error
}

// Server holds the HTTP server and its dependencies
type Server struct {
	annotator *annotate.Service
	uploads   upload.Store
	archive   upload.Store
	sessions  *session.Manager
	notifier  Notifier
	extract   func(path string) (string, error)
	page      *template.Template
}

// Option customizes a Server built with New
type Option func(*Server)

// WithArchive copies every accepted upload to store as well
func WithArchive(store upload.Store) Option {
	return func(s *Server) { s.archive = store }
}

// WithNotifier posts every processed paper to n
func WithNotifier(n Notifier) Option {
	return func(s *Server) { s.notifier = n }
}

// WithExtractor replaces the PDF text extractor
func WithExtractor(extract func(path string) (string, error)) Option {
	return func(s *Server) { s.extract = extract }
}

// New assembles a server from already constructed dependencies
func New(annotator *annotate.Service, uploads upload.Store, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		annotator: annotator,
		uploads:   uploads,
		sessions:  sessions,
		extract:   pdftext.ExtractFile,
		page:      template.Must(template.ParseFS(templateFS, "templates/index.html")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServer creates a new HTTP server from configuration
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	client := summarizer.NewClient(
		cfg.HuggingFaceAPIToken,
		cfg.SummarizerURL,
		time.Duration(cfg.SummarizerTimeout)*time.Second,
	)

	store := session.NewStore(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	manager := session.NewManager(store, session.NewCodec(cfg.SessionSecret))

	var opts []Option
	if cfg.ArchiveEnabled() {
		archive, err := upload.NewGCSStore(ctx, cfg.UploadBucket, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("creating upload archive: %w", err)
		}
		opts = append(opts, WithArchive(archive))
	}
	if cfg.SlackEnabled() {
		opts = append(opts, WithNotifier(slack.NewClient(cfg.SlackBotToken, cfg.SlackChannel)))
	}

	return New(annotate.NewService(client), upload.NewLocalStore(cfg.UploadDir), manager, opts...), nil
}

// Sessions returns the session store backing the server
func (s *Server) Sessions() *session.Store {
	return s.sessions.Store()
}

// Close releases the upload archive, if any
func (s *Server) Close() error {
	if closer, ok := s.archive.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)
	r.NotFoundHandler = response.NotFound()
	r.MethodNotAllowedHandler = response.MethodNotAllowed()

	r.HandleFunc("/", s.indexHandler).Methods("GET")
	r.HandleFunc("/", s.uploadHandler).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.healthHandler).Methods("GET")
	api.HandleFunc("/history", s.historyHandler).Methods("GET")

	return r
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
