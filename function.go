// Package cloudfunctions exposes the paper summarizer as a Cloud Function.
package cloudfunctions

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/pep299/paper-summarizer/internal/config"
	"github.com/pep299/paper-summarizer/internal/handlers"
)

func init() {
	functions.HTTP("AnnotatePaper", AnnotatePaper)
}

var (
	initOnce sync.Once
	router   http.Handler
	initErr  error
)

// setup builds the router once per instance so sessions survive between
// invocations served by the same instance.
func setup() (http.Handler, error) {
	initOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}

		server, err := handlers.NewServer(context.Background(), cfg)
		if err != nil {
			initErr = err
			return
		}

		router = server.SetupRoutes()
	})
	return router, initErr
}

// AnnotatePaper serves the upload page and JSON API
func AnnotatePaper(w http.ResponseWriter, r *http.Request) {
	h, err := setup()
	if err != nil {
		log.Printf("Failed to initialize: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.ServeHTTP(w, r)
}
