// Package site serves the embedded organizer dashboard.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register serves the dashboard at / and its assets below it. It must be
// registered after the API routes so they take precedence.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	files := http.FileServer(FS())
	r.Get("/", files.ServeHTTP)
	r.Get("/assets/*", http.StripPrefix("/assets", files).ServeHTTP)
}
