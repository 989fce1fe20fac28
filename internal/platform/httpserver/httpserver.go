package httpserver

import (
	"net/http"
	"time"

	"causelist/internal/platform/config"
)

// New builds an HTTP server with sane defaults for this project. Write
// timeout is generous because a submission waits on the backend scraper.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}
