package server

import (
	"net/http"
	"time"

	"github.com/homemade/recruitbridge/sync"
)

const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 15 * time.Second
	IdleTimeout       = 60 * time.Second
	// WriteTimeout covers a whole submission, up to five sequential Recruit CRM calls.
	WriteTimeout = 5*sync.HTTPRequestTimeout + 30*time.Second
)

// NewHTTPServer wraps h in an http.Server with read and write timeouts.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}
}
