package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts sized for this service. Submit
// runs the verification pipeline synchronously, so the write timeout sits
// above the 30s handler timeout rather than cutting responses off first.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
