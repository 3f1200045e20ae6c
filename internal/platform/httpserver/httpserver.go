package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project.
// WriteTimeout stays unset because /nav/stream holds responses open.
// onShutdown hooks run as soon as Shutdown starts; they must end any
// long-lived response so Shutdown can finish.
func New(addr string, handler http.Handler, onShutdown ...func()) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	for _, hook := range onShutdown {
		srv.RegisterOnShutdown(hook)
	}
	return srv
}
