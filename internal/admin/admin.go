// Package admin serves Prometheus metrics and pprof profiles on a port kept
// apart from the banking API.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Init configures the runtime profilers that are enabled.
func Init() {
	if checkEnabled("block", true) {
		runtime.SetBlockProfileRate(1)
	}
	if checkEnabled("mutex", true) {
		runtime.SetMutexProfileFraction(1)
	}
}

// Server wraps the admin HTTP server.
type Server struct {
	svc *http.Server
}

// NewServer returns an admin server bound to ADMIN_ADDR, ":9090" by default.
func NewServer() *Server {
	addr := os.Getenv("ADMIN_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	timeout := 45 * time.Second
	return &Server{
		svc: &http.Server{
			Addr:         addr,
			Handler:      Handler(),
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  timeout,
		},
	}
}

// BindAddress returns the listen address.
func (s *Server) BindAddress() string {
	return s.svc.Addr
}

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	if s == nil || s.svc == nil {
		return nil
	}
	err := s.svc.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.svc == nil {
		return nil
	}
	return s.svc.Shutdown(ctx)
}

// Handler routes /metrics and the enabled /debug/pprof endpoints.
func Handler() http.Handler {
	r := mux.NewRouter()

	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

	r.HandleFunc("/debug/pprof/", pprof.Index)
	for name, enabled := range pprofHandlers {
		if checkEnabled(name, enabled) {
			r.Handle(fmt.Sprintf("/debug/pprof/%s", name), pprof.Handler(name))
		}
	}
	return r
}
