package api

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/pmmstack/pmm-engine/internal/config"
)

// Server wraps the HTTP server and lifecycle helpers.
type Server struct {
	cfg      config.ServerConfig
	httpSrv  *http.Server
	listener net.Listener
}

// NewServer constructs an HTTP server bound to the configured address.
func NewServer(cfg config.ServerConfig, handler http.Handler) (*Server, error) {
	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Address, err)
	}

	httpSrv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		cfg:      cfg,
		httpSrv:  httpSrv,
		listener: lis,
	}, nil
}

// Address returns the bound listen address, useful when the configured port
// is 0.
func (s *Server) Address() string {
	if s.listener == nil {
		return s.cfg.Address
	}
	return s.listener.Addr().String()
}

// Start serves incoming requests until Shutdown is invoked.
func (s *Server) Start() error {
	if s.httpSrv == nil || s.listener == nil {
		return fmt.Errorf("server not initialised")
	}
	if err := s.httpSrv.Serve(s.listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until the context expires, then closes
// the server outright.
func (s *Server) Shutdown(ctx context.Context) {
	if s.httpSrv == nil {
		return
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		_ = s.httpSrv.Close()
	}
}
