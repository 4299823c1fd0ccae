// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

// Package httpapi exposes the auth and room services over HTTP. Status
// codes are decided only here; the domain packages speak in error codes.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
	"github.com/simple-quiz-org/simple-quiz-api/internal/observability"
	"github.com/simple-quiz-org/simple-quiz-api/internal/room"
)

// Services bundles the domain dependencies of the HTTP surface.
type Services struct {
	Auth     *auth.Service
	Signup   *auth.SignupService
	Resolver *auth.Resolver
	Rooms    *room.Service
}

// Server is the public HTTP API server.
type Server struct {
	addr          string
	publicBaseURL string
	services      Services
	logger        *slog.Logger
	metrics       *observability.Metrics
	cors          *corsPolicy

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates the API server. metrics may be nil when the
// observability listener is disabled.
func NewServer(
	addr, publicBaseURL string,
	corsOrigins []string,
	services Services,
	logger *slog.Logger,
	metrics *observability.Metrics,
) (*Server, error) {
	cors, err := newCORSPolicy(corsOrigins)
	if err != nil {
		return nil, err
	}
	return &Server{
		addr:          addr,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		services:      services,
		logger:        logger,
		metrics:       metrics,
		cors:          cors,
	}, nil
}

// Handler builds the routed handler with middleware applied. Exposed for
// httptest use.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /auth/session_id", s.handleNewSession)
	mux.HandleFunc("GET /auth/is_signin", s.handleIsSignin)
	mux.HandleFunc("POST /auth/pre_signup", s.handlePreSignup)
	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/signin", s.handleSignin)
	mux.HandleFunc("DELETE /auth/signout", s.handleSignout)
	mux.HandleFunc("GET /auth/caniuse", s.handleCanIUse)
	mux.HandleFunc("GET /auth/mail/{token}", s.handleLookupMail)

	mux.HandleFunc("GET /room/list", s.handleRoomList)
	mux.HandleFunc("GET /room/{id}", s.handleRoomDetail)
	mux.HandleFunc("POST /room", s.handleRoomCreate)
	mux.HandleFunc("PUT /room/{id}", s.handleRoomUpdate)

	var h http.Handler = mux
	h = withCORS(s.cors, h)
	h = withRequestLog(s.logger, s.metrics, h)
	return h
}

// Start begins serving. It returns an error channel that receives any
// error from the HTTP server after it starts; the channel is closed when
// the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}
	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// sessionToken extracts the opaque bearer value from the Authorization
// header. A conventional "Bearer " prefix is tolerated and stripped.
func sessionToken(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if rest, found := strings.CutPrefix(v, "Bearer "); found {
		return strings.TrimSpace(rest)
	}
	return v
}
