// Package api provides the loopback HTTP API used by operators to inspect
// and control the remote key server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"remotekey/internal/session"
	"remotekey/internal/state"
)

// Operator is the control surface of the session manager.
type Operator interface {
	Info() session.Info
	Snapshot() state.Snapshot
	Credential() string
	SetCredential(ctx context.Context, secret string) error
	Disconnect() bool
}

// Server provides HTTP API for operator control
type Server struct {
	operator Operator
	token    string
	log      zerolog.Logger
	handler  http.Handler
}

// NewServer creates a new API server. An empty token disables authentication.
func NewServer(operator Operator, token string, log zerolog.Logger) *Server {
	s := &Server{
		operator: operator,
		token:    token,
		log:      log.With().Str("component", "api").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/credential", s.handleGetCredential)
	mux.HandleFunc("PUT /api/credential", s.handleSetCredential)
	mux.HandleFunc("POST /api/disconnect", s.handleDisconnect)

	s.handler = s.logMiddleware(s.authMiddleware(s.recoverMiddleware(mux)))
	return s
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve serves the API on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("Starting API server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	<-errCh
	return err
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("Recovered from panic")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks API token if configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for health check
		if r.URL.Path == "/health" || s.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logMiddleware logs every request at debug level
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("duration", time.Since(started)).
			Msg("API request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.operator.Info())
}

// handleState handles GET /api/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.operator.Snapshot())
}

type credentialBody struct {
	Credential string `json:"credential"`
}

// handleGetCredential handles GET /api/credential
func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, credentialBody{Credential: s.operator.Credential()})
}

// handleSetCredential handles PUT /api/credential
func (s *Server) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var body credentialBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&body); err != nil {
		http.Error(w, "Invalid credential body", http.StatusBadRequest)
		return
	}

	if err := s.operator.SetCredential(r.Context(), body.Credential); err != nil {
		if errors.Is(err, session.ErrEmptyCredential) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, session.ErrCredentialNotSaved) {
			s.log.Warn().Err(err).Msg("Credential changed via API but not saved")
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "saved": false, "error": err.Error()})
			return
		}
		s.log.Warn().Err(err).Msg("Credential change failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.log.Info().Str("remote", r.RemoteAddr).Msg("Credential changed via API")
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "saved": true})
}

// handleDisconnect handles POST /api/disconnect
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"disconnected": s.operator.Disconnect()})
}
