package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "icrelay/internal/errors"
	"icrelay/internal/middleware"
	"icrelay/internal/models"
	"icrelay/internal/service"
	"icrelay/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Ingress delivers a pushed message; implemented by service.IngressService
type Ingress interface {
	Send(ctx context.Context, req service.IngressRequest) models.RelayResult
}

type Server struct {
	router  *mux.Router
	logger  *logrus.Logger
	ingress Ingress
	config  models.ServerConfig
	secret  string
	maxBody int64
	verbose bool
	server  *http.Server
}

func NewServer(cfg *models.Config, ingress Ingress, logger *logrus.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		logger:  logger,
		ingress: ingress,
		config:  cfg.Server,
		secret:  cfg.Ingress.Secret,
		maxBody: cfg.Ingress.MaxBodyBytes,
	}

	s.setupRoutes()
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.config.IdleTimeoutSec) * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.verboseMiddleware)
	s.router.Use(middleware.ObservabilityMiddleware(s.logger, s.config.TrustProxyHeaders))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	send := s.handleSend()
	s.router.HandleFunc("/api/send-ic", send).Methods(http.MethodPost)
	s.router.HandleFunc("/relay", send).Methods(http.MethodPost)
}

// SetVerbose makes request contexts carry the verbose logging flag
func (s *Server) SetVerbose(verbose bool) {
	s.verbose = verbose
}

func (s *Server) verboseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(service.WithVerbose(r.Context(), s.verbose)))
	})
}

// Start listens until the server is shut down; http.ErrServerClosed is not an error
func (s *Server) Start() error {
	s.logger.WithField("port", s.config.Port).Info("Starting HTTP ingress")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func (s *Server) handleSend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
		if err != nil {
			// oversized or broken bodies decode as empty
			body = nil
		}

		if err := verifySignature(r, body, s.secret); err != nil {
			authErr := apperrors.NewAuthError(err.Error())
			status := apperrors.HTTPStatusCode(authErr)
			if errors.Is(err, errSignatureMismatch) {
				status = http.StatusForbidden
			}
			service.LogWithContext(ctx, s.logger).WithError(err).Warn("Rejected unsigned ingress request")
			writeJSON(w, status, apperrors.ToHTTPResponse(authErr))
			return
		}

		req := decodeIngressRequest(body)
		result := s.ingress.Send(ctx, req)
		if !result.OK() {
			service.LogWithContext(ctx, s.logger).WithFields(logrus.Fields{
				service.LogFieldOutcome:   result.Outcome,
				service.LogFieldErrorCode: apperrors.GetCode(result.Err),
			}).WithError(result.Err).Error("Ingress delivery failed")

			resp := apperrors.ToHTTPResponse(result.Err)
			writeJSON(w, http.StatusInternalServerError, resp)
			return
		}

		service.LogWithContext(ctx, s.logger).WithFields(logrus.Fields{
			service.LogFieldRoute:    req.ChannelID,
			service.LogFieldDuration: tracing.Duration(ctx).Milliseconds(),
		}).Info("Ingress message delivered")
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

// decodeIngressRequest never fails: malformed JSON and non-string fields become ""
func decodeIngressRequest(body []byte) service.IngressRequest {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return service.IngressRequest{}
	}

	field := func(key string) string {
		if v, ok := raw[key].(string); ok {
			return v
		}
		return ""
	}

	return service.IngressRequest{
		Command:   field("command"),
		Message:   field("message"),
		ChannelID: field("channelId"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
