package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OperationPostMailchimpStats is the single operation the host may invoke.
const OperationPostMailchimpStats = "post_mailchimp_stats"

type (
	// InvocationRunner runs the fetch-render-publish pipeline once.
	InvocationRunner interface {
		PostCampaignStats(ctx context.Context) error
	}

	Server struct {
		runner InvocationRunner
		log    *slog.Logger
	}

	invocationResponse struct {
		Success bool    `json:"success"`
		Error   *string `json:"error"`
	}
)

// NewRouter builds the custom handler route table: the invocation route the
// host calls on its schedule, a liveness endpoint and Prometheus metrics.
func NewRouter(runner InvocationRunner, log *slog.Logger) http.Handler {
	s := &Server{
		runner: runner,
		log:    log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, requestLogger(log), middleware.Recoverer)

	r.Get("/api/health_check", s.handleHealthCheck)
	r.Get("/api/{operation}", s.handleInvocation)
	r.Post("/api/{operation}", s.handleInvocation)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.writeResult(req.Context(), w, http.StatusNotFound, "unknown path: "+req.URL.Path)
	})

	return r
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleInvocation(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	operation := chi.URLParam(req, "operation")

	if operation != OperationPostMailchimpStats {
		s.log.WarnContext(ctx, "unknown operation requested", "operation", operation)
		invocationsTotal.WithLabelValues("unknown", "unknown_operation").Inc()
		s.writeResult(ctx, w, http.StatusNotFound, "unknown operation: "+operation)
		return
	}

	if err := s.runner.PostCampaignStats(ctx); err != nil {
		s.log.ErrorContext(ctx, "invocation failed", "operation", operation, "error", err)
		invocationsTotal.WithLabelValues(operation, "failure").Inc()
		s.writeResult(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	invocationsTotal.WithLabelValues(operation, "success").Inc()
	s.writeResult(ctx, w, http.StatusOK, "")
}

func (s *Server) writeResult(ctx context.Context, w http.ResponseWriter, status int, errMsg string) {
	res := invocationResponse{Success: status == http.StatusOK}
	if errMsg != "" {
		res.Error = &errMsg
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.log.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, req)

			log.InfoContext(req.Context(), "request handled",
				"request_id", middleware.GetReqID(req.Context()),
				"method", req.Method,
				"path", req.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start))
		})
	}
}
