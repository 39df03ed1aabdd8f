// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"repobounty/internal/audit"
	"repobounty/internal/common/logger"
	"repobounty/internal/models"
	"repobounty/internal/settlement"
	"repobounty/internal/treasury"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Settler runs the settlement flow for one submission.
type Settler interface {
	Settle(ctx context.Context, sub *models.Submission) (*models.Evaluation, error)
	Treasury() treasury.Snapshot
}

// EvaluationReader serves the query surface.
type EvaluationReader interface {
	ListEvaluations(ctx context.Context, limit int) ([]*models.Evaluation, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// AuditService runs paid enterprise audits.
type AuditService interface {
	Audit(ctx context.Context, req *audit.Request) (*models.EnterpriseAudit, error)
}

// Searcher serves full-text evaluation search.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]*models.Evaluation, error)
}

// Server is the HTTP intake and query surface.
type Server struct {
	settler       Settler
	reader        EvaluationReader
	auditor       AuditService
	auditSink     func(*models.EnterpriseAudit)
	searcher      Searcher
	webhookSecret string
	logger        logger.Logger
	mux           *http.ServeMux
}

type ServerOption func(*Server)

func WithReader(r EvaluationReader) ServerOption { return func(s *Server) { s.reader = r } }
func WithSearcher(sr Searcher) ServerOption      { return func(s *Server) { s.searcher = sr } }
func WithWebhookSecret(secret string) ServerOption {
	return func(s *Server) { s.webhookSecret = secret }
}

// WithAuditor wires the enterprise audit intake; sink receives each completed
// audit so the caller can book revenue and persist the engagement.
func WithAuditor(a AuditService, sink func(*models.EnterpriseAudit)) ServerOption {
	return func(s *Server) {
		s.auditor = a
		s.auditSink = sink
	}
}

func NewServer(settler Settler, log logger.Logger, opts ...ServerOption) *Server {
	s := &Server{
		settler: settler,
		logger:  log.WithFields(map[string]interface{}{"component": "api"}),
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/evaluate", s.handleEvaluate)
	s.mux.HandleFunc("/api/evaluations", s.handleListEvaluations)
	s.mux.HandleFunc("/api/evaluations/search", s.handleSearchEvaluations)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/enterprise-audit", s.handleEnterpriseAudit)
	s.mux.HandleFunc("/api/webhook", s.handleWebhook)

	s.mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	s.mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks until the context is cancelled, then drains in-flight
// requests for up to 30 seconds.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", map[string]interface{}{"port": port})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

var _ Settler = (*settlement.Orchestrator)(nil)
