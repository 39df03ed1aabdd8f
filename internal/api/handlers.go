// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"repobounty/internal/audit"
	"repobounty/internal/models"
	"repobounty/internal/simulation"
)

const maxBodyBytes = 2 << 20 // 2 MiB, diffs larger than this get rejected at the door

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// A prId body selects one of the canned demo submissions instead of a
	// fully posted one, with an unknown id falling back to a random sample.
	var req struct {
		models.Submission
		PRID string `json:"prId"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := req.Submission
	if req.PRID != "" {
		sample := simulation.FindPR(req.PRID)
		if sample == nil {
			sample = simulation.RandomPR()
		}
		sub = *sample
	}

	eval, err := s.settler.Settle(r.Context(), &sub)
	if err != nil {
		if strings.Contains(err.Error(), "invalid submission") {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("settlement failed", map[string]interface{}{
			"submissionId": sub.ID,
			"error":        err.Error(),
		})
		writeError(w, http.StatusBadGateway, "evaluation failed")
		return
	}

	writeJSON(w, http.StatusOK, eval)
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.reader == nil {
		writeError(w, http.StatusServiceUnavailable, "evaluation store not configured")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	evals, err := s.reader.ListEvaluations(r.Context(), limit)
	if err != nil {
		s.logger.Error("list evaluations failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if evals == nil {
		evals = []*models.Evaluation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"evaluations": evals,
		"count":       len(evals),
	})
}

func (s *Server) handleSearchEvaluations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.searcher == nil {
		writeError(w, http.StatusServiceUnavailable, "search not configured")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	evals, err := s.searcher.Search(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("search failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"evaluations": evals,
		"count":       len(evals),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := map[string]interface{}{
		"treasury": s.settler.Treasury(),
	}

	if s.reader != nil {
		if stats, err := s.reader.Stats(r.Context()); err == nil {
			status["stats"] = stats
		} else {
			s.logger.Warn("stats query failed", map[string]interface{}{"error": err.Error()})
		}
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleEnterpriseAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.auditor == nil {
		writeError(w, http.StatusServiceUnavailable, "audit service not configured")
		return
	}

	var req audit.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.auditor.Audit(r.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "invalid audit request") {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("enterprise audit failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "audit failed")
		return
	}

	if s.auditSink != nil {
		s.auditSink(report)
	}

	writeJSON(w, http.StatusOK, report)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
