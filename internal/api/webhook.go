// internal/api/webhook.go
package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"repobounty/internal/models"
)

// webhookEvent is the pull-request payload the forge pushes on merge.
type webhookEvent struct {
	Action      string `json:"action"`
	PullRequest struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Author string `json:"author"`
		Wallet string `json:"wallet"`
		Diff   string `json:"diff"`
		Files  int    `json:"files"`
		Add    int    `json:"additions"`
		Del    int    `json:"deletions"`
	} `json:"pull_request"`
	Repository string `json:"repository"`
}

// handleWebhook accepts merge events signed with an HMAC-SHA256 hex digest
// in X-Hub-Signature-256 ("sha256=<hex>"). Unsigned or mis-signed payloads
// are rejected before any parsing happens.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.webhookSecret == "" {
		writeError(w, http.StatusServiceUnavailable, "webhook intake not configured")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}

	if !s.verifySignature(body, r.Header.Get("X-Hub-Signature-256")) {
		s.logger.Warn("webhook signature rejected", map[string]interface{}{
			"remote": r.RemoteAddr,
		})
		writeError(w, http.StatusUnauthorized, "signature verification failed")
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	if event.Action != "merged" {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "ignored", "action": event.Action})
		return
	}

	sub := &models.Submission{
		ID:            event.PullRequest.ID,
		Title:         event.PullRequest.Title,
		Author:        event.PullRequest.Author,
		Repo:          event.Repository,
		WalletAddress: event.PullRequest.Wallet,
		Diff:          event.PullRequest.Diff,
		FilesChanged:  event.PullRequest.Files,
		Additions:     event.PullRequest.Add,
		Deletions:     event.PullRequest.Del,
	}

	eval, err := s.settler.Settle(r.Context(), sub)
	if err != nil {
		if strings.Contains(err.Error(), "invalid submission") {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("webhook settlement failed", map[string]interface{}{
			"submissionId": sub.ID,
			"error":        err.Error(),
		})
		writeError(w, http.StatusBadGateway, "evaluation failed")
		return
	}

	writeJSON(w, http.StatusOK, eval)
}

func (s *Server) verifySignature(body []byte, header string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	sent, err := hex.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(body)
	return hmac.Equal(sent, mac.Sum(nil))
}
