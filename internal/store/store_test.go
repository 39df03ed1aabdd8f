// internal/store/store_test.go
package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func createTestEvaluation() *models.Evaluation {
	tx := "0xabc"
	return &models.Evaluation{
		ID:        "eval-1",
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		PR: models.SubmissionSummary{
			ID:     "pr-101",
			Title:  "feat: rate limiter",
			Author: "octocat",
			Repo:   "acme/api",
		},
		AI: models.EvaluationResult{
			Verdict:         models.VerdictPass,
			Score:           75,
			Reasoning:       "solid work",
			SuggestedPayout: 14.5,
		},
		Payout: models.Payout{
			Amount:    14.5,
			Token:     "USDC",
			ToAddress: "0x1111111111111111111111111111111111111111",
			TxHash:    &tx,
			Status:    models.PayoutSent,
		},
		Source: "remote-ai",
	}
}

func TestSaveEvaluation(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	eval := createTestEvaluation()
	mock.ExpectExec("INSERT INTO evaluations").
		WithArgs(eval.ID, eval.Timestamp, "pr-101", "feat: rate limiter", "octocat", "acme/api",
			"PASS", 75, "remote-ai", 14.5, "sent", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewStore(db, logger.NewTestLogger(t))
	err := s.SaveEvaluation(context.Background(), eval)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEvaluations(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	doc := `{"id":"eval-1","pr":{"id":"pr-101","title":"t","author":"a","repo":"r"},"ai":{"verdict":"PASS","score":70,"reasoning":"ok","suggestedPayout":10},"payout":{"amount":10,"token":"USDC","toAddress":"0x1","txHash":null,"status":"sent"},"source":"local-heuristic"}`
	mock.ExpectQuery("SELECT document FROM evaluations").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow([]byte(doc)))

	s := NewStore(db, logger.NewTestLogger(t))
	evals, err := s.ListEvaluations(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, "eval-1", evals[0].ID)
	assert.Equal(t, models.VerdictPass, evals[0].AI.Verdict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEvaluations_DefaultLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT document FROM evaluations").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"document"}))

	s := NewStore(db, logger.NewTestLogger(t))
	evals, err := s.ListEvaluations(context.Background(), 0)

	require.NoError(t, err)
	assert.Empty(t, evals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"count", "passed", "paid", "avg"}).
			AddRow(10, 7, 120.50, 63.2))

	s := NewStore(db, logger.NewTestLogger(t))
	stats, err := s.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalEvaluated)
	assert.Equal(t, 7, stats.Passed)
	assert.Equal(t, 3, stats.Failed)
	assert.InDelta(t, 70.0, stats.PassRate, 0.001)
	assert.InDelta(t, 120.50, stats.TotalPaid, 0.001)
}

func TestSaveAudit(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	audit := &models.EnterpriseAudit{
		ID:            "audit-1",
		Timestamp:     time.Now().UTC(),
		Client:        "MegaCorp",
		ContractName:  "Escrow.sol",
		LinesOfCode:   240,
		AmountCharged: 500,
		Verdict:       models.AuditIssuesFound,
		Severity:      models.SeverityMedium,
	}
	mock.ExpectExec("INSERT INTO enterprise_audits").
		WithArgs(audit.ID, audit.Timestamp, "MegaCorp", "Escrow.sol", 240, 500.0, "ISSUES_FOUND", "medium", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewStore(db, logger.NewTestLogger(t))
	err := s.SaveAudit(context.Background(), audit)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
