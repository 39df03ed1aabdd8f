// internal/store/store.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"
)

// Store persists evaluations in Postgres. Narrative fields (highlights,
// concerns, payout, audit) are kept as JSONB documents; columns exist only
// for the fields queries filter or aggregate on.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

const insertEvaluationQuery = `
	INSERT INTO evaluations (id, created_at, pr_id, pr_title, pr_author, repo, verdict, score, source, payout_amount, payout_status, document)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// SaveEvaluation writes one completed evaluation.
func (s *Store) SaveEvaluation(ctx context.Context, eval *models.Evaluation) error {
	doc, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, insertEvaluationQuery,
		eval.ID,
		eval.Timestamp,
		eval.PR.ID,
		eval.PR.Title,
		eval.PR.Author,
		eval.PR.Repo,
		string(eval.AI.Verdict),
		eval.AI.Score,
		eval.Source,
		eval.Payout.Amount,
		string(eval.Payout.Status),
		doc,
	)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}

	s.logger.Debug("evaluation persisted", map[string]interface{}{
		"evaluationId": eval.ID,
		"verdict":      eval.AI.Verdict,
	})
	return nil
}

const listEvaluationsQuery = `
	SELECT document FROM evaluations ORDER BY created_at DESC LIMIT $1`

// ListEvaluations returns the most recent evaluations, newest first.
func (s *Store) ListEvaluations(ctx context.Context, limit int) ([]*models.Evaluation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, listEvaluationsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var evals []*models.Evaluation
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		var eval models.Evaluation
		if err := json.Unmarshal(doc, &eval); err != nil {
			return nil, fmt.Errorf("decode evaluation: %w", err)
		}
		evals = append(evals, &eval)
	}
	return evals, rows.Err()
}

const statsQuery = `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE verdict = 'PASS'),
		COALESCE(SUM(payout_amount) FILTER (WHERE payout_status = 'sent'), 0),
		COALESCE(AVG(score), 0)
	FROM evaluations`

// Stats aggregates lifetime evaluation counters.
func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	err := s.db.QueryRowContext(ctx, statsQuery).Scan(
		&stats.TotalEvaluated,
		&stats.Passed,
		&stats.TotalPaid,
		&stats.AverageScore,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	stats.Failed = stats.TotalEvaluated - stats.Passed
	if stats.TotalEvaluated > 0 {
		stats.PassRate = float64(stats.Passed) / float64(stats.TotalEvaluated) * 100
	}
	return &stats, nil
}

const insertAuditQuery = `
	INSERT INTO enterprise_audits (id, created_at, client, contract_name, lines_of_code, amount_charged, verdict, severity, document)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// SaveAudit writes one enterprise audit engagement.
func (s *Store) SaveAudit(ctx context.Context, audit *models.EnterpriseAudit) error {
	doc, err := json.Marshal(audit)
	if err != nil {
		return fmt.Errorf("marshal audit: %w", err)
	}

	_, err = s.db.ExecContext(ctx, insertAuditQuery,
		audit.ID,
		audit.Timestamp,
		audit.Client,
		audit.ContractName,
		audit.LinesOfCode,
		audit.AmountCharged,
		string(audit.Verdict),
		string(audit.Severity),
		doc,
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// EnsureSchema creates the tables on startup when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			pr_id TEXT NOT NULL,
			pr_title TEXT NOT NULL,
			pr_author TEXT NOT NULL,
			repo TEXT NOT NULL,
			verdict TEXT NOT NULL,
			score INT NOT NULL,
			source TEXT NOT NULL,
			payout_amount NUMERIC(12,2) NOT NULL,
			payout_status TEXT NOT NULL,
			document JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations (created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS enterprise_audits (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			client TEXT NOT NULL,
			contract_name TEXT NOT NULL,
			lines_of_code INT NOT NULL,
			amount_charged NUMERIC(12,2) NOT NULL,
			verdict TEXT NOT NULL,
			severity TEXT NOT NULL,
			document JSONB NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
