// internal/workers/evaluate-submission/handler.go
package evaluatesubmission

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "repobounty/internal/common/errors"
	"repobounty/internal/common/logger"
	"repobounty/internal/common/metrics"
	"repobounty/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "evaluate-submission"

// Settler runs the settlement flow for one submission.
type Settler interface {
	Settle(ctx context.Context, sub *models.Submission) (*models.Evaluation, error)
}

type Handler struct {
	config   *Config
	settler  Settler
	logger   logger.Logger
	errorHdl *apperrors.ErrorHandler
}

func NewHandler(config *Config, settler Settler, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		settler:  settler,
		logger:   scoped,
		errorHdl: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})
	started := time.Now()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewSubmissionInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, h.classify(err, ctx.Err()))
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":   job.Key,
		"verdict":  output.Verdict,
		"duration": time.Since(started).String(),
	})
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	eval, err := h.settler.Settle(ctx, &input.Submission)
	if err != nil {
		return nil, fmt.Errorf("settle submission: %w", err)
	}

	output := &Output{
		EvaluationID:  eval.ID,
		Verdict:       string(eval.AI.Verdict),
		Score:         eval.AI.Score,
		PayoutStatus:  string(eval.Payout.Status),
		PayoutAmount:  eval.Payout.Amount,
		Source:        eval.Source,
		AuditRequired: eval.SecurityAudit != nil,
	}
	if eval.Payout.TxHash != nil {
		output.TxHash = *eval.Payout.TxHash
	}
	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// classify maps a settlement failure onto a standardized error so the BPMN
// layer gets the right retry and error-code semantics.
func (h *Handler) classify(err error, ctxErr error) *apperrors.StandardError {
	switch {
	case ctxErr == context.DeadlineExceeded:
		return apperrors.NewEvaluatorTimeoutError("pipeline")
	case strings.Contains(err.Error(), "invalid submission"):
		return apperrors.NewSubmissionInvalidError(err.Error())
	default:
		return apperrors.NewEvaluatorTierFailedError("pipeline", err)
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHdl.HandleJobError(context.Background(), client, job, stdErr)
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
