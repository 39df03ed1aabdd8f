// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler routes a failed settlement job back to the broker: transient
// failures are failed with retries left, terminal ones become BPMN errors the
// process model can catch.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError reports a job failure to the broker, choosing between a
// retryable fail and a BPMN error throw based on the error code.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := asStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logFailure(job, stdErr, bpmnErr)

	retries := GetRetryCount(stdErr.Code)
	if retries > 0 && job.Retries > 0 {
		h.failWithRetries(ctx, client, job, bpmnErr, retries)
	} else {
		h.throwBPMNError(ctx, client, job, bpmnErr)
	}
}

// asStandardError wraps unclassified errors so every broker report carries a
// code and a timestamp.
func asStandardError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, maxRetries int) {
	// The broker tracks remaining retries on the job; never raise it above
	// what the job already has left.
	remaining := maxRetries
	if job.Retries > 0 && int(job.Retries) < maxRetries {
		remaining = int(job.Retries)
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(remaining)).
		ErrorMessage(bpmnErr.Message)

	if vars := bpmnErr.ToErrorVariables(); len(vars) > 0 {
		if varsJSON, err := json.Marshal(vars); err == nil && string(varsJSON) != "null" {
			if cmdWithVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
				_, _ = cmdWithVars.Send(ctx)
				return
			}
		}
	}

	// Variables could not be attached; the failure itself still goes out.
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if vars := bpmnErr.ToErrorVariables(); len(vars) > 0 {
		if varsJSON, err := json.Marshal(vars); err == nil && string(varsJSON) != "null" {
			if cmdWithVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
				_, _ = cmdWithVars.Send(ctx)
				return
			}
		}
	}

	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) logFailure(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("settlement job failed", map[string]interface{}{
		"jobKey":          job.Key,
		"jobType":         job.Type,
		"errorCode":       string(stdErr.Code),
		"bpmnErrorCode":   bpmnErr.Code,
		"message":         bpmnErr.Message,
		"details":         stdErr.Details,
		"retryable":       stdErr.Retryable,
		"retries":         GetRetryCount(stdErr.Code),
		"errorCategory":   GetErrorCategory(stdErr.Code),
		"processInstance": job.ProcessInstanceKey,
	})
}
