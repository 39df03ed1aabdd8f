// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeSubmissionInvalid ErrorCode = "SUBMISSION_INVALID"

	ErrCodeEvaluatorTierFailed ErrorCode = "EVALUATOR_TIER_FAILED"
	ErrCodeEvaluatorTimeout    ErrorCode = "EVALUATOR_TIMEOUT"
	ErrCodeResponseMalformed   ErrorCode = "RESPONSE_MALFORMED"

	ErrCodePaymentFailed     ErrorCode = "PAYMENT_FAILED"
	ErrCodeTreasuryExhausted ErrorCode = "TREASURY_EXHAUSTED"

	ErrCodeAuditFailed         ErrorCode = "AUDIT_FAILED"
	ErrCodeAuditRequestInvalid ErrorCode = "AUDIT_REQUEST_INVALID"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeIndexWriteFailed              ErrorCode = "INDEX_WRITE_FAILED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeWebhookSignatureInvalid ErrorCode = "WEBHOOK_SIGNATURE_INVALID"

	ErrCodeBrokerUnavailable     ErrorCode = "BROKER_UNAVAILABLE"
	ErrCodeBrokerOperationFailed ErrorCode = "BROKER_OPERATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewSubmissionInvalidError creates a non-retryable submission error.
func NewSubmissionInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInvalid,
		Message:   "Submission failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEvaluatorTierFailedError wraps a tier failure; retryable because a later
// attempt may hit a healthy tier.
func NewEvaluatorTierFailedError(tier string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEvaluatorTierFailed,
		Message:   fmt.Sprintf("Evaluation tier %s failed", tier),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEvaluatorTimeoutError creates a retryable evaluator timeout.
func NewEvaluatorTimeoutError(tier string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEvaluatorTimeout,
		Message:   fmt.Sprintf("Evaluation tier %s timed out", tier),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseMalformedError creates a non-retryable malformed-reply error.
func NewResponseMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseMalformed,
		Message:   "Evaluator reply failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentFailedError wraps a gateway failure.
func NewPaymentFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentFailed,
		Message:   "Stablecoin transfer failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTreasuryExhaustedError flags a queued payout.
func NewTreasuryExhaustedError(requested, balance float64) *StandardError {
	return &StandardError{
		Code:    ErrCodeTreasuryExhausted,
		Message: "Treasury balance cannot cover the payout",
		Details: fmt.Sprintf("requested %.2f, balance %.2f", requested, balance),
		Metadata: map[string]interface{}{
			"requested": requested,
			"balance":   balance,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditFailedError wraps an enterprise audit failure.
func NewAuditFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditFailed,
		Message:   "Enterprise audit failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query error.
func NewQueryExecutionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Query execution failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("Failed to send %s notification", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookSignatureInvalidError creates a non-retryable signature error.
func NewWebhookSignatureInvalidError() *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookSignatureInvalid,
		Message:   "Webhook signature verification failed",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. BPMN Mapping
// ==========================

// BPMNErrorMapping maps internal codes to the error codes BPMN catch events use.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeSubmissionInvalid:             "SUBMISSION_INVALID",
	ErrCodeEvaluatorTierFailed:           "EVALUATION_FAILED",
	ErrCodeEvaluatorTimeout:              "EVALUATION_FAILED",
	ErrCodeResponseMalformed:             "EVALUATION_FAILED",
	ErrCodePaymentFailed:                 "PAYMENT_FAILED",
	ErrCodeTreasuryExhausted:             "TREASURY_EXHAUSTED",
	ErrCodeAuditFailed:                   "AUDIT_FAILED",
	ErrCodeAuditRequestInvalid:           "AUDIT_FAILED",
	ErrCodeDatabaseConnectionFailed:      "TECHNICAL_ERROR",
	ErrCodeQueryExecutionFailed:          "TECHNICAL_ERROR",
	ErrCodeQueryTimeout:                  "TECHNICAL_ERROR",
	ErrCodeElasticsearchConnectionFailed: "TECHNICAL_ERROR",
	ErrCodeIndexWriteFailed:              "TECHNICAL_ERROR",
	ErrCodeCacheUnavailable:              "TECHNICAL_ERROR",
	ErrCodeNotificationSendFailed:        "TECHNICAL_ERROR",
	ErrCodeWebhookSignatureInvalid:       "SUBMISSION_INVALID",
}

// GetRetryCount returns how many Camunda retries a code deserves.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeEvaluatorTierFailed, ErrCodeEvaluatorTimeout:
		return 2
	case ErrCodePaymentFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeIndexWriteFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeBrokerUnavailable:
		return 3
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError into a throwable BPMN error.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		bpmnCode = "TECHNICAL_ERROR"
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   GetRetryCount(stdErr.Code),
		ErrorVariables: map[string]interface{}{
			"internalErrorCode": string(stdErr.Code),
		},
	}
}

// ==========================
// 5. Helpers
// ==========================

// IsRetryableErrorCode reports whether a code is worth retrying.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory buckets codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeSubmissionInvalid, ErrCodeWebhookSignatureInvalid, ErrCodeAuditRequestInvalid:
		return "validation"
	case ErrCodeEvaluatorTierFailed, ErrCodeEvaluatorTimeout, ErrCodeResponseMalformed:
		return "evaluation"
	case ErrCodePaymentFailed, ErrCodeTreasuryExhausted:
		return "settlement"
	case ErrCodeAuditFailed:
		return "audit"
	default:
		return "infrastructure"
	}
}
